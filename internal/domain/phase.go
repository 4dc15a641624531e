package domain

import "strings"

// Phase est l'étape courante du cycle, fournie par le collaborateur
// chaîne. Toute valeur inconnue est traitée comme PhaseOther.
type Phase string

const (
	// PhaseLaunch : période de lancement, seul le compte à rebours de
	// fin de lancement a un sens.
	PhaseLaunch Phase = "launch"
	// PhaseActive : cycle en cours, raffle + fenêtre de dépôt.
	PhaseActive Phase = "active"
	// PhaseOther : tout le reste (terminé, annulé, inconnu). Aucun
	// compte à rebours, toutes les sorties sont vidées.
	PhaseOther Phase = "other"
)

func ParsePhase(s string) Phase {
	switch Phase(strings.ToLower(strings.TrimSpace(s))) {
	case PhaseLaunch:
		return PhaseLaunch
	case PhaseActive:
		return PhaseActive
	default:
		return PhaseOther
	}
}

// Channel identifie une des trois sorties formatées.
type Channel int

const (
	ChannelLaunch Channel = iota
	ChannelRaffle
	ChannelDeposit
	ChannelCount // nombre de channels, pour dimensionner les tableaux
)

// ChannelSet marque les channels actifs pour une phase.
type ChannelSet struct {
	Launch  bool
	Raffle  bool
	Deposit bool
}

func (cs ChannelSet) Has(ch Channel) bool {
	switch ch {
	case ChannelLaunch:
		return cs.Launch
	case ChannelRaffle:
		return cs.Raffle
	case ChannelDeposit:
		return cs.Deposit
	default:
		return false
	}
}

// Channels renvoie les channels porteurs de sens pour la phase.
// Une phase non gérée ne doit jamais laisser filtrer une valeur
// périmée : par défaut, rien n'est actif.
func (p Phase) Channels() ChannelSet {
	switch p {
	case PhaseLaunch:
		return ChannelSet{Launch: true}
	case PhaseActive:
		return ChannelSet{Raffle: true, Deposit: true}
	default:
		return ChannelSet{}
	}
}

// Ticks indique si la phase justifie une boucle de tick.
func (p Phase) Ticks() bool {
	cs := p.Channels()
	return cs.Launch || cs.Raffle || cs.Deposit
}
