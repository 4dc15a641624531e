package domain

import (
	"fmt"
	"time"
)

// Sentinelles terminales par channel. Une échéance dépassée n'est pas
// une erreur : c'est un état final valide du compte à rebours.
const (
	SentinelLaunchEnded = "Launch period ended"
	SentinelRaffleDue   = "Raffle due now"
	SentinelPaymentDue  = "Payment due now"
)

// CycleRecord est l'enregistrement de cycle fourni par le collaborateur
// externe (timestamps confirmés on-chain, en secondes epoch). Les
// compteurs de participants transitent mais ne servent à rien ici.
type CycleRecord struct {
	Phase                 Phase `json:"phase"`
	LaunchDeadlineSec     int64 `json:"launchDeadline"`
	RaffleDeadlineSec     int64 `json:"raffleDeadline"`
	DepositWindowStartSec int64 `json:"depositWindowStart"`
	ActiveParticipants    int   `json:"activeParticipants,omitempty"`
	TotalParticipants     int   `json:"totalParticipants,omitempty"`
}

// CycleKey est la clé structurelle de détection de changement :
// phase + les trois timestamps source. Deux records de même clé
// décrivent le même cycle logique et ne déclenchent pas de re-capture.
type CycleKey struct {
	Phase                 Phase
	LaunchDeadlineSec     int64
	RaffleDeadlineSec     int64
	DepositWindowStartSec int64
}

func (r CycleRecord) Key() CycleKey {
	return CycleKey{
		Phase:                 r.Phase,
		LaunchDeadlineSec:     r.LaunchDeadlineSec,
		RaffleDeadlineSec:     r.RaffleDeadlineSec,
		DepositWindowStartSec: r.DepositWindowStartSec,
	}
}

// DeadlineSnapshot est la copie locale immuable des échéances, capturée
// une seule fois par clé de cycle. Après capture, plus aucune lecture
// amont : tout le reste est de l'arithmétique locale. Un snapshot n'est
// jamais modifié en place, il est remplacé en bloc.
type DeadlineSnapshot struct {
	CapturedAt         time.Time
	LaunchDeadline     time.Time
	RaffleDeadline     time.Time
	DepositWindowStart time.Time
	// DepositWindowEnd est toujours dérivée (start + fenêtre), jamais
	// fournie directement.
	DepositWindowEnd time.Time
}

// DefaultDepositWindow est la fenêtre de dépôt de 3 jours
// (259_200_000 ms). Provenance contractuelle, conservée telle quelle.
const DefaultDepositWindow = 72 * time.Hour

// CaptureSnapshot fige les échéances du record à l'instant now.
// depositWindow <= 0 retombe sur DefaultDepositWindow.
func CaptureSnapshot(r CycleRecord, now time.Time, depositWindow time.Duration) DeadlineSnapshot {
	if depositWindow <= 0 {
		depositWindow = DefaultDepositWindow
	}
	start := time.UnixMilli(r.DepositWindowStartSec * 1000)
	return DeadlineSnapshot{
		CapturedAt:         now,
		LaunchDeadline:     time.UnixMilli(r.LaunchDeadlineSec * 1000),
		RaffleDeadline:     time.UnixMilli(r.RaffleDeadlineSec * 1000),
		DepositWindowStart: start,
		DepositWindowEnd:   start.Add(depositWindow),
	}
}

// Countdown est le triplet de sorties formatées. Chaîne vide avant la
// première capture ou pour un channel inactif.
type Countdown struct {
	TimeLeft        string `json:"timeLeft"`
	RaffleTimeLeft  string `json:"raffleTimeLeft"`
	DepositTimeLeft string `json:"depositTimeLeft"`
}

func (c Countdown) Get(ch Channel) string {
	switch ch {
	case ChannelLaunch:
		return c.TimeLeft
	case ChannelRaffle:
		return c.RaffleTimeLeft
	case ChannelDeposit:
		return c.DepositTimeLeft
	default:
		return ""
	}
}

func (c *Countdown) Set(ch Channel, v string) {
	switch ch {
	case ChannelLaunch:
		c.TimeLeft = v
	case ChannelRaffle:
		c.RaffleTimeLeft = v
	case ChannelDeposit:
		c.DepositTimeLeft = v
	}
}

// FormatRemaining formate une durée positive en "<d>d <h>h <m>m <s>s"
// par divisions entières sur les bases 86_400_000 / 3_600_000 /
// 60_000 / 1000 ms.
func FormatRemaining(remaining time.Duration) string {
	ms := remaining.Milliseconds()
	days := ms / 86_400_000
	hours := (ms % 86_400_000) / 3_600_000
	minutes := (ms % 3_600_000) / 60_000
	seconds := (ms % 60_000) / 1000
	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
}

func remainingOrSentinel(deadline, now time.Time, sentinel string) string {
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return sentinel
	}
	return FormatRemaining(remaining)
}

// CountdownAt calcule le triplet pour la phase donnée à l'instant now.
// Seuls les channels actifs de la phase sont renseignés, les autres
// restent vides. remaining <= 0 produit la sentinelle du channel,
// jamais une valeur négative.
func (s DeadlineSnapshot) CountdownAt(now time.Time, phase Phase) Countdown {
	var cd Countdown
	switch phase {
	case PhaseLaunch:
		cd.TimeLeft = remainingOrSentinel(s.LaunchDeadline, now, SentinelLaunchEnded)
	case PhaseActive:
		cd.RaffleTimeLeft = remainingOrSentinel(s.RaffleDeadline, now, SentinelRaffleDue)
		cd.DepositTimeLeft = remainingOrSentinel(s.DepositWindowEnd, now, SentinelPaymentDue)
	default:
		// Phase sans compte à rebours : tout reste vide.
	}
	return cd
}
