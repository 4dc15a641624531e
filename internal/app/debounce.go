package app

import (
	"sync"
	"time"

	"github.com/Jaseempk/kuri-web-sub004/internal/domain"
)

// Relay débounce chaque channel indépendamment (trailing edge) avant de
// livrer au Publisher : chaque nouvelle valeur brute relance la fenêtre
// du channel, et seule la dernière valeur observée dans la fenêtre est
// livrée. Découple la cadence de tick (1 s) de la cadence de
// notification aval, au prix d'au plus une fenêtre de latence.
type Relay struct {
	pub *Publisher

	mu      sync.Mutex
	delay   time.Duration
	pending [domain.ChannelCount]string
	timers  [domain.ChannelCount]*time.Timer
	// seq invalide les tirs de timers périmés : un timer déjà parti au
	// moment d'un Offer/Cancel ne doit rien livrer.
	seq    [domain.ChannelCount]uint64
	closed bool
}

// NewRelay crée un relay avec le délai donné. delay <= 0 livre de
// façon synchrone, sans timer.
func NewRelay(pub *Publisher, delay time.Duration) *Relay {
	return &Relay{pub: pub, delay: delay}
}

// SetDelay ajuste le délai à chaud. Les fenêtres déjà ouvertes vont au
// bout avec l'ancien délai.
func (r *Relay) SetDelay(delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delay = delay
}

// Offer propose une valeur brute pour un channel. La fenêtre du channel
// repart de zéro ; toute valeur précédente non livrée est écrasée.
func (r *Relay) Offer(ch domain.Channel, value string) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if r.delay <= 0 {
		r.mu.Unlock()
		r.pub.Update(ch, value)
		return
	}
	r.pending[ch] = value
	r.seq[ch]++
	gen := r.seq[ch]
	if t := r.timers[ch]; t != nil {
		t.Stop()
	}
	r.timers[ch] = time.AfterFunc(r.delay, func() { r.flush(ch, gen) })
	r.mu.Unlock()
}

// Cancel abandonne la livraison en attente d'un channel. Utilisé quand
// un changement de phase vide ce channel : la valeur débouncée ne doit
// pas réapparaître après coup.
func (r *Relay) Cancel(ch domain.Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq[ch]++
	if t := r.timers[ch]; t != nil {
		t.Stop()
		r.timers[ch] = nil
	}
}

// Replace court-circuite le debounce : toutes les fenêtres en cours
// sont abandonnées et le triplet entier part immédiatement, en une
// seule diffusion. Sert à la capture d'un snapshot : un changement de
// phase doit remplacer la sortie périmée de façon synchrone.
func (r *Relay) Replace(cd domain.Countdown) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	for i := range r.timers {
		r.seq[i]++
		if t := r.timers[i]; t != nil {
			t.Stop()
			r.timers[i] = nil
		}
	}
	r.mu.Unlock()

	r.pub.Replace(cd)
}

func (r *Relay) flush(ch domain.Channel, gen uint64) {
	r.mu.Lock()
	if r.closed || gen != r.seq[ch] {
		r.mu.Unlock()
		return
	}
	r.timers[ch] = nil
	value := r.pending[ch]
	r.mu.Unlock()

	r.pub.Update(ch, value)
}

// Close arrête tous les timers. Plus aucune livraison après Close.
func (r *Relay) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for i := range r.timers {
		r.seq[i]++
		if t := r.timers[i]; t != nil {
			t.Stop()
			r.timers[i] = nil
		}
	}
}
