package app

import (
	"encoding/json"
	"sync"

	"github.com/Jaseempk/kuri-web-sub004/internal/domain"
	"github.com/Jaseempk/kuri-web-sub004/internal/ports"
)

// Publisher détient le triplet courant et le diffuse aux abonnés
// in-process ainsi qu'au bus (topic countdown.updated) pour le SSE.
// Chaque mise à jour remplace le triplet de façon atomique : un abonné
// ne voit jamais un triplet à moitié mis à jour.
//
// Une instance de Publisher matérialise le scope de publication :
// après Close, Current et Subscribe échouent avec ErrScopeClosed.
type Publisher struct {
	bus ports.EventBus

	mu      sync.Mutex
	current domain.Countdown
	subs    map[chan domain.Countdown]struct{}
	alive   bool
}

func NewPublisher(bus ports.EventBus) *Publisher {
	return &Publisher{
		bus:   bus,
		subs:  make(map[chan domain.Countdown]struct{}),
		alive: true,
	}
}

// Current renvoie le triplet courant, ou ErrScopeClosed hors scope.
func (p *Publisher) Current() (domain.Countdown, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.alive {
		return domain.Countdown{}, ports.ErrScopeClosed
	}
	return p.current, nil
}

// Subscribe enregistre un abonné. Le channel renvoyé est fermé par
// cancel ou par Close. Un abonné trop lent perd des mises à jour, il ne
// bloque jamais la publication.
func (p *Publisher) Subscribe() (<-chan domain.Countdown, func(), error) {
	p.mu.Lock()
	if !p.alive {
		p.mu.Unlock()
		return nil, nil, ports.ErrScopeClosed
	}
	ch := make(chan domain.Countdown, 16)
	p.subs[ch] = struct{}{}
	p.mu.Unlock()

	cancel := func() {
		p.mu.Lock()
		if _, ok := p.subs[ch]; ok {
			delete(p.subs, ch)
			close(ch)
		}
		p.mu.Unlock()
	}
	return ch, cancel, nil
}

// Update remplace la valeur d'un channel et diffuse le triplet complet.
func (p *Publisher) Update(ch domain.Channel, value string) {
	p.mu.Lock()
	if !p.alive {
		p.mu.Unlock()
		return
	}
	p.current.Set(ch, value)
	p.broadcastAndUnlock()
}

// Replace remplace le triplet entier en une seule diffusion. Utilisé à
// la capture d'un snapshot : les trois channels changent d'un coup.
func (p *Publisher) Replace(cd domain.Countdown) {
	p.mu.Lock()
	if !p.alive {
		p.mu.Unlock()
		return
	}
	p.current = cd
	p.broadcastAndUnlock()
}

// broadcastAndUnlock diffuse le triplet courant aux abonnés puis
// relâche le verrou avant de publier sur le bus.
func (p *Publisher) broadcastAndUnlock() {
	cd := p.current
	for sub := range p.subs {
		select {
		case sub <- cd:
		default:
			// drop si l'abonné est trop lent
		}
	}
	p.mu.Unlock()

	if p.bus != nil {
		b, err := json.Marshal(cd)
		if err == nil {
			p.bus.Publish(ports.TopicCountdownUpdated, b)
		}
	}
}

// Close termine le scope. Les abonnés restants sont fermés.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.alive {
		return
	}
	p.alive = false
	for sub := range p.subs {
		delete(p.subs, sub)
		close(sub)
	}
}
