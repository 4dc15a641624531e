package app

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Jaseempk/kuri-web-sub004/internal/domain"
	"github.com/Jaseempk/kuri-web-sub004/internal/ports"
)

// recordingBus capture les publications pour les assertions.
type recordingBus struct {
	mu     sync.Mutex
	events []ports.Event
}

func (b *recordingBus) Publish(topic string, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ports.Event{Topic: topic, Payload: payload})
}

func (b *recordingBus) Subscribe() (<-chan ports.Event, func()) {
	ch := make(chan ports.Event)
	close(ch)
	return ch, func() {}
}

func (b *recordingBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

func TestPublisher_EmptyBeforeFirstCapture(t *testing.T) {
	p := NewPublisher(nil)
	defer p.Close()

	cd, err := p.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cd != (domain.Countdown{}) {
		t.Fatalf("want empty triple before first capture, got %+v", cd)
	}
}

func TestPublisher_UpdateAndSubscribe(t *testing.T) {
	bus := &recordingBus{}
	p := NewPublisher(bus)
	defer p.Close()

	ch, cancel, err := p.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	p.Update(domain.ChannelLaunch, "0d 0h 1m 30s")

	select {
	case cd := <-ch:
		if cd.TimeLeft != "0d 0h 1m 30s" {
			t.Fatalf("timeLeft: got %q", cd.TimeLeft)
		}
	case <-time.After(250 * time.Millisecond):
		t.Fatalf("expected an update")
	}

	cd, err := p.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cd.TimeLeft != "0d 0h 1m 30s" {
		t.Fatalf("current: got %+v", cd)
	}
	if bus.count() != 1 {
		t.Fatalf("bus publications: want 1, got %d", bus.count())
	}
}

func TestPublisher_ReplaceIsSingleNotification(t *testing.T) {
	p := NewPublisher(nil)
	defer p.Close()

	ch, cancel, err := p.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	p.Replace(domain.Countdown{RaffleTimeLeft: "0d 1h 1m 40s", DepositTimeLeft: "2d 0h 0m 0s"})

	var got []domain.Countdown
	deadline := time.After(150 * time.Millisecond)
loop:
	for {
		select {
		case cd := <-ch:
			got = append(got, cd)
		case <-deadline:
			break loop
		}
	}
	if len(got) != 1 {
		t.Fatalf("notifications: want 1, got %d", len(got))
	}
	// Le triplet arrive entier, jamais à moitié rempli.
	if got[0].RaffleTimeLeft == "" || got[0].DepositTimeLeft == "" {
		t.Fatalf("partial triple delivered: %+v", got[0])
	}
}

func TestPublisher_ScopeClosed(t *testing.T) {
	p := NewPublisher(nil)

	ch, _, err := p.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	p.Close()

	// L'abonné existant est fermé.
	if _, ok := <-ch; ok {
		t.Fatalf("subscriber channel should be closed")
	}

	// Lecture hors scope : violation de contrat, erreur immédiate.
	if _, err := p.Current(); !errors.Is(err, ports.ErrScopeClosed) {
		t.Fatalf("Current after Close: want ErrScopeClosed, got %v", err)
	}
	if _, _, err := p.Subscribe(); !errors.Is(err, ports.ErrScopeClosed) {
		t.Fatalf("Subscribe after Close: want ErrScopeClosed, got %v", err)
	}

	// Update après Close : no-op, pas de panique.
	p.Update(domain.ChannelLaunch, "x")
	p.Close()
}

func TestPublisher_SlowSubscriberDoesNotBlock(t *testing.T) {
	p := NewPublisher(nil)
	defer p.Close()

	_, cancel, err := p.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			p.Update(domain.ChannelLaunch, "v")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publisher blocked on slow subscriber")
	}
}
