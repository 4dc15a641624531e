package app

import (
	"sync"
	"testing"
	"time"

	"github.com/Jaseempk/kuri-web-sub004/internal/domain"
	"github.com/rs/zerolog"
)

// fakeClock pilote l'horloge du scheduler ; les ticks restent réels
// mais courts, seul now() est simulé.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// newTestScheduler assemble publisher + relay (sans debounce) +
// scheduler à tick court, sur horloge simulée.
func newTestScheduler(t *testing.T) (*Publisher, *Scheduler, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	pub := NewPublisher(nil)
	relay := NewRelay(pub, 0)
	sched := NewScheduler(zerolog.Nop(), relay)
	sched.now = clock.Now
	sched.ApplySettings(domain.Settings{TickMillis: 10})
	t.Cleanup(func() {
		sched.Close()
		relay.Close()
		pub.Close()
	})
	return pub, sched, clock
}

func launchRecord(clock *fakeClock, in time.Duration) domain.CycleRecord {
	return domain.CycleRecord{
		Phase:             domain.PhaseLaunch,
		LaunchDeadlineSec: clock.Now().Add(in).Unix(),
	}
}

func activeRecord(clock *fakeClock, raffleIn time.Duration) domain.CycleRecord {
	now := clock.Now()
	return domain.CycleRecord{
		Phase:                 domain.PhaseActive,
		RaffleDeadlineSec:     now.Add(raffleIn).Unix(),
		DepositWindowStartSec: now.Unix(),
	}
}

func waitFor(t *testing.T, pub *Publisher, want func(domain.Countdown) bool) domain.Countdown {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		cd, err := pub.Current()
		if err != nil {
			t.Fatalf("Current: %v", err)
		}
		if want(cd) {
			return cd
		}
		time.Sleep(5 * time.Millisecond)
	}
	cd, _ := pub.Current()
	t.Fatalf("condition never met, last triple: %+v", cd)
	return domain.Countdown{}
}

func TestScheduler_LaunchInitialValue(t *testing.T) {
	pub, sched, clock := newTestScheduler(t)

	sched.Track(launchRecord(clock, 90*time.Second))

	cd, err := pub.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cd.TimeLeft != "0d 0h 1m 30s" {
		t.Fatalf("timeLeft: want %q, got %q", "0d 0h 1m 30s", cd.TimeLeft)
	}
	if cd.RaffleTimeLeft != "" || cd.DepositTimeLeft != "" {
		t.Fatalf("inactive channels should stay empty: %+v", cd)
	}
}

func TestScheduler_ActiveInitialValue(t *testing.T) {
	pub, sched, clock := newTestScheduler(t)

	sched.Track(activeRecord(clock, 3_700_000*time.Millisecond))

	cd, err := pub.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cd.RaffleTimeLeft != "0d 1h 1m 40s" {
		t.Fatalf("raffleTimeLeft: want %q, got %q", "0d 1h 1m 40s", cd.RaffleTimeLeft)
	}
	if cd.DepositTimeLeft != "3d 0h 0m 0s" {
		t.Fatalf("depositTimeLeft: want %q, got %q", "3d 0h 0m 0s", cd.DepositTimeLeft)
	}
	if cd.TimeLeft != "" {
		t.Fatalf("timeLeft should be empty in active phase: %+v", cd)
	}
}

func TestScheduler_TickReachesSentinel(t *testing.T) {
	pub, sched, clock := newTestScheduler(t)

	sched.Track(launchRecord(clock, 90*time.Second))
	clock.Advance(91 * time.Second)

	cd := waitFor(t, pub, func(cd domain.Countdown) bool {
		return cd.TimeLeft == domain.SentinelLaunchEnded
	})
	if cd.RaffleTimeLeft != "" || cd.DepositTimeLeft != "" {
		t.Fatalf("inactive channels should stay empty: %+v", cd)
	}
}

func TestScheduler_SuppressesUnchangedEmissions(t *testing.T) {
	pub, sched, clock := newTestScheduler(t)

	ch, cancel, err := pub.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	sched.Track(launchRecord(clock, 90*time.Second))

	// Horloge figée : chaque tick recalcule la même chaîne, qui ne doit
	// être notifiée qu'une seule fois (la capture initiale).
	time.Sleep(150 * time.Millisecond)

	var got int
drain:
	for {
		select {
		case <-ch:
			got++
		default:
			break drain
		}
	}
	if got != 1 {
		t.Fatalf("notifications: want 1, got %d", got)
	}
}

func TestScheduler_SameKeyDoesNotRecapture(t *testing.T) {
	_, sched, clock := newTestScheduler(t)

	rec := launchRecord(clock, 90*time.Second)
	sched.Track(rec)
	_, snap1, ok := sched.Tracked()
	if !ok {
		t.Fatalf("expected a tracked cycle")
	}

	clock.Advance(10 * time.Second)
	// Même clé, compteurs de participants différents : réévaluation
	// sans changement d'identité, pas de re-capture.
	rec.ActiveParticipants = 7
	sched.Track(rec)

	_, snap2, _ := sched.Tracked()
	if !snap2.CapturedAt.Equal(snap1.CapturedAt) {
		t.Fatalf("snapshot recaptured on identical key: %v vs %v", snap1.CapturedAt, snap2.CapturedAt)
	}
}

func TestScheduler_PhaseTransitionClearsStaleOutput(t *testing.T) {
	pub, sched, clock := newTestScheduler(t)

	sched.Track(launchRecord(clock, 90*time.Second))
	waitFor(t, pub, func(cd domain.Countdown) bool { return cd.TimeLeft != "" })

	sched.Track(activeRecord(clock, time.Hour))

	// La transition vide timeLeft immédiatement et re-capture.
	cd, err := pub.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cd.TimeLeft != "" {
		t.Fatalf("stale launch value survived transition: %+v", cd)
	}
	if cd.RaffleTimeLeft == "" || cd.DepositTimeLeft == "" {
		t.Fatalf("active channels should be populated: %+v", cd)
	}

	// Et aucune valeur launch ne réapparaît ensuite.
	clock.Advance(time.Second)
	time.Sleep(100 * time.Millisecond)
	cd, _ = pub.Current()
	if cd.TimeLeft != "" {
		t.Fatalf("stale launch value re-emitted after transition: %+v", cd)
	}
}

func TestScheduler_OtherPhaseClearsAndStopsTicking(t *testing.T) {
	pub, sched, clock := newTestScheduler(t)

	sched.Track(activeRecord(clock, time.Hour))
	waitFor(t, pub, func(cd domain.Countdown) bool { return cd.RaffleTimeLeft != "" })

	sched.Track(domain.CycleRecord{Phase: domain.PhaseOther})

	cd, err := pub.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cd != (domain.Countdown{}) {
		t.Fatalf("other phase should clear all outputs: %+v", cd)
	}

	// Plus aucun tick : l'horloge peut avancer, rien ne bouge.
	clock.Advance(10 * time.Second)
	time.Sleep(100 * time.Millisecond)
	cd, _ = pub.Current()
	if cd != (domain.Countdown{}) {
		t.Fatalf("output changed without an active phase: %+v", cd)
	}
}

func TestScheduler_CloseStopsCallbacks(t *testing.T) {
	pub, sched, clock := newTestScheduler(t)

	ch, cancel, err := pub.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	sched.Track(launchRecord(clock, 90*time.Second))
	<-ch // capture initiale

	sched.Close()
	clock.Advance(5 * time.Second)
	time.Sleep(100 * time.Millisecond)

	select {
	case cd := <-ch:
		t.Fatalf("callback after Close: %+v", cd)
	default:
	}

	// Track après Close : no-op.
	sched.Track(activeRecord(clock, time.Hour))
	if cd, _ := pub.Current(); cd.RaffleTimeLeft != "" {
		t.Fatalf("track after Close should be a no-op: %+v", cd)
	}
}

func TestScheduler_DepositWindowSetting(t *testing.T) {
	pub, sched, clock := newTestScheduler(t)

	// Fenêtre de dépôt réduite à 1 jour via settings.
	sched.ApplySettings(domain.Settings{DepositWindowMillis: 86_400_000})
	sched.Track(activeRecord(clock, time.Hour))

	cd, err := pub.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cd.DepositTimeLeft != "1d 0h 0m 0s" {
		t.Fatalf("depositTimeLeft: want %q, got %q", "1d 0h 0m 0s", cd.DepositTimeLeft)
	}
}
