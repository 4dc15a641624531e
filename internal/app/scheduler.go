package app

import (
	"context"
	"sync"
	"time"

	"github.com/Jaseempk/kuri-web-sub004/internal/domain"
	"github.com/rs/zerolog"
)

// Scheduler possède l'unique tick périodique qui recalcule les chaînes
// de temps restant à partir du snapshot et de l'horloge locale.
//
// Invariants :
//   - au plus un ticker vivant par génération de snapshot ;
//   - la re-capture n'a lieu que si la clé structurelle du cycle
//     change, jamais sur une simple réévaluation ;
//   - l'invalidation d'une génération est synchrone : après Track ou
//     Close, aucun tick de l'ancienne génération ne peut plus émettre.
type Scheduler struct {
	logger zerolog.Logger
	relay  *Relay

	// now est remplacée dans les tests pour piloter l'horloge.
	now func() time.Time

	mu            sync.Mutex
	tickInterval  time.Duration
	depositWindow time.Duration
	gen           uint64
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	hasKey        bool
	key           domain.CycleKey
	record        domain.CycleRecord
	snap          domain.DeadlineSnapshot
	// last garde la dernière valeur émise par channel pour supprimer
	// les réémissions identiques.
	last   domain.Countdown
	closed bool
}

func NewScheduler(logger zerolog.Logger, relay *Relay) *Scheduler {
	return &Scheduler{
		logger:        logger,
		relay:         relay,
		now:           time.Now,
		tickInterval:  time.Second,
		depositWindow: domain.DefaultDepositWindow,
	}
}

// ApplySettings ajuste la période de tick et la fenêtre de dépôt.
// Prend effet à la prochaine capture ; le ticker en cours n'est pas
// redémarré.
func (s *Scheduler) ApplySettings(settings domain.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d := settings.TickInterval(); d > 0 {
		s.tickInterval = d
	}
	if d := settings.DepositWindow(); d > 0 {
		s.depositWindow = d
	}
}

// Track observe un enregistrement de cycle. Même clé → no-op. Clé
// différente → invalidation synchrone de la génération précédente,
// capture d'un snapshot frais, remise à zéro immédiate des channels
// inactifs, émission des valeurs initiales, puis démarrage d'une
// boucle de tick si la phase en justifie une.
func (s *Scheduler) Track(record domain.CycleRecord) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	key := record.Key()
	if s.hasKey && key == s.key {
		// Réévaluation sans changement d'identité : pas de re-capture.
		s.mu.Unlock()
		return
	}

	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	now := s.now()
	s.key = key
	s.hasKey = true
	s.record = record
	s.snap = domain.CaptureSnapshot(record, now, s.depositWindow)

	// CountdownAt ne renseigne que les channels actifs de la phase ;
	// les autres sortent vides, ce qui efface toute valeur périmée.
	// Les valeurs de capture partent sans debounce, en une seule
	// diffusion atomique.
	cd := s.snap.CountdownAt(now, key.Phase)
	s.last = cd
	s.relay.Replace(cd)

	if key.Phase.Ticks() {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		interval := s.tickInterval
		s.wg.Add(1)
		go s.run(ctx, gen, interval)
	}
	s.mu.Unlock()

	s.logger.Debug().
		Str("phase", string(key.Phase)).
		Time("captured_at", now).
		Bool("ticking", key.Phase.Ticks()).
		Msg("cycle snapshot captured")
}

// Tracked renvoie le dernier enregistrement suivi et son snapshot.
func (s *Scheduler) Tracked() (domain.CycleRecord, domain.DeadlineSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record, s.snap, s.hasKey
}

func (s *Scheduler) run(ctx context.Context, gen uint64, interval time.Duration) {
	defer s.wg.Done()
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(gen)
		}
	}
}

// tick recalcule les channels actifs et n'émet que ce qui a changé.
func (s *Scheduler) tick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		// Génération annulée entre le tir du ticker et la prise du
		// verrou : ne rien émettre.
		return
	}

	active := s.key.Phase.Channels()
	cd := s.snap.CountdownAt(s.now(), s.key.Phase)
	for ch := domain.Channel(0); ch < domain.ChannelCount; ch++ {
		if !active.Has(ch) {
			continue
		}
		v := cd.Get(ch)
		if v == s.last.Get(ch) {
			continue
		}
		s.last.Set(ch, v)
		s.relay.Offer(ch, v)
	}
}

// Close invalide la génération courante et attend l'arrêt de la boucle
// de tick. Aucun callback ne part après Close.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info().Msg("countdown scheduler stopped")
}
