package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Jaseempk/kuri-web-sub004/internal/app"
	"github.com/Jaseempk/kuri-web-sub004/internal/domain"
	"github.com/Jaseempk/kuri-web-sub004/internal/httpjson"
	"github.com/Jaseempk/kuri-web-sub004/internal/ports"
	"github.com/go-chi/chi/v5"
)

type CycleHandler struct {
	scheduler *app.Scheduler
	publisher *app.Publisher
	bus       ports.EventBus
}

func NewCycleHandler(scheduler *app.Scheduler, publisher *app.Publisher, bus ports.EventBus) *CycleHandler {
	return &CycleHandler{scheduler: scheduler, publisher: publisher, bus: bus}
}

func (h *CycleHandler) Routes(r chi.Router) {
	r.Put("/cycle", h.put)
	r.Get("/cycle", h.get)
	r.Get("/countdown", h.countdown)
}

// cycleRequest est l'enregistrement de cycle tel que le collaborateur
// chaîne le pousse. La phase arrive en texte libre ; tout ce qui n'est
// pas launch/active est classé other.
type cycleRequest struct {
	Phase                 string `json:"phase"`
	LaunchDeadlineSec     int64  `json:"launchDeadline"`
	RaffleDeadlineSec     int64  `json:"raffleDeadline"`
	DepositWindowStartSec int64  `json:"depositWindowStart"`
	ActiveParticipants    int    `json:"activeParticipants"`
	TotalParticipants     int    `json:"totalParticipants"`
}

type cycleResponse struct {
	Phase      domain.Phase     `json:"phase"`
	CapturedAt time.Time        `json:"capturedAt"`
	Record     cycleRequest     `json:"record"`
	Countdown  domain.Countdown `json:"countdown"`
}

func (h *CycleHandler) put(w http.ResponseWriter, r *http.Request) {
	var req cycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}

	record := domain.CycleRecord{
		Phase:                 domain.ParsePhase(req.Phase),
		LaunchDeadlineSec:     req.LaunchDeadlineSec,
		RaffleDeadlineSec:     req.RaffleDeadlineSec,
		DepositWindowStartSec: req.DepositWindowStartSec,
		ActiveParticipants:    req.ActiveParticipants,
		TotalParticipants:     req.TotalParticipants,
	}
	h.scheduler.Track(record)

	if h.bus != nil {
		if b, err := json.Marshal(record); err == nil {
			h.bus.Publish(ports.TopicCycleTracked, b)
		}
	}

	cd, err := h.publisher.Current()
	if err != nil {
		writePublisherError(w, err)
		return
	}
	_, snap, _ := h.scheduler.Tracked()
	httpjson.Write(w, http.StatusOK, cycleResponse{
		Phase:      record.Phase,
		CapturedAt: snap.CapturedAt,
		Record:     req,
		Countdown:  cd,
	})
}

func (h *CycleHandler) get(w http.ResponseWriter, r *http.Request) {
	record, snap, ok := h.scheduler.Tracked()
	if !ok {
		httpjson.WriteError(w, http.StatusNotFound, "no cycle tracked")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{
		"phase":      record.Phase,
		"capturedAt": snap.CapturedAt,
		"deadlines": map[string]any{
			"launchDeadline":     snap.LaunchDeadline,
			"raffleDeadline":     snap.RaffleDeadline,
			"depositWindowStart": snap.DepositWindowStart,
			"depositWindowEnd":   snap.DepositWindowEnd,
		},
	})
}

func (h *CycleHandler) countdown(w http.ResponseWriter, r *http.Request) {
	cd, err := h.publisher.Current()
	if err != nil {
		writePublisherError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, cd)
}

func writePublisherError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ports.ErrScopeClosed) {
		// Violation de contrat : le scope de publication est terminé.
		// 503 pour signaler au client que le service est en train de
		// s'arrêter, pas qu'il a mal formé sa requête.
		status = http.StatusServiceUnavailable
	}
	httpjson.WriteError(w, status, err.Error())
}
