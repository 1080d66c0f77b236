package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/user/tagging-fight-cli/cache"
	"github.com/user/tagging-fight-cli/db"
)

// FightReader is the read side of the fight store.
type FightReader interface {
	ListFights(ctx context.Context, athleteID string, limit, offset int) ([]db.Fight, error)
	GetFight(ctx context.Context, id int64) (*db.Fight, error)
	FightRounds(ctx context.Context, fightID int64) ([]db.Round, error)
	FightStrikes(ctx context.Context, fightID int64) ([]db.Strike, error)
	FightStats(ctx context.Context, id int64) (json.RawMessage, error)
}

// FightsHandler serves saved fights.
type FightsHandler struct {
	store    FightReader
	reports  *cache.Reports
	maxLimit int
}

// NewFightsHandler creates a fights handler. reports may be nil.
func NewFightsHandler(store FightReader, reports *cache.Reports, maxLimit int) *FightsHandler {
	if maxLimit <= 0 {
		maxLimit = 200
	}
	return &FightsHandler{store: store, reports: reports, maxLimit: maxLimit}
}

type fightDetail struct {
	db.Fight
	Rounds []db.Round `json:"rounds"`
}

// HandleList handles GET /fights?athlete_id=&limit=&offset=.
func (h *FightsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), 50)
	if err != nil || limit < 1 || limit > h.maxLimit {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	fights, err := h.store.ListFights(r.Context(), q.Get("athlete_id"), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, fights)
}

// HandleGet handles GET /fights/{id}.
func (h *FightsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := fightID(w, r)
	if !ok {
		return
	}
	fight, err := h.store.GetFight(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	rounds, err := h.store.FightRounds(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fightDetail{Fight: *fight, Rounds: rounds})
}

// HandleStrikes handles GET /fights/{id}/strikes.
func (h *FightsHandler) HandleStrikes(w http.ResponseWriter, r *http.Request) {
	id, ok := fightID(w, r)
	if !ok {
		return
	}
	if _, err := h.store.GetFight(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	strikes, err := h.store.FightStrikes(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, strikes)
}

// HandleReport handles GET /fights/{id}/report, served from the cache when possible.
func (h *FightsHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	id, ok := fightID(w, r)
	if !ok {
		return
	}
	load := func(ctx context.Context) (json.RawMessage, error) {
		return h.store.FightStats(ctx, id)
	}
	var raw json.RawMessage
	var err error
	if h.reports != nil {
		raw, err = h.reports.Get(r.Context(), id, load)
	} else {
		raw, err = load(r.Context())
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func fightID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return 0, false
	}
	return id, true
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, db.ErrFightNotFound) {
		writeError(w, http.StatusNotFound, "not_found", ErrNotFound)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err)
}
