package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rowanvale/questlog/internal/engine"
	"github.com/rowanvale/questlog/internal/stats"
)

type StatsHandler struct {
	engine *engine.Engine
}

func NewStatsHandler(eng *engine.Engine) *StatsHandler {
	return &StatsHandler{engine: eng}
}

func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.State()
	writeJSON(w, http.StatusOK, stats.Summarize(snap, time.Now()))
}

// Calendar serves the month grid. Year and month default to the current
// month when the query parameters are absent.
func (h *StatsHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), now.Month()

	if s := r.URL.Query().Get("year"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1970 || v > 9999 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid year"})
			return
		}
		year = v
	}
	if s := r.URL.Query().Get("month"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > 12 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid month"})
			return
		}
		month = time.Month(v)
	}

	snap := h.engine.State()
	writeJSON(w, http.StatusOK, stats.Calendar(snap, year, month))
}
