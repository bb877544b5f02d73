package handler

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rowanvale/questlog/internal/config"
	"github.com/rowanvale/questlog/internal/engine"
	"github.com/rowanvale/questlog/internal/model"
)

func newTestMux(t *testing.T) (*http.ServeMux, *engine.Engine) {
	t.Helper()
	e := engine.New(engine.SystemClock(), config.DefaultRewards(), slog.Default())
	h := NewQuestHandler(e, nil, slog.Default())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/quests/{type}", h.Create)
	mux.HandleFunc("GET /api/quests/{type}/{id}", h.Get)
	mux.HandleFunc("POST /api/quests/{type}/{id}/progress", h.AddProgress)
	mux.HandleFunc("POST /api/quests/{type}/{id}/complete", h.Complete)
	return mux, e
}

func do(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCreateQuestRequiresTarget(t *testing.T) {
	mux, e := newTestMux(t)

	rec := do(t, mux, "POST", "/api/quests/daily",
		`{"title":"Drink water","trackingKind":"milliliters"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got := len(e.Quests(model.QuestDaily)); got != 0 {
		t.Errorf("quests created = %d, want 0", got)
	}

	rec = do(t, mux, "POST", "/api/quests/daily",
		`{"title":"Drink water","trackingKind":"milliliters","targetAmount":2000}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
}

func TestProgressOnCompletedQuest(t *testing.T) {
	mux, e := newTestMux(t)
	q, err := e.CreateQuest(model.QuestDaily, "Stretch", "", model.TrackUnit, 1)
	if err != nil {
		t.Fatalf("CreateQuest error: %v", err)
	}
	if _, err := e.Complete(model.QuestDaily, q.ID); err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	// A completed quest still exists: progressing it is a 200 no-op, not a
	// 404.
	rec := do(t, mux, "POST", "/api/quests/daily/"+q.ID+"/progress", `{"amount":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	rec = do(t, mux, "POST", "/api/quests/daily/"+q.ID+"/complete", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("complete status = %d, want %d", rec.Code, http.StatusOK)
	}

	// Unknown ids are the 404 case.
	rec = do(t, mux, "POST", "/api/quests/daily/missing/progress", `{"amount":1}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	if e.Coins() != 5 {
		t.Errorf("coins = %d, want 5 (no reward re-issued)", e.Coins())
	}
}
