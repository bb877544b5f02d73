package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rowanvale/questlog/internal/engine"
	"github.com/rowanvale/questlog/internal/model"
	"github.com/rowanvale/questlog/internal/websocket"
)

type QuestHandler struct {
	engine *engine.Engine
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewQuestHandler(eng *engine.Engine, hub *websocket.Hub, logger *slog.Logger) *QuestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestHandler{engine: eng, hub: hub, logger: logger}
}

func (h *QuestHandler) broadcast(ev websocket.Event) {
	if h.hub != nil {
		h.hub.Broadcast(ev)
	}
}

type questRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	TrackingKind string   `json:"trackingKind"`
	TargetAmount *float64 `json:"targetAmount"`
}

// questType reads and validates the {type} path segment.
func questType(r *http.Request) (model.QuestType, bool) {
	qt := model.QuestType(r.PathValue("type"))
	return qt, qt.Valid()
}

func (h *QuestHandler) Create(w http.ResponseWriter, r *http.Request) {
	qt, ok := questType(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quest type"})
		return
	}

	var req questRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.TargetAmount == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "targetAmount is required"})
		return
	}

	quest, err := h.engine.CreateQuest(qt, strings.TrimSpace(req.Title), req.Description,
		model.TrackingKind(req.TrackingKind), *req.TargetAmount)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.broadcast(websocket.NewEvent("quest", "created", h.engine.Revision(), quest.ID))

	writeJSON(w, http.StatusCreated, quest)
}

func (h *QuestHandler) List(w http.ResponseWriter, r *http.Request) {
	qt, ok := questType(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quest type"})
		return
	}
	quests := h.engine.Quests(qt)
	if quests == nil {
		quests = []model.Quest{}
	}
	writeJSON(w, http.StatusOK, quests)
}

func (h *QuestHandler) Get(w http.ResponseWriter, r *http.Request) {
	qt, ok := questType(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quest type"})
		return
	}
	quest := h.engine.Quest(qt, idParam(r))
	if quest == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "quest not found"})
		return
	}
	writeJSON(w, http.StatusOK, quest)
}

func (h *QuestHandler) Update(w http.ResponseWriter, r *http.Request) {
	qt, ok := questType(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quest type"})
		return
	}

	var req struct {
		Title         *string  `json:"title"`
		Description   *string  `json:"description"`
		TrackingKind  *string  `json:"trackingKind"`
		TargetAmount  *float64 `json:"targetAmount"`
		CurrentAmount *float64 `json:"currentAmount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	patch := engine.QuestPatch{
		Title:         req.Title,
		Description:   req.Description,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
	}
	if req.TrackingKind != nil {
		kind := model.TrackingKind(*req.TrackingKind)
		patch.TrackingKind = &kind
	}

	quest, err := h.engine.UpdateQuest(qt, idParam(r), patch)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if quest == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "quest not found"})
		return
	}

	h.broadcast(websocket.NewEvent("quest", "updated", h.engine.Revision(), quest.ID))

	writeJSON(w, http.StatusOK, quest)
}

func (h *QuestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	qt, ok := questType(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quest type"})
		return
	}

	id := idParam(r)
	h.engine.DeleteQuest(qt, id)

	h.broadcast(websocket.NewEvent("quest", "deleted", h.engine.Revision(), id))

	w.WriteHeader(http.StatusNoContent)
}

func (h *QuestHandler) AddProgress(w http.ResponseWriter, r *http.Request) {
	qt, ok := questType(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quest type"})
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	before := h.engine.Revision()
	quest, err := h.engine.AddProgress(qt, idParam(r), req.Amount)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if quest == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "quest not found"})
		return
	}

	// Progress on an already-completed quest is a no-op; nothing to
	// announce.
	if rev := h.engine.Revision(); rev != before {
		action := "progressed"
		if quest.Completed {
			action = "completed"
		}
		h.broadcast(websocket.NewEvent("quest", action, rev, quest.ID))
	}

	writeJSON(w, http.StatusOK, quest)
}

func (h *QuestHandler) Complete(w http.ResponseWriter, r *http.Request) {
	qt, ok := questType(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quest type"})
		return
	}

	before := h.engine.Revision()
	quest, err := h.engine.Complete(qt, idParam(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if quest == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "quest not found"})
		return
	}

	if rev := h.engine.Revision(); rev != before {
		h.broadcast(websocket.NewEvent("quest", "completed", rev, quest.ID))
	}

	writeJSON(w, http.StatusOK, quest)
}

func idParam(r *http.Request) string {
	return r.PathValue("id")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeEngineError maps engine error types to HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	var ve engine.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error()})
		return
	}
	var fe engine.InsufficientFundsError
	if errors.As(err, &fe) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": fe.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
