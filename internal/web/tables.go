package web

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"grandmaster/internal/engine"
	"grandmaster/internal/game"
	"grandmaster/internal/httputil"
	"grandmaster/internal/room"
	"grandmaster/internal/scene"
)

type newGameRequest struct {
	Mode  string `json:"mode" validate:"required,oneof=local ai remote"`
	Color string `json:"color" validate:"omitempty,oneof=w b white black"`
}

type clickRequest struct {
	Square string `json:"square" validate:"required,len=2"`
}

type shareResponse struct {
	RoomID string `json:"room_id"`
	Link   string `json:"link"`
}

type tableHandler func(w http.ResponseWriter, r *http.Request, t *engine.Runner)

func (h *Handler) withTable(next tableHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := h.hub.Get(r.PathValue("id"))
		if err != nil {
			httputil.SendError(w, http.StatusNotFound, err.Error())
			return
		}
		next(w, r, t)
	}
}

func (h *Handler) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req newGameRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}
	mode, color, ok := parseNewGame(w, req)
	if !ok {
		return
	}
	t := h.hub.Create(mode, color)
	httputil.SendResponse(w, http.StatusCreated, httputil.NewDataResponse(true, "table created", t.Snapshot()))
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, _ *http.Request, t *engine.Runner) {
	httputil.SendResponse(w, http.StatusOK, httputil.NewDataResponse(true, "ok", t.Snapshot()))
}

func (h *Handler) handleNewGame(w http.ResponseWriter, r *http.Request, t *engine.Runner) {
	var req newGameRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}
	mode, color, ok := parseNewGame(w, req)
	if !ok {
		return
	}
	snap, err := h.hub.Restart(t.ID(), mode, color)
	if err != nil {
		h.sendTableError(w, snap, err)
		return
	}
	httputil.SendResponse(w, http.StatusOK, httputil.NewDataResponse(true, "new game", snap))
}

func (h *Handler) handleClick(w http.ResponseWriter, r *http.Request, t *engine.Runner) {
	var req clickRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}
	snap, outcome, err := t.Click(req.Square)
	if err != nil {
		h.sendTableError(w, snap, err)
		return
	}
	httputil.SendResponse(w, http.StatusOK, httputil.NewDataResponse(true, string(outcome), snap))
}

func (h *Handler) handleRetryAI(w http.ResponseWriter, _ *http.Request, t *engine.Runner) {
	snap, err := t.RetryAI()
	if err != nil {
		h.sendTableError(w, snap, err)
		return
	}
	httputil.SendResponse(w, http.StatusAccepted, httputil.NewDataResponse(true, "ai turn scheduled", snap))
}

func (h *Handler) handleScene(w http.ResponseWriter, _ *http.Request, t *engine.Runner) {
	httputil.SendResponse(w, http.StatusOK, httputil.NewDataResponse(true, "ok", scene.Build(t.State())))
}

func (h *Handler) handleShare(w http.ResponseWriter, r *http.Request, t *engine.Runner) {
	code := t.RoomID()
	if code == "" {
		httputil.SendError(w, http.StatusConflict, "table is not a remote game")
		return
	}
	cfg, err := h.conf.GetConfig(r.Context())
	if err != nil {
		httputil.SendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.SendResponse(w, http.StatusOK, httputil.NewDataResponse(true, "ok", shareResponse{
		RoomID: code,
		Link:   room.ShareLink(cfg.ShareBaseURL, code),
	}))
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request, t *engine.Runner) {
	engine.SSEHandler(t).ServeHTTP(w, r)
}

func (h *Handler) handleRoom(w http.ResponseWriter, r *http.Request) {
	t, err := h.hub.ByRoom(r.PathValue("code"))
	if err != nil {
		httputil.SendError(w, http.StatusNotFound, err.Error())
		return
	}
	httputil.SendResponse(w, http.StatusOK, httputil.NewDataResponse(true, "ok", t.Snapshot()))
}

func parseNewGame(w http.ResponseWriter, req newGameRequest) (game.Mode, game.Color, bool) {
	mode, err := game.ParseMode(req.Mode)
	if err != nil {
		httputil.SendError(w, http.StatusUnprocessableEntity, err.Error())
		return "", "", false
	}
	color, err := game.ParseColor(req.Color)
	if err != nil {
		httputil.SendError(w, http.StatusUnprocessableEntity, err.Error())
		return "", "", false
	}
	return mode, color, true
}

// sendTableError maps a rejected table operation to a status code. Rejected
// moves carry the unchanged snapshot so the client can resync.
func (h *Handler) sendTableError(w http.ResponseWriter, snap engine.Snapshot, err error) {
	switch {
	case errors.Is(err, engine.ErrTableNotFound):
		httputil.SendError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrInvalidSquare),
		errors.Is(err, game.ErrInvalidMode),
		errors.Is(err, game.ErrInvalidColor):
		httputil.SendResponse(w, http.StatusUnprocessableEntity, httputil.NewDataResponse(false, err.Error(), snap))
	case errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrAIThinking),
		errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, engine.ErrNoAITurn):
		httputil.SendResponse(w, http.StatusConflict, httputil.NewDataResponse(false, err.Error(), snap))
	default:
		h.log.Error("table operation failed", zap.Error(err))
		httputil.SendError(w, http.StatusInternalServerError, "internal error")
	}
}
