package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"grandmaster/internal/db"
	"grandmaster/internal/httputil"
)

type HistoryView struct {
	Total     int                `json:"total"`
	Games     []db.GameDetail    `json:"games"`
	Summaries []db.ResultSummary `json:"summaries"`
}

type historyQuery struct {
	Mode   string `validate:"omitempty,oneof=local ai remote"`
	Result string `validate:"omitempty,oneof=1-0 0-1 1/2-1/2"`
	Limit  int    `validate:"gte=0,lte=500"`
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	gameCount, err := h.store.CountGames(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	recentGames, err := h.store.ListFinishedGames(ctx, 10)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = h.tpl.ExecuteTemplate(w, "index.html", map[string]any{
		"GameCount":   gameCount,
		"TableCount":  h.hub.Len(),
		"RecentGames": recentGames,
		"IsAdmin":     h.isAdminRequest(w, r),
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.SendResponse(w, http.StatusOK, httputil.NewDataResponse(true, "ok", map[string]int{
		"tables":  h.hub.Len(),
		"clients": h.wsm.ClientCount(),
	}))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := historyQuery{
		Mode:   strings.TrimSpace(q.Get("mode")),
		Result: strings.TrimSpace(q.Get("result")),
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.SendError(w, http.StatusUnprocessableEntity, "limit must be a number")
			return
		}
		query.Limit = n
	}
	if resp := httputil.ValidateStruct(query); resp != nil {
		httputil.SendResponse(w, http.StatusUnprocessableEntity, resp)
		return
	}

	ctx := r.Context()
	total, games, err := h.store.SearchGames(ctx, db.GameSearchFilter{
		Mode:   query.Mode,
		Result: query.Result,
	}, query.Limit)
	if err != nil {
		httputil.SendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	summaries, err := h.store.ListResultSummaries(ctx)
	if err != nil {
		httputil.SendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if games == nil {
		games = []db.GameDetail{}
	}
	if summaries == nil {
		summaries = []db.ResultSummary{}
	}
	httputil.SendResponse(w, http.StatusOK, httputil.NewDataResponse(true, "ok", HistoryView{
		Total:     total,
		Games:     games,
		Summaries: summaries,
	}))
}

func (h *Handler) handleHistoryPGN(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	if !strings.HasSuffix(file, ".pgn") {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.ParseInt(strings.TrimSuffix(file, ".pgn"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	pgn, err := h.store.GamePGN(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrGameNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/x-chess-pgn; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=game-%d.pgn", id))
	_, _ = w.Write([]byte(strings.TrimRight(pgn, "\n") + "\n"))
}

func (h *Handler) handleHistoryGame(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httputil.SendError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	gd, err := h.store.GetGame(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrGameNotFound) {
			httputil.SendError(w, http.StatusNotFound, err.Error())
			return
		}
		httputil.SendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.SendResponse(w, http.StatusOK, httputil.NewDataResponse(true, "ok", gd))
}

// resultLabel renders a result for humans, e.g. "Black wins (Checkmate)".
func resultLabel(result, termination string) string {
	label := ""
	switch result {
	case "1-0":
		label = "White wins"
	case "0-1":
		label = "Black wins"
	case "1/2-1/2":
		label = "Draw"
	default:
		label = result
	}
	if termination != "" {
		label += " (" + termination + ")"
	}
	return label
}
