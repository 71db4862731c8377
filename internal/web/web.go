package web

import (
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"grandmaster/internal/configstore"
	"grandmaster/internal/db"
	"grandmaster/internal/engine"
	"grandmaster/internal/ws"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Handler struct {
	hub   *engine.Hub
	store *db.Store
	conf  *configstore.Store
	wsm   *ws.Manager
	log   *zap.Logger

	adminToken string

	tpl *template.Template
}

func NewHandler(hub *engine.Hub, store *db.Store, conf *configstore.Store, wsm *ws.Manager, adminToken string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	tpl := template.Must(template.New("base").Funcs(template.FuncMap{
		"resultLabel": resultLabel,
	}).ParseFS(templatesFS, "templates/*.html"))
	return &Handler{
		hub:        hub,
		store:      store,
		conf:       conf,
		wsm:        wsm,
		log:        log,
		adminToken: adminToken,
		tpl:        tpl,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /healthz", h.handleHealth)

	mux.HandleFunc("POST /api/games", h.handleCreateGame)
	mux.HandleFunc("GET /api/games/{id}", h.withTable(h.handleSnapshot))
	mux.HandleFunc("POST /api/games/{id}/new", h.withTable(h.handleNewGame))
	mux.HandleFunc("POST /api/games/{id}/click", h.withTable(h.handleClick))
	mux.HandleFunc("POST /api/games/{id}/ai/retry", h.withTable(h.handleRetryAI))
	mux.HandleFunc("GET /api/games/{id}/scene", h.withTable(h.handleScene))
	mux.HandleFunc("GET /api/games/{id}/share", h.withTable(h.handleShare))
	mux.HandleFunc("GET /api/games/{id}/events", h.withTable(h.handleEvents))
	mux.HandleFunc("GET /api/rooms/{code}", h.handleRoom)
	mux.HandleFunc("GET /ws", h.wsm.ServeWS)

	mux.HandleFunc("GET /api/history", h.handleHistory)
	mux.HandleFunc("GET /api/history/{id}", h.handleHistoryGame)
	mux.HandleFunc("GET /history/{file}", h.handleHistoryPGN) // /history/{id}.pgn

	mux.HandleFunc("GET /admin", h.requireAdmin(h.handleAdminRoot))
	mux.HandleFunc("GET /admin/ai", h.requireAdmin(h.handleAdminAI))
	mux.HandleFunc("POST /admin/ai", h.requireAdmin(h.handleAdminAISave))
	mux.HandleFunc("POST /admin/history/delete", h.requireAdmin(h.handleAdminHistoryDelete))
	mux.HandleFunc("POST /admin/logout", h.requireAdmin(h.handleAdminLogout))
}
