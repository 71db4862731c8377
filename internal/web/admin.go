package web

import (
	"crypto/subtle"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"grandmaster/internal/configstore"
	"grandmaster/internal/db"
	"grandmaster/internal/httputil"
)

const adminCookie = "grandmaster_admin_token"

type aiSettingsRequest struct {
	Model          string  `json:"model" validate:"required"`
	Temperature    float32 `json:"temperature" validate:"gte=0,lte=2"`
	ThinkingBudget int32   `json:"thinking_budget" validate:"gte=0"`
	MoveDelayMS    int     `json:"move_delay_ms" validate:"gte=0,lte=60000"`
	ShareBaseURL   string  `json:"share_base_url" validate:"omitempty,url"`
}

type AdminView struct {
	Cfg     configstore.Config
	Games   []db.GameDetail
	Errors  []string
	IsAdmin bool
	Page    string
}

func (h *Handler) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: adminCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.adminToken == "" {
			http.Error(w, "/admin disabled (no admin token)", http.StatusForbidden)
			return
		}
		if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
			if tokensEqual(token, h.adminToken) {
				h.setAdminCookie(w)
				next(w, r)
				return
			}
			http.Error(w, "invalid admin token", http.StatusUnauthorized)
			return
		}
		if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
			if tokensEqual(strings.TrimSpace(bearer), h.adminToken) {
				next(w, r)
				return
			}
			http.Error(w, "invalid admin token", http.StatusUnauthorized)
			return
		}
		cookie, err := r.Cookie(adminCookie)
		if err != nil || cookie.Value == "" {
			http.Error(w, "missing admin token (add ?token=...) to the URL", http.StatusUnauthorized)
			return
		}
		if !tokensEqual(cookie.Value, h.adminToken) {
			http.Error(w, "invalid admin token", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (h *Handler) handleAdminRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/ai", http.StatusSeeOther)
}

func (h *Handler) handleAdminAI(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.conf.GetConfig(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if wantsJSON(r) {
		httputil.SendResponse(w, http.StatusOK, httputil.NewDataResponse(true, "ok", cfg))
		return
	}
	h.renderAdmin(w, r, cfg, nil)
}

func (h *Handler) handleAdminAISave(w http.ResponseWriter, r *http.Request) {
	isJSON := isJSONBody(r)

	var req aiSettingsRequest
	if isJSON {
		if !httputil.DecodeAndValidate(w, r, &req) {
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		parsed, errs := aiSettingsFromForm(r)
		if len(errs) == 0 {
			errs = httputil.ValidationErrors(httputil.Validate.Struct(parsed))
		}
		if len(errs) > 0 {
			cfg, _ := h.conf.GetConfig(r.Context())
			w.WriteHeader(http.StatusUnprocessableEntity)
			h.renderAdmin(w, r, cfg, errs)
			return
		}
		req = parsed
	}

	cfg, err := h.conf.GetConfig(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cfg.Model = req.Model
	cfg.Temperature = req.Temperature
	cfg.ThinkingBudget = req.ThinkingBudget
	cfg.MoveDelayMS = req.MoveDelayMS
	cfg.ShareBaseURL = req.ShareBaseURL

	if err := h.conf.UpdateConfig(r.Context(), cfg); err != nil {
		if isJSON {
			httputil.SendError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.log.Info("ai settings updated",
		zap.String("model", cfg.Model),
		zap.Float32("temperature", cfg.Temperature),
		zap.Int("move_delay_ms", cfg.MoveDelayMS),
	)

	if isJSON {
		updated, _ := h.conf.GetConfig(r.Context())
		httputil.SendResponse(w, http.StatusOK, httputil.NewDataResponse(true, "settings saved", updated))
		return
	}
	http.Redirect(w, r, "/admin/ai", http.StatusSeeOther)
}

func (h *Handler) handleAdminHistoryDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	if r.Form.Get("all") == "1" {
		n, err := h.store.DeleteAllGames(ctx)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.log.Info("archive cleared", zap.Int64("games", n))
		http.Redirect(w, r, "/admin/ai", http.StatusSeeOther)
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(r.Form.Get("id")), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	if err := h.store.DeleteGame(ctx, id); err != nil {
		if errors.Is(err, db.ErrGameNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/ai", http.StatusSeeOther)
}

func (h *Handler) renderAdmin(w http.ResponseWriter, r *http.Request, cfg configstore.Config, errs []string) {
	games, err := h.store.ListFinishedGames(r.Context(), 50)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = h.tpl.ExecuteTemplate(w, "admin.html", AdminView{
		Cfg:     cfg,
		Games:   games,
		Errors:  errs,
		IsAdmin: true,
		Page:    "ai",
	})
}

func aiSettingsFromForm(r *http.Request) (aiSettingsRequest, []string) {
	var errs []string
	req := aiSettingsRequest{
		Model:        strings.TrimSpace(r.Form.Get("model")),
		ShareBaseURL: strings.TrimSpace(r.Form.Get("share_base_url")),
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(r.Form.Get("temperature")), 32); err == nil {
		req.Temperature = float32(v)
	} else {
		errs = append(errs, "temperature must be a number")
	}
	if v, err := strconv.ParseInt(strings.TrimSpace(r.Form.Get("thinking_budget")), 10, 32); err == nil {
		req.ThinkingBudget = int32(v)
	} else {
		errs = append(errs, "thinking budget must be an integer")
	}
	if v, err := strconv.Atoi(strings.TrimSpace(r.Form.Get("move_delay_ms"))); err == nil {
		req.MoveDelayMS = v
	} else {
		errs = append(errs, "move delay must be an integer")
	}
	return req, errs
}

func (h *Handler) isAdminRequest(w http.ResponseWriter, r *http.Request) bool {
	if h.adminToken == "" {
		return false
	}
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		if tokensEqual(token, h.adminToken) {
			h.setAdminCookie(w)
			return true
		}
		return false
	}
	cookie, err := r.Cookie(adminCookie)
	if err != nil || cookie.Value == "" {
		return false
	}
	return tokensEqual(cookie.Value, h.adminToken)
}

func (h *Handler) setAdminCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookie,
		Value:    h.adminToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func tokensEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func isJSONBody(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
