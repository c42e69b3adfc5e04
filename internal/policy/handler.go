package policy

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/paylynx/policy-engine/internal/api"
	"github.com/paylynx/policy-engine/internal/audit"
	"github.com/paylynx/policy-engine/internal/auth"
	"github.com/paylynx/policy-engine/internal/clock"
)

// Handler provides HTTP handlers for the payment check and policy settings
// endpoints.
type Handler struct {
	svc       *Service
	auditRepo *audit.Repository
	clk       clock.Clock
	validate  *validator.Validate
}

// NewHandler creates a new policy Handler.
func NewHandler(svc *Service, auditRepo *audit.Repository, clk clock.Clock) *Handler {
	return &Handler{
		svc:       svc,
		auditRepo: auditRepo,
		clk:       clk,
		validate:  validator.New(),
	}
}

// CheckPayment evaluates a proposed payment and records an allowed one in
// the same call. Both outcomes return 200; the body carries the verdict.
func (h *Handler) CheckPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req CheckPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid request body"))
		return
	}

	decision, err := h.svc.CheckAndRecord(r.Context(), userID, req.Amount, h.clk.Now())
	if err != nil {
		slog.Error("payment check failed", "user_id", userID, "error", err)
		api.HandleError(w, api.ErrPolicyUnavailable)
		return
	}

	api.JSON(w, http.StatusOK, decision)
}

// GetSettings returns the user's policy configuration, creating defaults on
// first use.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	cfg, err := h.svc.GetPolicy(r.Context(), userID)
	if err != nil {
		slog.Error("loading policy settings failed", "user_id", userID, "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, cfg)
}

// UpdateSettings replaces the user's policy configuration.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid request body"))
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	cfg, err := h.svc.SetPolicy(r.Context(), userID, &req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			api.HandleError(w, api.NewValidationError(verr.Error()))
			return
		}
		slog.Error("updating policy settings failed", "user_id", userID, "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, cfg)
}

// GetLimits returns the user's current spend status: today's total, what
// remains, and the ceiling in force right now.
func (h *Handler) GetLimits(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	status, err := h.svc.GetStatus(r.Context(), userID, h.clk.Now())
	if err != nil {
		slog.Error("loading spend status failed", "user_id", userID, "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, status)
}

// ListAudit returns paginated audit logs for the authenticated user.
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	params := parseAuditParams(r)

	logs, total, err := h.auditRepo.ListByUser(r.Context(), userID, params)
	if err != nil {
		slog.Error("listing audit logs failed", "user_id", userID, "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONPaginated(w, http.StatusOK, logs, total, params.Page, params.PageSize)
}

// PolicyInfo serves static facts about the protection scheme. It is public:
// wallets show it before the user authenticates.
func (h *Handler) PolicyInfo(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]any{
		"standard":         "TIP-403",
		"name":             "TIP-403 Protection",
		"registry_address": "0x403c000000000000000000000000000000000000",
		"defaults": map[string]any{
			"max_single_payment": "1000",
			"max_daily_limit":    "5000",
			"night_max_payment":  "100",
			"night_hour_start":   22,
			"night_hour_end":     6,
		},
	})
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}

func parseAuditParams(r *http.Request) audit.ListParams {
	params := audit.DefaultListParams()

	if et := r.URL.Query().Get("event_type"); et != "" {
		params.EventType = et
	}
	if sev := r.URL.Query().Get("severity"); sev != "" {
		params.Severity = sev
	}
	if p := r.URL.Query().Get("page"); p != "" {
		if page, err := strconv.Atoi(p); err == nil && page > 0 {
			params.Page = page
		}
	}
	if ps := r.URL.Query().Get("page_size"); ps != "" {
		if pageSize, err := strconv.Atoi(ps); err == nil && pageSize > 0 && pageSize <= 100 {
			params.PageSize = pageSize
		}
	}
	if from := r.URL.Query().Get("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			params.From = &t
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			params.To = &t
		}
	}

	return params
}
