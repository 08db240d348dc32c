package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/application"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/ports"
)

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerTokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing credentials")
			return
		}
		claims, err := h.service.ValidateToken(r.Context(), raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithClaims(r.Context(), claims)))
	})
}

func contextWithClaims(ctx context.Context, claims ports.AuthClaims) context.Context {
	return context.WithValue(ctx, ctxKeyClaims, claims)
}

func isAdmin(claims ports.AuthClaims) bool {
	return strings.ToUpper(claims.Role) == "ADMIN"
}

func (h *Handler) createRecord(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing credentials")
		return
	}
	var req application.SaveRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body")
		return
	}
	resp, err := h.service.CreateRecord(r.Context(), chi.URLParam(r, "type"), req, claims.Subject, r.Header.Get("Idempotency-Key"))
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusCreated, resp)
}

func (h *Handler) saveRecord(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing credentials")
		return
	}
	recordID, err := uuid.Parse(chi.URLParam(r, "record_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid record_id")
		return
	}
	var req application.SaveRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body")
		return
	}
	resp, err := h.service.SaveRecord(r.Context(), chi.URLParam(r, "type"), recordID, req, claims.Subject, r.Header.Get("Idempotency-Key"))
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	recordID, err := uuid.Parse(chi.URLParam(r, "record_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid record_id")
		return
	}
	resp, err := h.service.GetRecord(r.Context(), chi.URLParam(r, "type"), recordID)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	includeHidden := false
	if raw := r.URL.Query().Get("include_hidden"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid include_hidden")
			return
		}
		if parsed {
			// Hidden records are admin-only, so the flag demands credentials
			// even though the listing itself is public.
			token, tokenErr := bearerTokenFromHeader(r.Header.Get("Authorization"))
			if tokenErr != nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing credentials")
				return
			}
			claims, claimsErr := h.service.ValidateToken(r.Context(), token)
			if claimsErr != nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing credentials")
				return
			}
			if !isAdmin(claims) {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "admin role required")
				return
			}
			includeHidden = true
		}
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	resp, err := h.service.ListRecords(r.Context(), chi.URLParam(r, "type"), includeHidden, limit, offset)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"records": resp,
		"pagination": map[string]any{
			"limit":  limit,
			"offset": offset,
		},
	})
}

func (h *Handler) getModerationState(w http.ResponseWriter, r *http.Request) {
	recordID, err := uuid.Parse(chi.URLParam(r, "record_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid record_id")
		return
	}
	resp, err := h.service.GetModerationState(r.Context(), chi.URLParam(r, "type"), recordID)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) adminListQueue(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok || !isAdmin(claims) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "admin role required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	resp, err := h.service.ListPendingQueue(r.Context(), limit, offset)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"queue": resp,
		"pagination": map[string]any{
			"limit":  limit,
			"offset": offset,
		},
	})
}

func (h *Handler) adminListDecisions(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok || !isAdmin(claims) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "admin role required")
		return
	}
	recordID, err := uuid.Parse(chi.URLParam(r, "record_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid record_id")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	resp, err := h.service.ListDecisions(r.Context(), chi.URLParam(r, "type"), recordID, limit)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"decisions": resp})
}

func (h *Handler) adminApprove(w http.ResponseWriter, r *http.Request) {
	h.adminDecision(w, r, func(ctx context.Context, typeName string, recordID uuid.UUID, by, reason string) (application.RecordResponse, error) {
		return h.service.Approve(ctx, typeName, recordID, by, reason)
	})
}

func (h *Handler) adminReject(w http.ResponseWriter, r *http.Request) {
	h.adminDecision(w, r, func(ctx context.Context, typeName string, recordID uuid.UUID, by, reason string) (application.RecordResponse, error) {
		return h.service.Reject(ctx, typeName, recordID, by, reason)
	})
}

func (h *Handler) adminDecision(w http.ResponseWriter, r *http.Request, decide func(context.Context, string, uuid.UUID, string, string) (application.RecordResponse, error)) {
	claims, ok := claimsFromContext(r.Context())
	if !ok || !isAdmin(claims) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "admin role required")
		return
	}
	recordID, err := uuid.Parse(chi.URLParam(r, "record_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid record_id")
		return
	}
	var req application.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body")
		return
	}
	resp, err := decide(r.Context(), chi.URLParam(r, "type"), recordID, claims.Subject, req.Reason)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) adminAutomoderate(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok || !isAdmin(claims) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "admin role required")
		return
	}
	recordID, err := uuid.Parse(chi.URLParam(r, "record_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid record_id")
		return
	}
	resp, err := h.service.Automoderate(r.Context(), chi.URLParam(r, "type"), recordID, claims.Subject)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

// adminConsoleDecision accepts the moderation console's form submission and
// answers with a redirect back to the queue, matching the console's
// post/redirect/get flow.
func (h *Handler) adminConsoleDecision(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok || !isAdmin(claims) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "admin role required")
		return
	}
	recordID, err := uuid.Parse(chi.URLParam(r, "record_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid record_id")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid form payload")
		return
	}
	action := r.PostFormValue("action")
	reason := r.PostFormValue("reason")
	typeName := chi.URLParam(r, "type")

	switch action {
	case "approve":
		_, err = h.service.Approve(r.Context(), typeName, recordID, claims.Subject, reason)
	case "reject":
		_, err = h.service.Reject(r.Context(), typeName, recordID, claims.Subject, reason)
	default:
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "action must be approve or reject")
		return
	}
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	http.Redirect(w, r, "/v1/admin/moderation/queue", http.StatusFound)
}
