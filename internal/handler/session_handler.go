// internal/handler/session_handler.go
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"tipkesho-settlement/internal/domain"
	"tipkesho-settlement/internal/usecase"
	"tipkesho-settlement/pkg/response"
	"tipkesho-settlement/pkg/xerrors"

	"go.uber.org/zap"
)

type sessionCtxKey struct{}

// SessionFromContext returns the authenticated session, or nil when the
// request carried none.
func SessionFromContext(ctx context.Context) *domain.Session {
	sess, _ := ctx.Value(sessionCtxKey{}).(*domain.Session)
	return sess
}

type SessionHandler struct {
	sessionUC *usecase.SessionUsecase
	logger    *zap.Logger
}

func NewSessionHandler(sessionUC *usecase.SessionUsecase, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessionUC: sessionUC,
		logger:    logger,
	}
}

// HandleStartSession handles POST /api/v1/sessions. The identity itself is
// asserted upstream by the identity provider; this endpoint only materializes
// the session object.
func (h *SessionHandler) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Info("failed to decode session request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, string(xerrors.CodeInvalidArgument), "invalid request body")
		return
	}

	sess, err := h.sessionUC.Start(ctx, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, sess)
}

// HandleEndSession handles DELETE /api/v1/sessions (logout).
func (h *SessionHandler) HandleEndSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess := SessionFromContext(ctx)
	if sess == nil {
		response.Error(w, http.StatusUnauthorized, string(xerrors.CodeUnauthenticated), "authentication required")
		return
	}

	if err := h.sessionUC.End(ctx, sess.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"ended": true})
}

// AuthMiddleware resolves the bearer token into an explicit session object
// and attaches it to the request context. Requests without a valid session
// proceed with a nil session; each usecase decides whether that is fatal.
func AuthMiddleware(sessionUC *usecase.SessionUsecase, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := sessionUC.Resolve(r.Context(), token)
			if err != nil {
				logger.Info("bearer token did not resolve to a session",
					zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionCtxKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
