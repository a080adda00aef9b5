// internal/usecase/session_uc.go
package usecase

import (
	"context"
	"time"

	"tipkesho-settlement/config"
	"tipkesho-settlement/internal/domain"
	"tipkesho-settlement/internal/repository"
	"tipkesho-settlement/pkg/xerrors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type SessionUsecase struct {
	sessionRepo repository.SessionRepository
	config      *config.Config
	logger      *zap.Logger
}

func NewSessionUsecase(sessionRepo repository.SessionRepository, cfg *config.Config, logger *zap.Logger) *SessionUsecase {
	return &SessionUsecase{
		sessionRepo: sessionRepo,
		config:      cfg,
		logger:      logger,
	}
}

// Start materializes a session for an identity the external identity provider
// has already asserted. The session ID doubles as the opaque bearer token.
func (uc *SessionUsecase) Start(ctx context.Context, req *domain.StartSessionRequest) (*domain.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeInvalidArgument, err.Error(), err)
	}

	now := time.Now().UTC()
	sess := &domain.Session{
		ID:        ulid.Make().String(),
		UserID:    req.UserID,
		Username:  req.Username,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.config.Session.TTL),
	}

	if err := uc.sessionRepo.Save(ctx, sess, uc.config.Session.TTL); err != nil {
		uc.logger.Error("failed to save session",
			zap.String("user_id", req.UserID),
			zap.Error(err))
		return nil, xerrors.Wrap(xerrors.CodeInternal, "failed to start session", err)
	}

	uc.logger.Info("session started",
		zap.String("session_id", sess.ID),
		zap.String("user_id", sess.UserID))

	return sess, nil
}

// Resolve looks up the session behind a bearer token.
func (uc *SessionUsecase) Resolve(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, xerrors.New(xerrors.CodeUnauthenticated, "authentication required")
	}

	sess, err := uc.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeUnauthenticated, "session not found or expired", err)
	}
	if sess.Expired(time.Now().UTC()) {
		_ = uc.sessionRepo.Delete(ctx, sessionID)
		return nil, xerrors.New(xerrors.CodeUnauthenticated, "session not found or expired")
	}
	return sess, nil
}

// End invalidates a session on logout.
func (uc *SessionUsecase) End(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return xerrors.New(xerrors.CodeUnauthenticated, "authentication required")
	}

	if err := uc.sessionRepo.Delete(ctx, sessionID); err != nil {
		uc.logger.Error("failed to delete session",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return xerrors.Wrap(xerrors.CodeInternal, "failed to end session", err)
	}

	uc.logger.Info("session ended", zap.String("session_id", sessionID))
	return nil
}
