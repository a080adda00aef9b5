// internal/usecase/tip_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"tipkesho-settlement/config"
	"tipkesho-settlement/internal/domain"
	"tipkesho-settlement/internal/provider"
	"tipkesho-settlement/internal/repository"
	"tipkesho-settlement/pkg/secrets"
	"tipkesho-settlement/pkg/xerrors"

	"go.uber.org/zap"
)

type TipUsecase struct {
	tipRepo       repository.TipRepository
	aggregateRepo repository.AggregateRepository
	directory     repository.CreatorDirectory
	gateway       provider.PaymentProvider
	secrets       secrets.Store
	config        *config.Config
	logger        *zap.Logger
}

func NewTipUsecase(
	tipRepo repository.TipRepository,
	aggregateRepo repository.AggregateRepository,
	directory repository.CreatorDirectory,
	gateway provider.PaymentProvider,
	secretStore secrets.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *TipUsecase {
	return &TipUsecase{
		tipRepo:       tipRepo,
		aggregateRepo: aggregateRepo,
		directory:     directory,
		gateway:       gateway,
		secrets:       secretStore,
		config:        cfg,
		logger:        logger,
	}
}

// TipReceipt is what the caller gets back: the ledger record plus the
// provider's raw payload ("complete payment on your phone").
type TipReceipt struct {
	Success         bool              `json:"success"`
	Tip             *domain.TipRecord `json:"tip"`
	ProviderReceipt json.RawMessage   `json:"provider_receipt,omitempty"`
}

// SendTip runs the full settlement workflow: validate, write the initiated
// ledger record, push the charge to the provider, persist the outcome, then
// report it. Every failure after record creation is written into the record
// before being surfaced.
func (uc *TipUsecase) SendTip(ctx context.Context, sess *domain.Session, req *domain.SendTipRequest) (*TipReceipt, error) {
	if sess == nil {
		return nil, xerrors.New(xerrors.CodeUnauthenticated, "authentication required")
	}

	if err := req.Validate(); err != nil {
		uc.logger.Info("tip request rejected",
			zap.String("user_id", sess.UserID),
			zap.Error(err))
		return nil, xerrors.Wrap(xerrors.CodeInvalidArgument, err.Error(), err)
	}

	// Misconfiguration is checked before any ledger write or network call:
	// with no credential the whole service is inoperable, and that has to be
	// loud, not a trail of orphaned records.
	if _, err := uc.secrets.GetProviderCredential(ctx); err != nil {
		uc.logger.Error("payment provider not configured", zap.Error(err))
		return nil, xerrors.Wrap(xerrors.CodeFailedPrecondition, "payment provider not configured", err)
	}

	tip, err := uc.createTipRecord(ctx, sess, req)
	if err != nil {
		return nil, err
	}

	if err := uc.tipRepo.MarkAwaitingProvider(ctx, tip.TxRef); err != nil {
		uc.logger.Error("failed to mark tip awaiting provider",
			zap.String("tx_ref", tip.TxRef),
			zap.Error(err))
		return nil, xerrors.Wrap(xerrors.CodeInternal, "failed to record tip", err)
	}
	tip.Status = domain.TipStatusAwaitingProvider

	chargeReq := &provider.ChargeRequest{
		TxRef:         tip.TxRef,
		Amount:        tip.Amount,
		Currency:      tip.Currency,
		CustomerEmail: fallback(req.TipperEmail, sess.Email, uc.config.Flutterwave.DefaultCustomerEmail),
		CustomerPhone: req.TipperPhone,
		CustomerName:  fallback(req.TipperName, sess.Username, uc.config.Flutterwave.DefaultCustomerName),
		Meta: provider.ChargeMeta{
			TipID:       tip.ID,
			FromUserID:  tip.FromUserID,
			ToCreatorID: tip.ToCreatorID,
		},
	}

	uc.logger.Info("initiating provider charge",
		zap.String("tx_ref", tip.TxRef),
		zap.String("provider", uc.gateway.GetName()),
		zap.String("amount", tip.Amount.StringFixed(2)),
		zap.String("currency", tip.Currency),
		zap.String("to_creator_id", tip.ToCreatorID))

	// Once the charge is sent we want a definite outcome even if the caller
	// hangs up, so the provider call and every ledger write after it run on a
	// context detached from the caller's cancellation, bounded only by the
	// provider client's own timeout. Settling on the caller's context would
	// strand a successful charge in awaiting_provider on disconnect.
	dctx := context.WithoutCancel(ctx)

	result, err := uc.gateway.InitiateCharge(dctx, chargeReq)
	if err != nil {
		return nil, uc.recordChargeError(dctx, tip, err)
	}

	if !result.Success {
		return uc.recordChargeDecline(dctx, tip, result)
	}

	if err := uc.aggregateRepo.SettleTip(dctx, tip.TxRef, tip.ToCreatorID, tip.CreatorAmount, result.Raw); err != nil {
		if errors.Is(err, xerrors.ErrAlreadySettled) {
			// Another writer landed a terminal outcome first. Zero affected
			// rows covers any terminal state, so report what is actually
			// stored rather than assuming settled.
			uc.logger.Warn("tip already in a terminal state, skipping settle",
				zap.String("tx_ref", tip.TxRef))
			return uc.reportStoredOutcome(dctx, tip.TxRef)
		}
		uc.logger.Error("failed to settle tip",
			zap.String("tx_ref", tip.TxRef),
			zap.Error(err))
		return nil, xerrors.Wrap(xerrors.CodeInternal, "failed to record settlement", err)
	}
	tip.Status = domain.TipStatusSettled
	tip.ProviderResponse = result.Raw

	uc.logger.Info("tip settled",
		zap.String("tx_ref", tip.TxRef),
		zap.String("creator_amount", tip.CreatorAmount.StringFixed(2)))

	return &TipReceipt{
		Success:         true,
		Tip:             tip,
		ProviderReceipt: result.Raw,
	}, nil
}

// SendDirectTip is the in-app supporter path: the funds are already held on
// the platform, so there is no provider call. It shares the validator, the
// fee math, and the transactional settle+increment with the provider path so
// the two can never drift apart.
func (uc *TipUsecase) SendDirectTip(ctx context.Context, sess *domain.Session, req *domain.SendTipRequest) (*TipReceipt, error) {
	if sess == nil {
		return nil, xerrors.New(xerrors.CodeUnauthenticated, "authentication required")
	}

	if err := req.Validate(); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeInvalidArgument, err.Error(), err)
	}

	tip, err := uc.createTipRecord(ctx, sess, req)
	if err != nil {
		return nil, err
	}

	if err := uc.aggregateRepo.SettleTip(ctx, tip.TxRef, tip.ToCreatorID, tip.CreatorAmount, nil); err != nil {
		uc.logger.Error("failed to settle direct tip",
			zap.String("tx_ref", tip.TxRef),
			zap.Error(err))
		return nil, xerrors.Wrap(xerrors.CodeInternal, "failed to record settlement", err)
	}
	tip.Status = domain.TipStatusSettled

	uc.logger.Info("direct tip settled",
		zap.String("tx_ref", tip.TxRef),
		zap.String("creator_amount", tip.CreatorAmount.StringFixed(2)))

	return &TipReceipt{Success: true, Tip: tip}, nil
}

// GetTip returns a tip receipt to one of its parties.
func (uc *TipUsecase) GetTip(ctx context.Context, sess *domain.Session, txRef string) (*domain.TipRecord, error) {
	if sess == nil {
		return nil, xerrors.New(xerrors.CodeUnauthenticated, "authentication required")
	}

	tip, err := uc.tipRepo.GetByTxRef(ctx, txRef)
	if err != nil {
		if errors.Is(err, xerrors.ErrTipNotFound) {
			return nil, xerrors.Wrap(xerrors.CodeInvalidArgument, "tip not found", err)
		}
		return nil, xerrors.Wrap(xerrors.CodeInternal, "failed to load tip", err)
	}

	if tip.FromUserID != sess.UserID && tip.ToCreatorID != sess.UserID {
		// Same shape as an unknown ref so tx_refs cannot be probed for
		// existence.
		return nil, xerrors.Wrap(xerrors.CodeInvalidArgument, "tip not found", xerrors.ErrTipNotFound)
	}
	return tip, nil
}

// reportStoredOutcome re-reads a tip whose settle lost a terminal-state race
// and reports the state that actually won.
func (uc *TipUsecase) reportStoredOutcome(ctx context.Context, txRef string) (*TipReceipt, error) {
	stored, err := uc.tipRepo.GetByTxRef(ctx, txRef)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeInternal, "failed to load tip", err)
	}
	if stored.Status != domain.TipStatusSettled {
		return nil, xerrors.New(xerrors.CodeInternal, "tip already recorded as "+string(stored.Status))
	}
	return &TipReceipt{
		Success:         true,
		Tip:             stored,
		ProviderReceipt: stored.ProviderResponse,
	}, nil
}

func (uc *TipUsecase) createTipRecord(ctx context.Context, sess *domain.Session, req *domain.SendTipRequest) (*domain.TipRecord, error) {
	platformFee, creatorAmount := domain.SplitAmount(req.Amount, uc.config.Tip.FeeRate)

	handle, err := uc.directory.GetCreatorHandle(ctx, req.ToCreatorID)
	if err != nil {
		// Display nicety, not a settlement-blocking condition.
		handle = domain.FallbackHandle(req.ToCreatorID)
		uc.logger.Warn("creator handle not resolved, using fallback",
			zap.String("to_creator_id", req.ToCreatorID),
			zap.String("fallback_handle", handle),
			zap.Error(err))
	}

	tip := &domain.TipRecord{
		ID:              domain.NewTipID(),
		TxRef:           domain.NewTxRef(),
		FromUserID:      sess.UserID,
		ToCreatorID:     req.ToCreatorID,
		Amount:          req.Amount,
		PlatformFee:     platformFee,
		CreatorAmount:   creatorAmount,
		Currency:        uc.config.Tip.Currency,
		Message:         req.Message,
		FromUsername:    sess.Username,
		ToCreatorHandle: handle,
		Status:          domain.TipStatusInitiated,
	}

	// Money must never be requested from the provider without a durable
	// ledger entry existing first.
	if err := uc.tipRepo.Create(ctx, tip); err != nil {
		uc.logger.Error("failed to create tip record",
			zap.String("tx_ref", tip.TxRef),
			zap.String("from_user_id", tip.FromUserID),
			zap.String("to_creator_id", tip.ToCreatorID),
			zap.Error(err))
		return nil, xerrors.Wrap(xerrors.CodeInternal, "failed to record tip", err)
	}

	uc.logger.Info("tip record created",
		zap.String("tip_id", tip.ID),
		zap.String("tx_ref", tip.TxRef),
		zap.String("amount", tip.Amount.StringFixed(2)),
		zap.String("platform_fee", tip.PlatformFee.StringFixed(2)))

	return tip, nil
}

// recordChargeError handles an indeterminate provider outcome: persist the
// raw error payload first, then surface an internal failure.
func (uc *TipUsecase) recordChargeError(ctx context.Context, tip *domain.TipRecord, err error) error {
	raw := rawErrorPayload(err)

	if repoErr := uc.tipRepo.RecordProviderError(ctx, tip.TxRef, raw); repoErr != nil {
		uc.logger.Error("failed to record provider error",
			zap.String("tx_ref", tip.TxRef),
			zap.Error(repoErr))
	}
	tip.Status = domain.TipStatusErrorInitiation
	tip.ProviderError = raw

	uc.logger.Error("provider charge errored",
		zap.String("tx_ref", tip.TxRef),
		zap.Error(err))

	var callErr *provider.CallError
	if errors.As(err, &callErr) && callErr.Message != "" {
		return xerrors.Wrap(xerrors.CodeInternal, callErr.Message, err)
	}
	return xerrors.Wrap(xerrors.CodeInternal, "payment initiation failed", err)
}

// recordChargeDecline handles a definite provider decline.
func (uc *TipUsecase) recordChargeDecline(ctx context.Context, tip *domain.TipRecord, result *provider.ChargeResult) (*TipReceipt, error) {
	if repoErr := uc.tipRepo.RecordProviderFailure(ctx, tip.TxRef, result.Raw); repoErr != nil {
		uc.logger.Error("failed to record provider failure",
			zap.String("tx_ref", tip.TxRef),
			zap.Error(repoErr))
	}
	tip.Status = domain.TipStatusFailedInitiation
	tip.ProviderResponse = result.Raw

	uc.logger.Warn("provider declined charge",
		zap.String("tx_ref", tip.TxRef),
		zap.String("provider_message", result.Message))

	msg := result.Message
	if msg == "" {
		msg = "payment provider declined the charge"
	}
	return nil, xerrors.New(xerrors.CodeAborted, msg)
}

func rawErrorPayload(err error) json.RawMessage {
	var callErr *provider.CallError
	if errors.As(err, &callErr) && len(callErr.Raw) > 0 {
		return callErr.Raw
	}
	payload, _ := json.Marshal(map[string]string{"error": err.Error()})
	return payload
}

func fallback(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
