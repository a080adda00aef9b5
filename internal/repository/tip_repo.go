// internal/repository/tip_repo.go
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tipkesho-settlement/internal/domain"
	"tipkesho-settlement/pkg/xerrors"

	"github.com/jackc/pgx/v5"
)

type TipRepository interface {
	Create(ctx context.Context, tip *domain.TipRecord) error
	GetByTxRef(ctx context.Context, txRef string) (*domain.TipRecord, error)
	MarkAwaitingProvider(ctx context.Context, txRef string) error
	RecordProviderFailure(ctx context.Context, txRef string, raw json.RawMessage) error
	RecordProviderError(ctx context.Context, txRef string, raw json.RawMessage) error
}

type tipRepo struct {
	db Querier
}

func NewTipRepository(db Querier) TipRepository {
	return &tipRepo{db: db}
}

const tipColumns = `
	id, tx_ref, from_user_id, to_creator_id,
	amount, platform_fee, creator_amount, currency,
	message, from_username, to_creator_handle, status,
	provider_response, provider_error,
	created_at, updated_at, settled_at
`

func (r *tipRepo) Create(ctx context.Context, tip *domain.TipRecord) error {
	query := `
		INSERT INTO tip_records (
			id, tx_ref, from_user_id, to_creator_id,
			amount, platform_fee, creator_amount, currency,
			message, from_username, to_creator_handle, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		tip.ID,
		tip.TxRef,
		tip.FromUserID,
		tip.ToCreatorID,
		tip.Amount,
		tip.PlatformFee,
		tip.CreatorAmount,
		tip.Currency,
		tip.Message,
		tip.FromUsername,
		tip.ToCreatorHandle,
		tip.Status,
	).Scan(&tip.CreatedAt, &tip.UpdatedAt)

	if err != nil {
		if xerrors.IsUniqueViolation(err) {
			return xerrors.ErrDuplicateTxRef
		}
		return err
	}
	return nil
}

func (r *tipRepo) GetByTxRef(ctx context.Context, txRef string) (*domain.TipRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM tip_records WHERE tx_ref = $1`, tipColumns)

	var tip domain.TipRecord
	err := r.db.QueryRow(ctx, query, txRef).Scan(
		&tip.ID,
		&tip.TxRef,
		&tip.FromUserID,
		&tip.ToCreatorID,
		&tip.Amount,
		&tip.PlatformFee,
		&tip.CreatorAmount,
		&tip.Currency,
		&tip.Message,
		&tip.FromUsername,
		&tip.ToCreatorHandle,
		&tip.Status,
		&tip.ProviderResponse,
		&tip.ProviderError,
		&tip.CreatedAt,
		&tip.UpdatedAt,
		&tip.SettledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrTipNotFound
		}
		return nil, err
	}
	return &tip, nil
}

func (r *tipRepo) MarkAwaitingProvider(ctx context.Context, txRef string) error {
	query := `
		UPDATE tip_records
		SET status = 'awaiting_provider', updated_at = NOW()
		WHERE tx_ref = $1 AND status = 'initiated'
	`

	tag, err := r.db.Exec(ctx, query, txRef)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrAlreadySettled
	}
	return nil
}

// RecordProviderFailure moves a tip to failed_initiation: the provider
// responded and definitively declined. The raw provider response is stored
// verbatim for support.
func (r *tipRepo) RecordProviderFailure(ctx context.Context, txRef string, raw json.RawMessage) error {
	query := `
		UPDATE tip_records
		SET status = 'failed_initiation', provider_response = $2, updated_at = NOW()
		WHERE tx_ref = $1 AND status IN ('initiated', 'awaiting_provider')
	`

	tag, err := r.db.Exec(ctx, query, txRef, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrAlreadySettled
	}
	return nil
}

// RecordProviderError moves a tip to error_initiation: the provider call
// could not be completed, so the outcome is indeterminate. Kept distinct from
// failed_initiation so operators can tell "provider said no" apart from "we
// don't know what happened".
func (r *tipRepo) RecordProviderError(ctx context.Context, txRef string, raw json.RawMessage) error {
	query := `
		UPDATE tip_records
		SET status = 'error_initiation', provider_error = $2, updated_at = NOW()
		WHERE tx_ref = $1 AND status IN ('initiated', 'awaiting_provider')
	`

	tag, err := r.db.Exec(ctx, query, txRef, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrAlreadySettled
	}
	return nil
}
