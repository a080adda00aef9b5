// internal/repository/aggregate_repo.go
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tipkesho-settlement/internal/domain"
	"tipkesho-settlement/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type AggregateRepository interface {
	// SettleTip marks the tip settled and increments the creator's running
	// totals in one transaction.
	SettleTip(ctx context.Context, txRef, creatorID string, creatorAmount decimal.Decimal, providerResponse json.RawMessage) error
	GetAggregate(ctx context.Context, creatorID string) (*domain.CreatorAggregate, error)
}

type aggregateRepo struct {
	db Querier
}

func NewAggregateRepository(db Querier) AggregateRepository {
	return &aggregateRepo{db: db}
}

// SettleTip pairs the settled transition with the aggregate increment inside
// a single transaction so the totals can never drift from the ledger. The
// status guard makes the increment at-most-once per tip: a tip already in a
// terminal state updates zero rows and the whole transaction rolls back. The
// increment itself is an in-database read-modify-write, so concurrent tips to
// the same creator cannot lose updates.
func (r *aggregateRepo) SettleTip(ctx context.Context, txRef, creatorID string, creatorAmount decimal.Decimal, providerResponse json.RawMessage) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin settle: %w", err)
	}
	defer tx.Rollback(ctx)

	settleQuery := `
		UPDATE tip_records
		SET status = 'settled', provider_response = $2,
		    settled_at = NOW(), updated_at = NOW()
		WHERE tx_ref = $1 AND status IN ('initiated', 'awaiting_provider')
	`

	tag, err := tx.Exec(ctx, settleQuery, txRef, providerResponse)
	if err != nil {
		return fmt.Errorf("mark settled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrAlreadySettled
	}

	incrementQuery := `
		INSERT INTO creator_aggregates (creator_id, total_tips, total_amount_received, updated_at)
		VALUES ($1, 1, $2, NOW())
		ON CONFLICT (creator_id) DO UPDATE
		SET total_tips = creator_aggregates.total_tips + 1,
		    total_amount_received = creator_aggregates.total_amount_received + EXCLUDED.total_amount_received,
		    updated_at = NOW()
	`

	if _, err := tx.Exec(ctx, incrementQuery, creatorID, creatorAmount); err != nil {
		return fmt.Errorf("increment aggregate: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *aggregateRepo) GetAggregate(ctx context.Context, creatorID string) (*domain.CreatorAggregate, error) {
	query := `
		SELECT creator_id, total_tips, total_amount_received, updated_at
		FROM creator_aggregates
		WHERE creator_id = $1
	`

	var agg domain.CreatorAggregate
	err := r.db.QueryRow(ctx, query, creatorID).Scan(
		&agg.CreatorID,
		&agg.TotalTips,
		&agg.TotalAmountReceived,
		&agg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrCreatorNotFound
		}
		return nil, err
	}
	return &agg, nil
}
