package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"tipkesho-settlement/internal/domain"
	"tipkesho-settlement/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTip() *domain.TipRecord {
	msg := "keep it up"
	return &domain.TipRecord{
		ID:              domain.NewTipID(),
		TxRef:           domain.NewTxRef(),
		FromUserID:      "user-1",
		ToCreatorID:     "creator-1",
		Amount:          decimal.RequireFromString("1000"),
		PlatformFee:     decimal.RequireFromString("50.00"),
		CreatorAmount:   decimal.RequireFromString("950.00"),
		Currency:        "KES",
		Message:         &msg,
		FromUsername:    "wanjiku",
		ToCreatorHandle: "creatorke",
		Status:          domain.TipStatusInitiated,
	}
}

func TestTipRepository_Create(t *testing.T) {
	now := time.Now()

	t.Run("successful creation", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		tip := newTip()
		rows := pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now)
		mock.ExpectQuery(`INSERT INTO tip_records`).
			WithArgs(tip.ID, tip.TxRef, tip.FromUserID, tip.ToCreatorID,
				tip.Amount, tip.PlatformFee, tip.CreatorAmount, tip.Currency,
				tip.Message, tip.FromUsername, tip.ToCreatorHandle, tip.Status).
			WillReturnRows(rows)

		repo := NewTipRepository(mock)
		require.NoError(t, repo.Create(context.Background(), tip))
		assert.Equal(t, now, tip.CreatedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate tx_ref", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		tip := newTip()
		mock.ExpectQuery(`INSERT INTO tip_records`).
			WithArgs(tip.ID, tip.TxRef, tip.FromUserID, tip.ToCreatorID,
				tip.Amount, tip.PlatformFee, tip.CreatorAmount, tip.Currency,
				tip.Message, tip.FromUsername, tip.ToCreatorHandle, tip.Status).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		repo := NewTipRepository(mock)
		err = repo.Create(context.Background(), tip)
		assert.ErrorIs(t, err, xerrors.ErrDuplicateTxRef)
	})
}

func TestTipRepository_MarkAwaitingProvider(t *testing.T) {
	t.Run("transitions an initiated tip", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE tip_records`).
			WithArgs("tipkesho-tip-x").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewTipRepository(mock)
		require.NoError(t, repo.MarkAwaitingProvider(context.Background(), "tipkesho-tip-x"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("terminal tip does not regress", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE tip_records`).
			WithArgs("tipkesho-tip-x").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewTipRepository(mock)
		err = repo.MarkAwaitingProvider(context.Background(), "tipkesho-tip-x")
		assert.ErrorIs(t, err, xerrors.ErrAlreadySettled)
	})
}

func TestTipRepository_RecordProviderOutcome(t *testing.T) {
	raw := json.RawMessage(`{"status":"error","message":"declined"}`)

	t.Run("records a decline", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE tip_records`).
			WithArgs("tipkesho-tip-x", raw).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewTipRepository(mock)
		require.NoError(t, repo.RecordProviderFailure(context.Background(), "tipkesho-tip-x", raw))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("records an indeterminate error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE tip_records`).
			WithArgs("tipkesho-tip-x", raw).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewTipRepository(mock)
		require.NoError(t, repo.RecordProviderError(context.Background(), "tipkesho-tip-x", raw))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("terminal tip rejects outcome writes", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE tip_records`).
			WithArgs("tipkesho-tip-x", raw).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewTipRepository(mock)
		err = repo.RecordProviderFailure(context.Background(), "tipkesho-tip-x", raw)
		assert.ErrorIs(t, err, xerrors.ErrAlreadySettled)
	})
}

func TestTipRepository_GetByTxRef_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT (.+) FROM tip_records`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	repo := NewTipRepository(mock)
	_, err = repo.GetByTxRef(context.Background(), "missing")
	assert.ErrorIs(t, err, xerrors.ErrTipNotFound)
}
