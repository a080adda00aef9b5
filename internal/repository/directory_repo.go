// internal/repository/directory_repo.go
package repository

import (
	"context"
	"errors"

	"tipkesho-settlement/internal/domain"
	"tipkesho-settlement/pkg/xerrors"

	"github.com/jackc/pgx/v5"
)

// CreatorDirectory is the read-only view of the user directory this service
// consumes. The settlement core never writes directory entries; the only
// creator-side writes go through AggregateRepository.
type CreatorDirectory interface {
	GetCreatorHandle(ctx context.Context, creatorID string) (string, error)
}

type creatorDirectory struct {
	db Querier
}

func NewCreatorDirectory(db Querier) CreatorDirectory {
	return &creatorDirectory{db: db}
}

func (r *creatorDirectory) GetCreatorHandle(ctx context.Context, creatorID string) (string, error) {
	query := `SELECT handle FROM creator_profiles WHERE creator_id = $1`

	var profile domain.CreatorProfile
	err := r.db.QueryRow(ctx, query, creatorID).Scan(&profile.Handle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", xerrors.ErrCreatorNotFound
		}
		return "", err
	}
	return profile.Handle, nil
}
