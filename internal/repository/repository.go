package repository

import (
	"context"

	"alcyxob/exercise-resolver/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound = RepositoryError("not found")
	// ErrDuplicateNormalizedName means another record already owns the
	// normalized name. CreateOrGet resolves this internally by re-reading
	// the winner; it leaks to callers only via the lower-level Insert path.
	ErrDuplicateNormalizedName = RepositoryError("duplicate normalized name")
	// ErrSynonymConflict means a synonym string is already owned by a
	// different exercise record. Never resolved silently: the synonym
	// disjointness invariant requires manual adjudication.
	ErrSynonymConflict = RepositoryError("synonym already owned by another exercise")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// CatalogRepository is the durable catalog of canonical exercise records plus
// their synonym and phonetic indexes. It owns the uniqueness invariants:
// one record per normalized name, globally disjoint synonym sets.
type CatalogRepository interface {
	// CreateOrGet persists record with at-most-one-winner semantics under
	// concurrent creation for the same normalized name. When another caller
	// wins the race, the locally-built record is discarded and the winner's
	// record is returned with created == false. A synonym owned by a
	// different record fails the whole call with ErrSynonymConflict and
	// leaves the store unchanged.
	CreateOrGet(ctx context.Context, record *domain.ExerciseRecord) (winner *domain.ExerciseRecord, created bool, err error)

	GetByID(ctx context.Context, id string) (*domain.ExerciseRecord, error)
	GetByNormalizedName(ctx context.Context, normalized string) (*domain.ExerciseRecord, error)

	// GetBySynonym resolves a normalized variant string to its owning record.
	GetBySynonym(ctx context.Context, synonym string) (*domain.ExerciseRecord, error)

	// GetByPhoneticKey returns every record sharing the key (many-to-one).
	GetByPhoneticKey(ctx context.Context, key string) ([]domain.ExerciseRecord, error)

	// IncrementUsage bumps the usage counter. Monotonic: concurrent calls
	// each count exactly once.
	IncrementUsage(ctx context.Context, id string) error

	// All streams the full catalog, for the cache's one-shot bulk load.
	All(ctx context.Context) ([]domain.ExerciseRecord, error)
}
