// Package memory provides an in-memory CatalogRepository with the same
// uniqueness and disjointness semantics as the MongoDB implementation. It
// backs tests and local development; it is not durable.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"alcyxob/exercise-resolver/internal/domain"
	"alcyxob/exercise-resolver/internal/repository"
)

type memoryCatalogRepository struct {
	mu         sync.Mutex
	byID       map[string]*domain.ExerciseRecord
	byName     map[string]string   // normalized name -> id
	bySynonym  map[string]string   // synonym -> id
	byPhonetic map[string][]string // phonetic key -> ids
}

// NewMemoryCatalogRepository creates an empty in-memory catalog.
func NewMemoryCatalogRepository() repository.CatalogRepository {
	return &memoryCatalogRepository{
		byID:       make(map[string]*domain.ExerciseRecord),
		byName:     make(map[string]string),
		bySynonym:  make(map[string]string),
		byPhonetic: make(map[string][]string),
	}
}

func (r *memoryCatalogRepository) CreateOrGet(ctx context.Context, record *domain.ExerciseRecord) (*domain.ExerciseRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byName[record.NormalizedName]; ok {
		// Same race resolution as the unique index: the loser's record is
		// discarded and the winner returned as-if existing.
		return copyRecord(r.byID[id]), false, nil
	}

	// All-or-nothing synonym check before any write, so a conflict leaves
	// the store unchanged.
	for _, syn := range record.Synonyms {
		if owner, ok := r.bySynonym[syn]; ok && owner != record.ID {
			return nil, false, repository.ErrSynonymConflict
		}
	}

	stored := copyRecord(record)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.byID[stored.ID] = stored
	r.byName[stored.NormalizedName] = stored.ID
	for _, syn := range stored.Synonyms {
		r.bySynonym[syn] = stored.ID
	}
	if stored.PhoneticKey != "" {
		r.byPhonetic[stored.PhoneticKey] = append(r.byPhonetic[stored.PhoneticKey], stored.ID)
	}
	return copyRecord(stored), true, nil
}

func (r *memoryCatalogRepository) GetByID(ctx context.Context, id string) (*domain.ExerciseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyRecord(record), nil
}

func (r *memoryCatalogRepository) GetByNormalizedName(ctx context.Context, normalized string) (*domain.ExerciseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byName[normalized]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyRecord(r.byID[id]), nil
}

func (r *memoryCatalogRepository) GetBySynonym(ctx context.Context, synonym string) (*domain.ExerciseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.bySynonym[synonym]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyRecord(r.byID[id]), nil
}

func (r *memoryCatalogRepository) GetByPhoneticKey(ctx context.Context, key string) ([]domain.ExerciseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.byPhonetic[key]
	records := make([]domain.ExerciseRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, *copyRecord(r.byID[id]))
	}
	return records, nil
}

func (r *memoryCatalogRepository) IncrementUsage(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	record.UsageCount++
	return nil
}

func (r *memoryCatalogRepository) All(ctx context.Context) ([]domain.ExerciseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records := make([]domain.ExerciseRecord, 0, len(r.byID))
	for _, record := range r.byID {
		records = append(records, *copyRecord(record))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

// copyRecord deep-copies so callers never share slices with the store.
func copyRecord(r *domain.ExerciseRecord) *domain.ExerciseRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Synonyms = append([]string(nil), r.Synonyms...)
	out.MuscleGroups = append([]string(nil), r.MuscleGroups...)
	out.Embedding = append([]float32(nil), r.Embedding...)
	return &out
}
