package mongo

import (
	"context"
	"errors"
	"time"

	"alcyxob/exercise-resolver/internal/domain"
	"alcyxob/exercise-resolver/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	exerciseCollectionName = "exercises"
	synonymCollectionName  = "synonyms"
)

// synonymDoc maps a normalized variant string to its owning record. The
// synonym string itself is the _id, so the collection's primary-key
// uniqueness enforces global synonym disjointness.
type synonymDoc struct {
	Synonym    string `bson:"_id"`
	ExerciseID string `bson:"exerciseId"`
}

// mongoCatalogRepository implements repository.CatalogRepository
type mongoCatalogRepository struct {
	exercises *mongo.Collection
	synonyms  *mongo.Collection
}

// NewMongoCatalogRepository creates a catalog repository backed by MongoDB.
func NewMongoCatalogRepository(db *mongo.Database) repository.CatalogRepository {
	return &mongoCatalogRepository{
		exercises: db.Collection(exerciseCollectionName),
		synonyms:  db.Collection(synonymCollectionName),
	}
}

// CreateOrGet inserts record, relying on the unique index on normalizedName
// for at-most-one-winner semantics: insert, catch the duplicate-key error,
// re-read the winner. Synonym ownership is checked before the insert and the
// record is rolled back if a concurrent writer claims one of our synonyms
// first, so a SynonymConflict leaves the store unchanged.
func (r *mongoCatalogRepository) CreateOrGet(ctx context.Context, record *domain.ExerciseRecord) (*domain.ExerciseRecord, bool, error) {
	if record.ID == "" || record.NormalizedName == "" {
		return nil, false, errors.New("record ID and normalized name are required")
	}

	if existing, err := r.GetByNormalizedName(ctx, record.NormalizedName); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	if err := r.checkSynonymOwnership(ctx, record); err != nil {
		return nil, false, err
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	if _, err := r.exercises.InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Lost the race: discard our record and hand back the winner's.
			winner, rerr := r.GetByNormalizedName(ctx, record.NormalizedName)
			if rerr != nil {
				return nil, false, rerr
			}
			return winner, false, nil
		}
		return nil, false, err
	}

	for i, syn := range record.Synonyms {
		_, err := r.synonyms.InsertOne(ctx, synonymDoc{Synonym: syn, ExerciseID: record.ID})
		if err == nil {
			continue
		}
		if !mongo.IsDuplicateKeyError(err) {
			r.rollbackCreate(ctx, record, i)
			return nil, false, err
		}
		owner, oerr := r.synonymOwner(ctx, syn)
		if oerr == nil && owner == record.ID {
			continue // re-run of a retried insert, already ours
		}
		r.rollbackCreate(ctx, record, i)
		return nil, false, repository.ErrSynonymConflict
	}

	return record, true, nil
}

// checkSynonymOwnership fails fast with ErrSynonymConflict when any of the
// record's synonyms is already owned by a different exercise.
func (r *mongoCatalogRepository) checkSynonymOwnership(ctx context.Context, record *domain.ExerciseRecord) error {
	if len(record.Synonyms) == 0 {
		return nil
	}
	cursor, err := r.synonyms.Find(ctx, bson.M{"_id": bson.M{"$in": record.Synonyms}})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var docs []synonymDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return err
	}
	for _, doc := range docs {
		if doc.ExerciseID != record.ID {
			return repository.ErrSynonymConflict
		}
	}
	return nil
}

// rollbackCreate undoes a partially-applied create: the record document and
// the first n synonym documents that were inserted before the failure.
func (r *mongoCatalogRepository) rollbackCreate(ctx context.Context, record *domain.ExerciseRecord, n int) {
	if n > 0 {
		_, _ = r.synonyms.DeleteMany(ctx, bson.M{
			"_id":        bson.M{"$in": record.Synonyms[:n]},
			"exerciseId": record.ID,
		})
	}
	_, _ = r.exercises.DeleteOne(ctx, bson.M{"_id": record.ID})
}

func (r *mongoCatalogRepository) synonymOwner(ctx context.Context, synonym string) (string, error) {
	var doc synonymDoc
	if err := r.synonyms.FindOne(ctx, bson.M{"_id": synonym}).Decode(&doc); err != nil {
		return "", err
	}
	return doc.ExerciseID, nil
}

func (r *mongoCatalogRepository) GetByID(ctx context.Context, id string) (*domain.ExerciseRecord, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoCatalogRepository) GetByNormalizedName(ctx context.Context, normalized string) (*domain.ExerciseRecord, error) {
	return r.findOne(ctx, bson.M{"normalizedName": normalized})
}

func (r *mongoCatalogRepository) GetBySynonym(ctx context.Context, synonym string) (*domain.ExerciseRecord, error) {
	var doc synonymDoc
	err := r.synonyms.FindOne(ctx, bson.M{"_id": synonym}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, doc.ExerciseID)
}

func (r *mongoCatalogRepository) GetByPhoneticKey(ctx context.Context, key string) ([]domain.ExerciseRecord, error) {
	if key == "" {
		return nil, nil
	}
	cursor, err := r.exercises.Find(ctx, bson.M{"phoneticKey": key})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []domain.ExerciseRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// IncrementUsage bumps usageCount atomically via $inc; there is no code path
// that decrements it.
func (r *mongoCatalogRepository) IncrementUsage(ctx context.Context, id string) error {
	result, err := r.exercises.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"usageCount": 1}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoCatalogRepository) All(ctx context.Context) ([]domain.ExerciseRecord, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.exercises.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []domain.ExerciseRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *mongoCatalogRepository) findOne(ctx context.Context, filter bson.M) (*domain.ExerciseRecord, error) {
	var record domain.ExerciseRecord
	err := r.exercises.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// EnsureCatalogIndexes creates the indexes the catalog invariants depend on.
// The unique index on normalizedName is load-bearing: CreateOrGet's race
// resolution assumes the storage layer rejects the second writer.
func EnsureCatalogIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(exerciseCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "normalizedName", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_normalized_name"),
		},
		{
			Keys:    bson.D{{Key: "phoneticKey", Value: 1}},
			Options: options.Index().SetName("phonetic_key"),
		},
	})
	return err
}
