package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const learningSnapshotCollection = "learning_snapshots"

type LearningSnapshotRepo interface {
	SaveSnapshot(ctx context.Context, snap *LearningSnapshot) error
	ListSnapshots(ctx context.Context, userID uint64, limit int64) ([]*LearningSnapshot, error)
}

type learningSnapshotRepoImpl struct {
	col *mongo.Collection
}

func NewLearningSnapshotRepo(db *mongo.Database) LearningSnapshotRepo {
	return &learningSnapshotRepoImpl{
		col: db.Collection(learningSnapshotCollection),
	}
}

func (s *learningSnapshotRepoImpl) SaveSnapshot(ctx context.Context, snap *LearningSnapshot) error {
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}
	_, err := s.col.InsertOne(ctx, snap)
	return err
}

// ListSnapshots 按时间倒序
func (s *learningSnapshotRepoImpl) ListSnapshots(ctx context.Context, userID uint64, limit int64) ([]*LearningSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{
			{Key: "created_at", Value: -1},
			{Key: "_id", Value: -1},
		}).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]*LearningSnapshot, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}
