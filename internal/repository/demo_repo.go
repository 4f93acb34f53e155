package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"demosim/internal/model"
)

// DemoRepo handles MongoDB operations for finished demo runs
type DemoRepo interface {
	Save(ctx context.Context, demo *model.Demo) error
	GetByID(ctx context.Context, id string) (*model.Demo, error)
	ListByProject(ctx context.Context, projectID string, limit int64) ([]model.Demo, error)
}

type demoRepo struct {
	demos *mongo.Collection
}

// NewDemoRepo creates a new demo repository
func NewDemoRepo(db *mongo.Database) DemoRepo {
	return &demoRepo{
		demos: db.Collection("demos"),
	}
}

func (r *demoRepo) Save(ctx context.Context, demo *model.Demo) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.demos.ReplaceOne(ctx, bson.M{"_id": demo.ID}, demo, opts)
	return err
}

func (r *demoRepo) GetByID(ctx context.Context, id string) (*model.Demo, error) {
	var demo model.Demo
	err := r.demos.FindOne(ctx, bson.M{"_id": id}).Decode(&demo)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &demo, nil
}

func (r *demoRepo) ListByProject(ctx context.Context, projectID string, limit int64) ([]model.Demo, error) {
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetLimit(limit)
	cursor, err := r.demos.Find(ctx, bson.M{"projectId": projectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var demos []model.Demo
	if err := cursor.All(ctx, &demos); err != nil {
		return nil, err
	}
	return demos, nil
}
