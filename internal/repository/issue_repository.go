// Package repository wraps MongoDB access behind small interfaces so the
// services stay testable without a running database.
package repository

import (
	"context"
	"errors"
	"time"

	"civicreport-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CategoryCount is one row of the category breakdown aggregation.
type CategoryCount struct {
	Name  string `bson:"name" json:"name"`
	Count int64  `bson:"value" json:"value"`
}

// IssueRepository is the persistence surface the issue services depend on.
type IssueRepository interface {
	Insert(ctx context.Context, issue *models.Issue) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	Find(ctx context.Context, predicate bson.M, skip, limit int64, sort bson.D) ([]models.Issue, error)
	Count(ctx context.Context, predicate bson.M) (int64, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Issue, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByCategory(ctx context.Context) ([]CategoryCount, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type mongoIssueRepository struct {
	coll *mongo.Collection
}

// NewIssueRepository returns a mongo-backed IssueRepository.
func NewIssueRepository(coll *mongo.Collection) IssueRepository {
	return &mongoIssueRepository{coll: coll}
}

func (r *mongoIssueRepository) Insert(ctx context.Context, issue *models.Issue) error {
	result, err := r.coll.InsertOne(ctx, issue)
	if err != nil {
		return err
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		issue.ID = id
	}
	return nil
}

func (r *mongoIssueRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &issue, nil
}

func (r *mongoIssueRepository) Find(ctx context.Context, predicate bson.M, skip, limit int64, sort bson.D) ([]models.Issue, error) {
	findOptions := options.Find().
		SetSort(sort).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, predicate, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *mongoIssueRepository) Count(ctx context.Context, predicate bson.M) (int64, error) {
	return r.coll.CountDocuments(ctx, predicate)
}

// UpdateFields applies a single $set and returns the updated document, so
// the update is atomic at the document level.
func (r *mongoIssueRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Issue, error) {
	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var issue models.Issue
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&issue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &issue, nil
}

func (r *mongoIssueRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *mongoIssueRepository) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":   "$category",
			"count": bson.M{"$sum": 1},
		}},
		{"$project": bson.M{
			"name":  "$_id",
			"value": "$count",
			"_id":   0,
		}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := []CategoryCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *mongoIssueRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{
		"createdAt": bson.M{"$gte": from, "$lt": to},
	})
}
