package repository

import (
	"context"
	"time"

	"civicreport-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VoteRepository is the persistence surface for votes.
type VoteRepository interface {
	Insert(ctx context.Context, issueID, userID primitive.ObjectID) error
	Remove(ctx context.Context, issueID, userID primitive.ObjectID) error
	HasVoted(ctx context.Context, issueID, userID primitive.ObjectID) (bool, error)
	CountForIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error)
	RemoveForIssue(ctx context.Context, issueID primitive.ObjectID) error
	EnsureIndexes(ctx context.Context) error
}

type mongoVoteRepository struct {
	coll *mongo.Collection
}

// NewVoteRepository returns a mongo-backed VoteRepository.
func NewVoteRepository(coll *mongo.Collection) VoteRepository {
	return &mongoVoteRepository{coll: coll}
}

// EnsureIndexes creates the unique (issue, user) compound index.
func (r *mongoVoteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "issue", Value: 1}, {Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Insert records a vote. A duplicate vote surfaces as ErrConflict via the
// unique index rather than a racy count-then-insert.
func (r *mongoVoteRepository) Insert(ctx context.Context, issueID, userID primitive.ObjectID) error {
	vote := models.Vote{
		ID:        primitive.NewObjectID(),
		Issue:     issueID,
		User:      userID,
		CreatedAt: time.Now(),
	}

	_, err := r.coll.InsertOne(ctx, vote)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrConflict
		}
		return err
	}
	return nil
}

func (r *mongoVoteRepository) Remove(ctx context.Context, issueID, userID primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"issue": issueID, "user": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *mongoVoteRepository) HasVoted(ctx context.Context, issueID, userID primitive.ObjectID) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"issue": issueID, "user": userID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mongoVoteRepository) CountForIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"issue": issueID})
}

func (r *mongoVoteRepository) RemoveForIssue(ctx context.Context, issueID primitive.ObjectID) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"issue": issueID})
	return err
}
