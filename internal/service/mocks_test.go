package service

import (
	"context"
	"time"

	"civicreport-be/internal/models"
	"civicreport-be/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ── mock implementations ──────────────────────────────────────────────────────

type mockIssueRepo struct {
	insertFunc       func(ctx context.Context, issue *models.Issue) error
	findByIDFunc     func(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	findFunc         func(ctx context.Context, predicate bson.M, skip, limit int64, sort bson.D) ([]models.Issue, error)
	countFunc        func(ctx context.Context, predicate bson.M) (int64, error)
	updateFunc       func(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Issue, error)
	deleteFunc       func(ctx context.Context, id primitive.ObjectID) error
	byCategoryFunc   func(ctx context.Context) ([]repository.CategoryCount, error)
	createdBetwnFunc func(ctx context.Context, from, to time.Time) (int64, error)
}

func (m *mockIssueRepo) Insert(ctx context.Context, issue *models.Issue) error {
	if m.insertFunc == nil {
		issue.ID = primitive.NewObjectID()
		return nil
	}
	return m.insertFunc(ctx, issue)
}

func (m *mockIssueRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	if m.findByIDFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.findByIDFunc(ctx, id)
}

func (m *mockIssueRepo) Find(ctx context.Context, predicate bson.M, skip, limit int64, sort bson.D) ([]models.Issue, error) {
	if m.findFunc == nil {
		return []models.Issue{}, nil
	}
	return m.findFunc(ctx, predicate, skip, limit, sort)
}

func (m *mockIssueRepo) Count(ctx context.Context, predicate bson.M) (int64, error) {
	if m.countFunc == nil {
		return 0, nil
	}
	return m.countFunc(ctx, predicate)
}

func (m *mockIssueRepo) UpdateFields(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Issue, error) {
	if m.updateFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.updateFunc(ctx, id, set)
}

func (m *mockIssueRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if m.deleteFunc == nil {
		return nil
	}
	return m.deleteFunc(ctx, id)
}

func (m *mockIssueRepo) CountByCategory(ctx context.Context) ([]repository.CategoryCount, error) {
	if m.byCategoryFunc == nil {
		return []repository.CategoryCount{}, nil
	}
	return m.byCategoryFunc(ctx)
}

func (m *mockIssueRepo) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	if m.createdBetwnFunc == nil {
		return 0, nil
	}
	return m.createdBetwnFunc(ctx, from, to)
}

type mockVoteRepo struct {
	insertFunc   func(ctx context.Context, issueID, userID primitive.ObjectID) error
	removeFunc   func(ctx context.Context, issueID, userID primitive.ObjectID) error
	hasVotedFunc func(ctx context.Context, issueID, userID primitive.ObjectID) (bool, error)
	countFunc    func(ctx context.Context, issueID primitive.ObjectID) (int64, error)
	removeAllFn  func(ctx context.Context, issueID primitive.ObjectID) error
}

func (m *mockVoteRepo) Insert(ctx context.Context, issueID, userID primitive.ObjectID) error {
	if m.insertFunc == nil {
		return nil
	}
	return m.insertFunc(ctx, issueID, userID)
}

func (m *mockVoteRepo) Remove(ctx context.Context, issueID, userID primitive.ObjectID) error {
	if m.removeFunc == nil {
		return nil
	}
	return m.removeFunc(ctx, issueID, userID)
}

func (m *mockVoteRepo) HasVoted(ctx context.Context, issueID, userID primitive.ObjectID) (bool, error) {
	if m.hasVotedFunc == nil {
		return false, nil
	}
	return m.hasVotedFunc(ctx, issueID, userID)
}

func (m *mockVoteRepo) CountForIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error) {
	if m.countFunc == nil {
		return 0, nil
	}
	return m.countFunc(ctx, issueID)
}

func (m *mockVoteRepo) RemoveForIssue(ctx context.Context, issueID primitive.ObjectID) error {
	if m.removeAllFn == nil {
		return nil
	}
	return m.removeAllFn(ctx, issueID)
}

func (m *mockVoteRepo) EnsureIndexes(ctx context.Context) error { return nil }

type mockUserRepo struct {
	insertFunc      func(ctx context.Context, user *models.User) error
	findByIDFunc    func(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	findByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	updateRoleFunc  func(ctx context.Context, id primitive.ObjectID, role models.Role) error
}

func (m *mockUserRepo) Insert(ctx context.Context, user *models.User) error {
	if m.insertFunc == nil {
		user.ID = primitive.NewObjectID()
		return nil
	}
	return m.insertFunc(ctx, user)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if m.findByIDFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.findByIDFunc(ctx, id)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.findByEmailFunc(ctx, email)
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id primitive.ObjectID, role models.Role) error {
	if m.updateRoleFunc == nil {
		return nil
	}
	return m.updateRoleFunc(ctx, id, role)
}

func (m *mockUserRepo) EnsureIndexes(ctx context.Context) error { return nil }

type mockCleaner struct {
	cleanupFunc func(ctx context.Context, refs []string) error
	calls       [][]string
}

func (m *mockCleaner) Cleanup(ctx context.Context, refs []string) error {
	m.calls = append(m.calls, refs)
	if m.cleanupFunc == nil {
		return nil
	}
	return m.cleanupFunc(ctx, refs)
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
