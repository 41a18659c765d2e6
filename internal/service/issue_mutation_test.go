package service

import (
	"context"
	"errors"
	"testing"

	"civicreport-be/internal/auth"
	"civicreport-be/internal/models"
	"civicreport-be/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newMutationService(issues *mockIssueRepo, votes *mockVoteRepo, cleaner *mockCleaner) *IssueMutationService {
	guard := auth.NewGuard()
	return NewIssueMutationService(issues, votes, guard, workflow.New(guard), cleaner, testLogger())
}

func TestCreate_DefaultsAndRoundTrip(t *testing.T) {
	owner := primitive.NewObjectID()
	var inserted *models.Issue

	issues := &mockIssueRepo{
		insertFunc: func(_ context.Context, issue *models.Issue) error {
			issue.ID = primitive.NewObjectID()
			inserted = issue
			return nil
		},
	}

	svc := newMutationService(issues, &mockVoteRepo{}, &mockCleaner{})

	issue, err := svc.Create(context.Background(), owner, CreateIssueInput{
		Title:     "Broken Street Light",
		Latitude:  28.6139,
		Longitude: 77.2090,
	})

	require.NoError(t, err)
	require.NotNil(t, inserted)
	assert.Equal(t, "Broken Street Light", issue.Title)
	assert.Equal(t, 28.6139, issue.Latitude)
	assert.Equal(t, 77.2090, issue.Longitude)
	assert.Equal(t, models.StatusNew, issue.Status)
	assert.Equal(t, models.PriorityMedium, issue.Priority)
	assert.Equal(t, owner, issue.CreatedBy)
	assert.False(t, issue.CreatedAt.IsZero())
}

func TestCreate_ValidationFailures(t *testing.T) {
	svc := newMutationService(&mockIssueRepo{}, &mockVoteRepo{}, &mockCleaner{})
	owner := primitive.NewObjectID()

	tests := []struct {
		name string
		in   CreateIssueInput
	}{
		{"title too short", CreateIssueInput{Title: "Pot", Latitude: 1, Longitude: 1}},
		{"title too long", CreateIssueInput{Title: string(make([]byte, 101)), Latitude: 1, Longitude: 1}},
		{"latitude out of range", CreateIssueInput{Title: "Broken Street Light", Latitude: 91, Longitude: 1}},
		{"longitude out of range", CreateIssueInput{Title: "Broken Street Light", Latitude: 1, Longitude: -181}},
		{"bogus priority", func() CreateIssueInput {
			p := models.IssuePriority("EXTREME")
			return CreateIssueInput{Title: "Broken Street Light", Latitude: 1, Longitude: 1, Priority: &p}
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), owner, tt.in)
			assert.Error(t, err)
		})
	}
}

func TestCreate_DescriptionTooLong(t *testing.T) {
	svc := newMutationService(&mockIssueRepo{}, &mockVoteRepo{}, &mockCleaner{})

	long := make([]byte, 501)
	for i := range long {
		long[i] = 'x'
	}

	_, err := svc.Create(context.Background(), primitive.NewObjectID(), CreateIssueInput{
		Title:       "Broken Street Light",
		Description: string(long),
		Latitude:    1,
		Longitude:   1,
	})
	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "description", vErr.Field)
}

func existingIssue(owner primitive.ObjectID) *models.Issue {
	return &models.Issue{
		ID:        primitive.NewObjectID(),
		Title:     "Broken Street Light",
		Status:    models.StatusNew,
		Priority:  models.PriorityMedium,
		CreatedBy: owner,
		Latitude:  28.6139,
		Longitude: 77.2090,
		Images:    []string{"https://assets.example/a.jpg"},
	}
}

func TestUpdate_NonOwnerForbidden_AdminAllowed(t *testing.T) {
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	issue := existingIssue(owner)

	issues := &mockIssueRepo{
		findByIDFunc: func(_ context.Context, _ primitive.ObjectID) (*models.Issue, error) {
			return issue, nil
		},
		updateFunc: func(_ context.Context, _ primitive.ObjectID, set bson.M) (*models.Issue, error) {
			updated := *issue
			if title, ok := set["title"].(string); ok {
				updated.Title = title
			}
			return &updated, nil
		},
	}

	svc := newMutationService(issues, &mockVoteRepo{}, &mockCleaner{})
	newTitle := "Flickering Street Light"

	_, err := svc.Update(context.Background(), stranger, models.RoleUser, issue.ID,
		UpdateIssueInput{Title: &newTitle})
	assert.ErrorIs(t, err, models.ErrForbidden)

	updated, err := svc.Update(context.Background(), stranger, models.RoleAdmin, issue.ID,
		UpdateIssueInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
}

func TestUpdate_NotFoundBeforeAuthorization(t *testing.T) {
	svc := newMutationService(&mockIssueRepo{}, &mockVoteRepo{}, &mockCleaner{})

	_, err := svc.Update(context.Background(), primitive.NewObjectID(), models.RoleUser,
		primitive.NewObjectID(), UpdateIssueInput{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdate_NonAdminStatusIsIgnored(t *testing.T) {
	owner := primitive.NewObjectID()
	issue := existingIssue(owner)

	var capturedSet bson.M
	issues := &mockIssueRepo{
		findByIDFunc: func(_ context.Context, _ primitive.ObjectID) (*models.Issue, error) {
			return issue, nil
		},
		updateFunc: func(_ context.Context, _ primitive.ObjectID, set bson.M) (*models.Issue, error) {
			capturedSet = set
			return issue, nil
		},
	}

	svc := newMutationService(issues, &mockVoteRepo{}, &mockCleaner{})
	status := "RESOLVED"

	_, err := svc.Update(context.Background(), owner, models.RoleUser, issue.ID,
		UpdateIssueInput{Status: &status})
	require.NoError(t, err)
	assert.NotContains(t, capturedSet, "status")
}

func TestUpdate_AdminStatusValidated(t *testing.T) {
	owner := primitive.NewObjectID()
	issue := existingIssue(owner)

	issues := &mockIssueRepo{
		findByIDFunc: func(_ context.Context, _ primitive.ObjectID) (*models.Issue, error) {
			return issue, nil
		},
		updateFunc: func(_ context.Context, _ primitive.ObjectID, set bson.M) (*models.Issue, error) {
			assert.Equal(t, models.StatusResolved, set["status"])
			return issue, nil
		},
	}

	svc := newMutationService(issues, &mockVoteRepo{}, &mockCleaner{})

	bogus := "BOGUS"
	_, err := svc.Update(context.Background(), owner, models.RoleAdmin, issue.ID,
		UpdateIssueInput{Status: &bogus})
	assert.ErrorIs(t, err, models.ErrInvalidEnumValue)

	valid := "RESOLVED"
	_, err = svc.Update(context.Background(), owner, models.RoleAdmin, issue.ID,
		UpdateIssueInput{Status: &valid})
	assert.NoError(t, err)
}

func TestUpdate_CoordinatesRevalidated(t *testing.T) {
	owner := primitive.NewObjectID()
	issue := existingIssue(owner)

	issues := &mockIssueRepo{
		findByIDFunc: func(_ context.Context, _ primitive.ObjectID) (*models.Issue, error) {
			return issue, nil
		},
	}

	svc := newMutationService(issues, &mockVoteRepo{}, &mockCleaner{})
	badLat := 95.0

	_, err := svc.Update(context.Background(), owner, models.RoleUser, issue.ID,
		UpdateIssueInput{Latitude: &badLat})
	assert.Error(t, err)
}

func TestDelete_ReturnsImagesAndSurvivesCleanupFailure(t *testing.T) {
	owner := primitive.NewObjectID()
	issue := existingIssue(owner)

	deleted := false
	issues := &mockIssueRepo{
		findByIDFunc: func(_ context.Context, _ primitive.ObjectID) (*models.Issue, error) {
			return issue, nil
		},
		deleteFunc: func(_ context.Context, _ primitive.ObjectID) error {
			deleted = true
			return nil
		},
	}
	cleaner := &mockCleaner{
		cleanupFunc: func(_ context.Context, _ []string) error {
			return errors.New("asset service unavailable")
		},
	}

	svc := newMutationService(issues, &mockVoteRepo{}, cleaner)

	ref, err := svc.Delete(context.Background(), owner, models.RoleUser, issue.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, issue.ID, ref.ID)
	assert.Equal(t, issue.Images, ref.Images)
	require.Len(t, cleaner.calls, 1)
}

func TestDelete_NonOwnerForbidden(t *testing.T) {
	owner := primitive.NewObjectID()
	issue := existingIssue(owner)

	issues := &mockIssueRepo{
		findByIDFunc: func(_ context.Context, _ primitive.ObjectID) (*models.Issue, error) {
			return issue, nil
		},
		deleteFunc: func(_ context.Context, _ primitive.ObjectID) error {
			t.Fatal("delete must not run for a forbidden caller")
			return nil
		},
	}

	svc := newMutationService(issues, &mockVoteRepo{}, &mockCleaner{})

	_, err := svc.Delete(context.Background(), primitive.NewObjectID(), models.RoleUser, issue.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestChangeStatus_NonAdminForbidden(t *testing.T) {
	owner := primitive.NewObjectID()
	issue := existingIssue(owner)

	issues := &mockIssueRepo{
		findByIDFunc: func(_ context.Context, _ primitive.ObjectID) (*models.Issue, error) {
			return issue, nil
		},
	}

	svc := newMutationService(issues, &mockVoteRepo{}, &mockCleaner{})

	// even the owner cannot drive the lifecycle without the admin role
	_, err := svc.ChangeStatus(context.Background(), models.RoleUser, issue.ID, "RESOLVED")
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestChangeStatus_AdminFromAnyCurrent(t *testing.T) {
	owner := primitive.NewObjectID()

	for _, current := range []models.IssueStatus{
		models.StatusNew, models.StatusInProgress, models.StatusResolved, models.StatusRejected,
	} {
		issue := existingIssue(owner)
		issue.Status = current

		issues := &mockIssueRepo{
			findByIDFunc: func(_ context.Context, _ primitive.ObjectID) (*models.Issue, error) {
				return issue, nil
			},
			updateFunc: func(_ context.Context, _ primitive.ObjectID, set bson.M) (*models.Issue, error) {
				assert.Equal(t, models.StatusResolved, set["status"])
				assert.Contains(t, set, "updatedAt")
				updated := *issue
				updated.Status = models.StatusResolved
				return &updated, nil
			},
		}

		svc := newMutationService(issues, &mockVoteRepo{}, &mockCleaner{})

		updated, err := svc.ChangeStatus(context.Background(), models.RoleAdmin, issue.ID, "RESOLVED")
		require.NoError(t, err, "from %s", current)
		assert.Equal(t, models.StatusResolved, updated.Status)
	}
}

func TestChangeStatus_BogusValue(t *testing.T) {
	owner := primitive.NewObjectID()
	issue := existingIssue(owner)

	issues := &mockIssueRepo{
		findByIDFunc: func(_ context.Context, _ primitive.ObjectID) (*models.Issue, error) {
			return issue, nil
		},
	}

	svc := newMutationService(issues, &mockVoteRepo{}, &mockCleaner{})

	_, err := svc.ChangeStatus(context.Background(), models.RoleAdmin, issue.ID, "BOGUS")
	assert.ErrorIs(t, err, models.ErrInvalidEnumValue)
}

func TestToggleVote(t *testing.T) {
	owner := primitive.NewObjectID()
	voter := primitive.NewObjectID()
	issue := existingIssue(owner)

	issues := &mockIssueRepo{
		findByIDFunc: func(_ context.Context, _ primitive.ObjectID) (*models.Issue, error) {
			return issue, nil
		},
	}

	t.Run("first vote casts", func(t *testing.T) {
		votes := &mockVoteRepo{
			countFunc: func(_ context.Context, _ primitive.ObjectID) (int64, error) { return 1, nil },
		}
		svc := newMutationService(issues, votes, &mockCleaner{})

		result, err := svc.ToggleVote(context.Background(), voter, issue.ID)
		require.NoError(t, err)
		assert.True(t, result.Voted)
		assert.Equal(t, int64(1), result.Votes)
	})

	t.Run("second vote withdraws", func(t *testing.T) {
		removed := false
		votes := &mockVoteRepo{
			insertFunc: func(_ context.Context, _, _ primitive.ObjectID) error {
				return models.ErrConflict
			},
			removeFunc: func(_ context.Context, _, _ primitive.ObjectID) error {
				removed = true
				return nil
			},
		}
		svc := newMutationService(issues, votes, &mockCleaner{})

		result, err := svc.ToggleVote(context.Background(), voter, issue.ID)
		require.NoError(t, err)
		assert.True(t, removed)
		assert.False(t, result.Voted)
	})
}
