package service

import (
	"context"
	"strings"
	"time"

	"civicreport-be/internal/auth"
	"civicreport-be/internal/geo"
	"civicreport-be/internal/models"
	"civicreport-be/internal/repository"
	"civicreport-be/internal/storage"
	"civicreport-be/internal/workflow"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CreateIssueInput carries the fields a caller supplies when reporting.
type CreateIssueInput struct {
	Title       string
	Description string
	Category    string
	Location    string
	Latitude    float64
	Longitude   float64
	Images      []string
	Priority    *models.IssuePriority
}

// UpdateIssueInput is a partial update; nil fields are left untouched.
type UpdateIssueInput struct {
	Title       *string
	Description *string
	Category    *string
	Location    *string
	Latitude    *float64
	Longitude   *float64
	Images      *[]string
	Priority    *string
	Status      *string
}

// DeletedIssue points the caller at the removed record and the image
// references handed to the cleanup collaborator.
type DeletedIssue struct {
	ID     primitive.ObjectID `json:"id"`
	Images []string           `json:"images,omitempty"`
}

// VoteResult reports the outcome of a vote toggle.
type VoteResult struct {
	Voted bool  `json:"voted"`
	Votes int64 `json:"votes"`
}

// IssueMutationService serves the write side. Validation and authorization
// run before any storage write, so a failed request never partially
// applies.
type IssueMutationService struct {
	issues   repository.IssueRepository
	votes    repository.VoteRepository
	guard    *auth.Guard
	workflow *workflow.Workflow
	cleaner  storage.ImageCleaner
	log      *zap.Logger
}

// NewIssueMutationService wires the mutation service.
func NewIssueMutationService(
	issues repository.IssueRepository,
	votes repository.VoteRepository,
	guard *auth.Guard,
	wf *workflow.Workflow,
	cleaner storage.ImageCleaner,
	log *zap.Logger,
) *IssueMutationService {
	return &IssueMutationService{
		issues:   issues,
		votes:    votes,
		guard:    guard,
		workflow: wf,
		cleaner:  cleaner,
		log:      log,
	}
}

// Create validates the report and persists it with NEW status. Priority
// defaults to MEDIUM when not supplied.
func (s *IssueMutationService) Create(ctx context.Context, ownerID primitive.ObjectID, in CreateIssueInput) (*models.Issue, error) {
	title := strings.TrimSpace(in.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	if err := geo.ValidateCoordinates(in.Latitude, in.Longitude); err != nil {
		return nil, err
	}

	priority := models.PriorityMedium
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, models.InvalidEnum("priority", string(*in.Priority))
		}
		priority = *in.Priority
	}

	now := time.Now()
	issue := &models.Issue{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Location:    strings.TrimSpace(in.Location),
		Images:      in.Images,
		Priority:    priority,
		Status:      models.StatusNew,
		CreatedBy:   ownerID,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.issues.Insert(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// Update loads the issue, checks ownership, then applies the subset of
// fields the caller's role may change in a single $set. Status supplied by
// a non-privileged caller is ignored; the dedicated status endpoint is the
// authoritative path for lifecycle changes.
func (s *IssueMutationService) Update(ctx context.Context, actorID primitive.ObjectID, role models.Role, issueID primitive.ObjectID, in UpdateIssueInput) (*models.Issue, error) {
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		return nil, err
	}

	if !s.guard.CanMutate(actorID.Hex(), role, issue.CreatedBy.Hex()) {
		return nil, models.ErrForbidden
	}

	set := bson.M{"updatedAt": time.Now()}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		set["title"] = title
	}
	if in.Description != nil {
		if err := validateDescription(*in.Description); err != nil {
			return nil, err
		}
		set["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		set["category"] = strings.TrimSpace(*in.Category)
	}
	if in.Location != nil {
		set["location"] = strings.TrimSpace(*in.Location)
	}
	if in.Images != nil {
		set["images"] = *in.Images
	}
	if in.Latitude != nil || in.Longitude != nil {
		lat, lng := issue.Latitude, issue.Longitude
		if in.Latitude != nil {
			lat = *in.Latitude
		}
		if in.Longitude != nil {
			lng = *in.Longitude
		}
		if err := geo.ValidateCoordinates(lat, lng); err != nil {
			return nil, err
		}
		set["latitude"] = lat
		set["longitude"] = lng
	}
	if in.Priority != nil {
		priority := models.IssuePriority(strings.ToUpper(*in.Priority))
		if !priority.Valid() {
			return nil, models.InvalidEnum("priority", *in.Priority)
		}
		set["priority"] = priority
	}
	if in.Status != nil && s.guard.CanChangeStatus(role) {
		status := models.IssueStatus(strings.ToUpper(*in.Status))
		if !status.Valid() {
			return nil, models.InvalidEnum("status", *in.Status)
		}
		set["status"] = status
	}

	return s.issues.UpdateFields(ctx, issueID, set)
}

// Delete removes the issue after an ownership check. The local delete is
// authoritative; a remote image-cleanup failure is logged and swallowed,
// and the issue's votes go with it.
func (s *IssueMutationService) Delete(ctx context.Context, actorID primitive.ObjectID, role models.Role, issueID primitive.ObjectID) (*DeletedIssue, error) {
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		return nil, err
	}

	if !s.guard.CanMutate(actorID.Hex(), role, issue.CreatedBy.Hex()) {
		return nil, models.ErrForbidden
	}

	if err := s.issues.Delete(ctx, issueID); err != nil {
		return nil, err
	}

	if err := s.votes.RemoveForIssue(ctx, issueID); err != nil {
		s.log.Warn("removing votes for deleted issue failed",
			zap.String("issue", issueID.Hex()), zap.Error(err))
	}

	if len(issue.Images) > 0 {
		if err := s.cleaner.Cleanup(ctx, issue.Images); err != nil {
			s.log.Warn("image cleanup failed after delete",
				zap.String("issue", issueID.Hex()),
				zap.Int("images", len(issue.Images)),
				zap.Error(err))
		}
	}

	return &DeletedIssue{ID: issueID, Images: issue.Images}, nil
}

// ChangeStatus drives the lifecycle through the status workflow and
// persists the result with a fresh update timestamp.
func (s *IssueMutationService) ChangeStatus(ctx context.Context, role models.Role, issueID primitive.ObjectID, requested string) (*models.Issue, error) {
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		return nil, err
	}

	next, err := s.workflow.Transition(issue.Status, models.IssueStatus(strings.ToUpper(strings.TrimSpace(requested))), role)
	if err != nil {
		return nil, err
	}

	return s.issues.UpdateFields(ctx, issueID, bson.M{
		"status":    next,
		"updatedAt": time.Now(),
	})
}

// ToggleVote casts the user's vote, or withdraws it if already cast.
func (s *IssueMutationService) ToggleVote(ctx context.Context, userID, issueID primitive.ObjectID) (*VoteResult, error) {
	if _, err := s.issues.FindByID(ctx, issueID); err != nil {
		return nil, err
	}

	voted := true
	err := s.votes.Insert(ctx, issueID, userID)
	switch {
	case err == nil:
	case err == models.ErrConflict:
		if err := s.votes.Remove(ctx, issueID, userID); err != nil && err != models.ErrNotFound {
			return nil, err
		}
		voted = false
	default:
		return nil, err
	}

	count, err := s.votes.CountForIssue(ctx, issueID)
	if err != nil {
		count = 0
	}
	return &VoteResult{Voted: voted, Votes: count}, nil
}

func validateTitle(title string) error {
	if len(title) < models.TitleMinLen || len(title) > models.TitleMaxLen {
		return models.NewValidationError("title", "must be between 5 and 100 characters")
	}
	return nil
}

func validateDescription(description string) error {
	if len(strings.TrimSpace(description)) > models.DescriptionMaxLen {
		return models.NewValidationError("description", "must be at most 500 characters")
	}
	return nil
}
