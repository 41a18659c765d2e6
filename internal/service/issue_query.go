// Package service orchestrates the core issue operations on top of the
// repositories, the filter/pagination compilers, the authorization guard
// and the status workflow.
package service

import (
	"context"
	"time"

	"civicreport-be/internal/auth"
	"civicreport-be/internal/geo"
	"civicreport-be/internal/models"
	"civicreport-be/internal/query"
	"civicreport-be/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SortOldest flips the default newest-first ordering.
const SortOldest = "oldest"

// IssuePage is one bounded slice of a listing plus its metadata.
type IssuePage struct {
	Items []models.Issue
	Meta  query.PageMeta
}

// IssueDetail is a single issue with its vote information.
type IssueDetail struct {
	models.Issue
	Votes        int64 `json:"votes"`
	UserHasVoted bool  `json:"userHasVoted"`
}

// DailyCount is one day of the last-7-days series in the admin overview.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// AdminOverview is the analytics payload for staff dashboards.
type AdminOverview struct {
	IssuesByCategory []repository.CategoryCount `json:"issuesByCategory"`
	Last7Days        []DailyCount               `json:"last7Days"`
	TotalIssues      int64                      `json:"totalIssues"`
	OpenIssues       int64                      `json:"openIssues"`
}

// IssueQueryService serves the read side: listings, nearby search, per-user
// and admin views. All operations are side-effect-free; an empty page is a
// valid result, never an error.
type IssueQueryService struct {
	issues repository.IssueRepository
	votes  repository.VoteRepository
	guard  *auth.Guard
	log    *zap.Logger
}

// NewIssueQueryService wires the query service.
func NewIssueQueryService(issues repository.IssueRepository, votes repository.VoteRepository, guard *auth.Guard, log *zap.Logger) *IssueQueryService {
	return &IssueQueryService{issues: issues, votes: votes, guard: guard, log: log}
}

// List runs one count and one bounded fetch under the same predicate so
// totalItems stays consistent with the returned page.
func (s *IssueQueryService) List(ctx context.Context, filter *query.IssueFilter, page query.PageRequest, sortOrder string) (*IssuePage, error) {
	predicate := filter.Predicate()

	total, err := s.issues.Count(ctx, predicate)
	if err != nil {
		return nil, err
	}

	sort := bson.D{{Key: "createdAt", Value: -1}}
	if sortOrder == SortOldest {
		sort = bson.D{{Key: "createdAt", Value: 1}}
	}

	items, err := s.issues.Find(ctx, predicate, page.Skip(), page.Limit64(), sort)
	if err != nil {
		return nil, err
	}

	return &IssuePage{Items: items, Meta: query.BuildMeta(total, page)}, nil
}

// Nearby validates the center and radius, then lists with a geo-only
// filter. The box is the documented r/111-degree approximation.
func (s *IssueQueryService) Nearby(ctx context.Context, lat, lng, radiusKm float64, page query.PageRequest) (*IssuePage, error) {
	if err := geo.ValidateCoordinates(lat, lng); err != nil {
		return nil, err
	}
	if err := geo.ValidateRadius(radiusKm); err != nil {
		return nil, err
	}

	box := geo.BoxAround(lat, lng, radiusKm)
	filter := &query.IssueFilter{Box: &box}
	return s.List(ctx, filter, page, "")
}

// Mine lists the owner's issues. The owner filter is forced in regardless
// of any caller-supplied userId, so a user cannot list someone else's
// issues through this path.
func (s *IssueQueryService) Mine(ctx context.Context, ownerID primitive.ObjectID, filter *query.IssueFilter, page query.PageRequest, sortOrder string) (*IssuePage, error) {
	if filter == nil {
		filter = &query.IssueFilter{}
	}
	forced := *filter
	forced.OwnerID = &ownerID
	return s.List(ctx, &forced, page, sortOrder)
}

// Get fetches one issue with its vote count and, when a viewer is known,
// whether that viewer has voted.
func (s *IssueQueryService) Get(ctx context.Context, id primitive.ObjectID, viewer *primitive.ObjectID) (*IssueDetail, error) {
	issue, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &IssueDetail{Issue: *issue}

	if votes, err := s.votes.CountForIssue(ctx, id); err == nil {
		detail.Votes = votes
	} else {
		s.log.Warn("counting votes failed", zap.String("issue", id.Hex()), zap.Error(err))
	}

	if viewer != nil {
		if voted, err := s.votes.HasVoted(ctx, id, *viewer); err == nil {
			detail.UserHasVoted = voted
		}
	}

	return detail, nil
}

// Overview builds the admin analytics payload. Only admins may read it.
func (s *IssueQueryService) Overview(ctx context.Context, role models.Role) (*AdminOverview, error) {
	if !s.guard.CanViewAdminData(role) {
		return nil, models.ErrForbidden
	}

	byCategory, err := s.issues.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}

	last7 := make([]DailyCount, 0, 7)
	for i := 6; i >= 0; i-- {
		day := time.Now().AddDate(0, 0, -i)
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

		count, err := s.issues.CountCreatedBetween(ctx, day, day.AddDate(0, 0, 1))
		if err != nil {
			count = 0
		}
		last7 = append(last7, DailyCount{Date: day.Format("2006-01-02"), Count: count})
	}

	total, err := s.issues.Count(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	open, err := s.issues.Count(ctx, bson.M{"status": bson.M{"$in": models.OpenStatuses()}})
	if err != nil {
		return nil, err
	}

	return &AdminOverview{
		IssuesByCategory: byCategory,
		Last7Days:        last7,
		TotalIssues:      total,
		OpenIssues:       open,
	}, nil
}
