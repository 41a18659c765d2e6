// Package query compiles caller-supplied parameters into the predicate and
// pagination bounds the persistence layer consumes.
package query

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"civicreport-be/internal/geo"
	"civicreport-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FilterParams is the raw query-string view of a listing request. Blank
// fields are simply absent filters.
type FilterParams struct {
	Status    string
	Priority  string
	Category  string
	UserID    string
	Search    string
	Latitude  string
	Longitude string
	Radius    string
	From      string
	To        string
	HasImages string
}

// IssueFilter is the typed, validated form of FilterParams. All set fields
// combine with AND semantics; Search alone expands to an OR over title and
// description.
type IssueFilter struct {
	Status    *models.IssueStatus
	Priority  *models.IssuePriority
	Category  string
	OwnerID   *primitive.ObjectID
	Search    string
	Box       *geo.BoundingBox
	From      *time.Time
	To        *time.Time
	HasImages *bool
}

// ParseFilter validates params into an IssueFilter. Blank or unparsable
// optional parameters are dropped silently so clients can evolve freely;
// bad enum values and bad geo inputs are errors because the caller asked
// for something that can never match.
func ParseFilter(p FilterParams) (*IssueFilter, error) {
	f := &IssueFilter{}

	if v := strings.TrimSpace(p.Status); v != "" && v != "all" {
		status := models.IssueStatus(strings.ToUpper(v))
		if !status.Valid() {
			return nil, models.InvalidEnum("status", v)
		}
		f.Status = &status
	}

	if v := strings.TrimSpace(p.Priority); v != "" && v != "all" {
		priority := models.IssuePriority(strings.ToUpper(v))
		if !priority.Valid() {
			return nil, models.InvalidEnum("priority", v)
		}
		f.Priority = &priority
	}

	f.Category = strings.TrimSpace(p.Category)
	if f.Category == "all" {
		f.Category = ""
	}
	f.Search = strings.TrimSpace(p.Search)

	// A malformed userId cannot match anything and carries no typo risk a
	// staff member needs told about, so it is dropped rather than rejected.
	if v := strings.TrimSpace(p.UserID); v != "" {
		if id, err := primitive.ObjectIDFromHex(v); err == nil {
			f.OwnerID = &id
		}
	}

	if err := parseGeo(p, f); err != nil {
		return nil, err
	}

	if t, ok := parseTime(p.From); ok {
		f.From = &t
	}
	if t, ok := parseTime(p.To); ok {
		f.To = &t
	}

	if v := strings.TrimSpace(p.HasImages); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.HasImages = &b
		}
	}

	return f, nil
}

// parseGeo applies the center+radius filter only when all three values are
// supplied. Non-numeric or out-of-range values are errors at that point.
func parseGeo(p FilterParams, f *IssueFilter) error {
	latStr := strings.TrimSpace(p.Latitude)
	lngStr := strings.TrimSpace(p.Longitude)
	radStr := strings.TrimSpace(p.Radius)
	if latStr == "" || lngStr == "" || radStr == "" {
		return nil
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return models.NewValidationError("latitude", "must be a number")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return models.NewValidationError("longitude", "must be a number")
	}
	radius, err := strconv.ParseFloat(radStr, 64)
	if err != nil {
		return models.NewValidationError("radius", "must be a number")
	}

	if err := geo.ValidateCoordinates(lat, lng); err != nil {
		return err
	}
	if err := geo.ValidateRadius(radius); err != nil {
		return err
	}

	box := geo.BoxAround(lat, lng, radius)
	f.Box = &box
	return nil
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Predicate renders the filter as a bson document. Substring matches are
// quoted so user input never reaches the regex engine as a pattern.
func (f *IssueFilter) Predicate() bson.M {
	q := bson.M{}

	if f.Status != nil {
		q["status"] = *f.Status
	}
	if f.Priority != nil {
		q["priority"] = *f.Priority
	}
	if f.OwnerID != nil {
		q["createdBy"] = *f.OwnerID
	}
	if f.Category != "" {
		q["category"] = bson.M{"$regex": regexp.QuoteMeta(f.Category), "$options": "i"}
	}
	if f.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
		q["$or"] = []bson.M{
			{"title": pattern},
			{"description": pattern},
		}
	}
	if f.Box != nil {
		q["latitude"] = bson.M{"$gte": f.Box.MinLat, "$lte": f.Box.MaxLat}
		q["longitude"] = bson.M{"$gte": f.Box.MinLng, "$lte": f.Box.MaxLng}
	}
	if f.From != nil || f.To != nil {
		created := bson.M{}
		if f.From != nil {
			created["$gte"] = *f.From
		}
		if f.To != nil {
			created["$lte"] = *f.To
		}
		q["createdAt"] = created
	}
	if f.HasImages != nil {
		q["images.0"] = bson.M{"$exists": *f.HasImages}
	}

	return q
}
