package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueStatus enum
type IssueStatus string

const (
	StatusNew        IssueStatus = "NEW"
	StatusInProgress IssueStatus = "IN_PROGRESS"
	StatusResolved   IssueStatus = "RESOLVED"
	StatusRejected   IssueStatus = "REJECTED"
)

// Valid reports whether s is one of the defined statuses.
func (s IssueStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// OpenStatuses are the statuses counted as "open" in admin analytics.
func OpenStatuses() []IssueStatus {
	return []IssueStatus{StatusNew, StatusInProgress}
}

// IssuePriority enum
type IssuePriority string

const (
	PriorityLow    IssuePriority = "LOW"
	PriorityMedium IssuePriority = "MEDIUM"
	PriorityHigh   IssuePriority = "HIGH"
	PriorityUrgent IssuePriority = "URGENT"
)

// Valid reports whether p is one of the defined priorities.
func (p IssuePriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Title and description length bounds enforced on create/update.
const (
	TitleMinLen       = 5
	TitleMaxLen       = 100
	DescriptionMaxLen = 500
)

// Issue represents a civic problem reported by a user. Latitude and
// longitude are always present and in range once persisted.
type Issue struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Images      []string           `bson:"images,omitempty" json:"images,omitempty"`
	Priority    IssuePriority      `bson:"priority" json:"priority"`
	Status      IssueStatus        `bson:"status" json:"status"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	Latitude    float64            `bson:"latitude" json:"latitude"`
	Longitude   float64            `bson:"longitude" json:"longitude"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
