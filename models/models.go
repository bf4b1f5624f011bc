package models

import "time"

// Category classifies a citizen report. The set is closed; the office
// routing table in the assignment service keys off these values.
type Category string

const (
	CategoryRoads      Category = "ROADS"
	CategoryLighting   Category = "LIGHTING"
	CategoryWaste      Category = "WASTE"
	CategoryWaterSewer Category = "WATER_SEWER"
	CategoryParks      Category = "PARKS"
	CategoryOther      Category = "OTHER"
)

// Categories lists every valid category value.
var Categories = []Category{
	CategoryRoads,
	CategoryLighting,
	CategoryWaste,
	CategoryWaterSewer,
	CategoryParks,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Status is the lifecycle state of a report.
type Status string

const (
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusAssigned        Status = "ASSIGNED"
	StatusInProgress      Status = "IN_PROGRESS"
	StatusSuspended       Status = "SUSPENDED"
	StatusResolved        Status = "RESOLVED"
	StatusRejected        Status = "REJECTED"
)

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusPendingApproval, StatusAssigned, StatusInProgress,
		StatusSuspended, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions. A report in a
// terminal status also stops counting toward its officer's open load.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusRejected
}

// AuthorType identifies which side of the collaboration channel a comment
// author belongs to. Citizens have no access to this channel.
type AuthorType string

const (
	AuthorMunicipality       AuthorType = "MUNICIPALITY"
	AuthorExternalMaintainer AuthorType = "EXTERNAL_MAINTAINER"
)

// Valid reports whether a is a known author type.
func (a AuthorType) Valid() bool {
	return a == AuthorMunicipality || a == AuthorExternalMaintainer
}

// Report represents a citizen-submitted municipal issue report.
type Report struct {
	ID                   int64     `json:"id" db:"id"`
	Title                string    `json:"title" db:"title"`
	Description          string    `json:"description" db:"description"`
	Category             Category  `json:"category" db:"category"`
	Latitude             float64   `json:"latitude" db:"latitude"`
	Longitude            float64   `json:"longitude" db:"longitude"`
	Photos               []string  `json:"photos"`
	SubmitterID          *int64    `json:"submitter_id,omitempty" db:"submitter_id"`
	Anonymous            bool      `json:"anonymous" db:"anonymous"`
	Status               Status    `json:"status" db:"status"`
	AssignedOffice       *string   `json:"assigned_office,omitempty" db:"assigned_office"`
	AssignedOfficerID    *int64    `json:"assigned_officer_id,omitempty" db:"assigned_officer_id"`
	ExternalMaintainerID *int64    `json:"external_maintainer_id,omitempty" db:"external_maintainer_id"`
	RejectionReason      *string   `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
}

// Comment represents one entry in a report's collaboration ledger. Exactly
// one of MunicipalityUserID / ExternalMaintainerID is non-nil; the other is
// kept explicitly null so consumers can discriminate authorship without a
// separate type tag.
type Comment struct {
	ID                   int64     `json:"id" db:"id"`
	ReportID             int64     `json:"report_id" db:"report_id"`
	Content              string    `json:"content" db:"content"`
	MunicipalityUserID   *int64    `json:"municipality_user_id" db:"municipality_user_id"`
	ExternalMaintainerID *int64    `json:"external_maintainer_id" db:"external_maintainer_id"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// Officer represents a municipal staff member belonging to one office.
type Officer struct {
	ID     int64  `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Office string `json:"office" db:"office"`
}

// CreateReportRequest represents the citizen submission payload.
type CreateReportRequest struct {
	Title       string   `json:"title" binding:"required,max=256"`
	Description string   `json:"description" binding:"required"`
	Category    Category `json:"category" binding:"required"`
	Latitude    float64  `json:"latitude" binding:"required"`
	Longitude   float64  `json:"longitude" binding:"required"`
	Photos      []string `json:"photos"`
	Anonymous   bool     `json:"anonymous"`
}

// RejectReportRequest represents the reviewer rejection payload.
type RejectReportRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ChangeStatusRequest represents a plain status-change payload.
type ChangeStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

// AttachMaintainerRequest attaches an external maintainer to a report.
type AttachMaintainerRequest struct {
	MaintainerID int64 `json:"maintainer_id" binding:"required"`
}

// OverrideRequest is the administrative bypass payload used by seed and
// import tooling. Status is set directly, skipping transition validation.
type OverrideRequest struct {
	Status          Status  `json:"status" binding:"required"`
	AssignedOffice  *string `json:"assigned_office,omitempty"`
	OfficerID       *int64  `json:"assigned_officer_id,omitempty"`
	MaintainerID    *int64  `json:"external_maintainer_id,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

// AddOfficerRequest registers an officer in an office.
type AddOfficerRequest struct {
	Name   string `json:"name" binding:"required"`
	Office string `json:"office" binding:"required"`
}

// AddCommentRequest represents a comment submission on the collaboration
// channel. The author identity comes from the auth token, not the payload.
type AddCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// ReportResponse wraps a single report.
type ReportResponse struct {
	Report *Report `json:"report"`
}

// CommentsResponse wraps a report's ledger in creation order.
type CommentsResponse struct {
	ReportID int64     `json:"report_id"`
	Comments []Comment `json:"comments"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// StatusEvent is published whenever a report changes status, keyed by the
// users that should be notified. Delivery is the broker's concern.
type StatusEvent struct {
	ReportID   int64   `json:"report_id"`
	FromStatus Status  `json:"from_status"`
	ToStatus   Status  `json:"to_status"`
	OfficerID  *int64  `json:"officer_id,omitempty"`
	Office     *string `json:"office,omitempty"`
	Timestamp  string  `json:"timestamp"`
}

// CommentEvent is published whenever a comment is appended.
type CommentEvent struct {
	ReportID   int64      `json:"report_id"`
	CommentID  int64      `json:"comment_id"`
	AuthorID   int64      `json:"author_id"`
	AuthorType AuthorType `json:"author_type"`
	Timestamp  string     `json:"timestamp"`
}
