package models

import (
	"strings"
	"time"
)

// Custom types for workflow state
type DocStatus string
type UserRole string
type DateRange string

const (
	// Document status partitions. A document belongs to exactly one at a
	// time; the dates below are set by the server when the matching
	// transition happens.
	DocStatusPending    DocStatus = "pending"
	DocStatusApproved   DocStatus = "approved"
	DocStatusRejected   DocStatus = "rejected"
	DocStatusCorrection DocStatus = "correction"

	// DocStatusAll is the combined-partition sentinel the server accepts
	// on the status query parameter.
	DocStatusAll DocStatus = "pending-rejected-correction-approved"

	// User roles
	UserRoleAdmin     UserRole = "admin"
	UserRoleApprover  UserRole = "approver"
	UserRoleAssistant UserRole = "assistant"

	// Client-side date range buckets, evaluated against createdDate
	DateRangeToday     DateRange = "today"
	DateRangeThisWeek  DateRange = "week"
	DateRangeThisMonth DateRange = "month"
	DateRangeThisYear  DateRange = "year"
)

// Valid reports whether s is a single status partition.
func (s DocStatus) Valid() bool {
	switch s {
	case DocStatusPending, DocStatusApproved, DocStatusRejected, DocStatusCorrection:
		return true
	}
	return false
}

// Equal compares two statuses case-insensitively; the server is not
// consistent about casing.
func (s DocStatus) Equal(other DocStatus) bool {
	return strings.EqualFold(string(s), string(other))
}

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleApprover, UserRoleAssistant:
		return true
	}
	return false
}

func (r DateRange) Valid() bool {
	switch r {
	case DateRangeToday, DateRangeThisWeek, DateRangeThisMonth, DateRangeThisYear:
		return true
	}
	return false
}

// ParseDateRange accepts both the short bucket names and the labels the
// filter modal shows ("This Week" etc).
func ParseDateRange(s string) (DateRange, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return DateRangeToday, true
	case "week", "this week":
		return DateRangeThisWeek, true
	case "month", "this month":
		return DateRangeThisMonth, true
	case "year", "this year":
		return DateRangeThisYear, true
	}
	return "", false
}

// Department is a reference to the owning department.
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserRef is the author/submitter reference embedded in a document.
type UserRef struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// User is a directory entry returned by the user listing and session
// endpoints.
type User struct {
	ID       string   `json:"_id"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	MobileNo string   `json:"mobileNo"`
	IsActive bool     `json:"isActive"`
}

// Document is one workflow item as returned by the document listing.
type Document struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	FileUniqueName string     `json:"fileUniqueName"`
	Status         DocStatus  `json:"status"`
	CreatedDate    time.Time  `json:"createdDate"`
	ApprovedDate   *time.Time `json:"approvedDate,omitempty"`
	RejectedDate   *time.Time `json:"rejectedDate,omitempty"`
	CorrectionDate *time.Time `json:"correctionDate,omitempty"`
	CreatedBy      UserRef    `json:"createdBy"`
	Remarks        string     `json:"remarks,omitempty"`
	Department     Department `json:"department"`
	FileURL        string     `json:"fileUrl,omitempty"`
	DocumentURL    string     `json:"documentUrl,omitempty"`
}

// Locator returns the handle used to build preview/download URLs. The
// unique file name is preferred; older documents only carry a fileUrl.
func (d *Document) Locator() string {
	if d.FileUniqueName != "" {
		return d.FileUniqueName
	}
	if d.FileURL != "" {
		return d.FileURL
	}
	return d.DocumentURL
}

// Extension returns the uppercased trailing extension of the file
// locator ("PDF", "DOCX"), or "" when the locator has none.
func (d *Document) Extension() string {
	loc := d.Locator()
	i := strings.LastIndexByte(loc, '.')
	if i < 0 || i == len(loc)-1 {
		return ""
	}
	return strings.ToUpper(loc[i+1:])
}

// StatusDate returns the transition date matching the current status,
// nil while the document is still pending.
func (d *Document) StatusDate() *time.Time {
	switch {
	case d.Status.Equal(DocStatusApproved):
		return d.ApprovedDate
	case d.Status.Equal(DocStatusRejected):
		return d.RejectedDate
	case d.Status.Equal(DocStatusCorrection):
		return d.CorrectionDate
	}
	return nil
}
