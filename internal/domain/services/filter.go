package services

import (
	"strings"
	"time"

	"github.com/docuflow/docuflow/internal/domain/models"
)

// LocalFilter narrows an already-fetched collection in memory. Every
// field is optional; an unset field leaves the collection untouched.
type LocalFilter struct {
	// Query is a case-insensitive substring match on the title.
	Query string

	// Status keeps only documents in the given partition. DocStatusAll
	// and the zero value mean no constraint.
	Status models.DocStatus

	// DocumentType matches the uppercased trailing extension of the
	// file locator ("PDF", "DOCX").
	DocumentType string

	// Range keeps documents whose createdDate falls inside the bucket.
	Range models.DateRange
}

// IsZero reports whether the filter would pass every document through.
func (f LocalFilter) IsZero() bool {
	return f.Query == "" &&
		(f.Status == "" || f.Status == models.DocStatusAll) &&
		f.DocumentType == "" &&
		f.Range == ""
}

// FilterDocuments applies f to docs and returns the matching subset in
// the original order. The input slice is never mutated; now anchors the
// date-range buckets and is expected to be in local time.
func FilterDocuments(docs []models.Document, f LocalFilter, now time.Time) []models.Document {
	if f.IsZero() {
		out := make([]models.Document, len(docs))
		copy(out, docs)
		return out
	}

	query := strings.ToLower(f.Query)
	docType := strings.ToUpper(f.DocumentType)
	rangeStart, hasRange := bucketStart(f.Range, now)

	out := make([]models.Document, 0, len(docs))
	for _, doc := range docs {
		if query != "" && !strings.Contains(strings.ToLower(doc.Title), query) {
			continue
		}
		if f.Status != "" && f.Status != models.DocStatusAll && !doc.Status.Equal(f.Status) {
			continue
		}
		if docType != "" && doc.Extension() != docType {
			continue
		}
		if hasRange && doc.CreatedDate.Before(rangeStart) {
			continue
		}
		out = append(out, doc)
	}
	return out
}

// bucketStart returns the inclusive lower bound of a date-range bucket.
// Buckets have no upper bound: "this week" includes today, and a
// future-dated document matches every bucket. Weeks start on Sunday.
func bucketStart(r models.DateRange, now time.Time) (time.Time, bool) {
	if r == "" {
		return time.Time{}, false
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch r {
	case models.DateRangeToday:
		return midnight, true
	case models.DateRangeThisWeek:
		return midnight.AddDate(0, 0, -int(midnight.Weekday())), true
	case models.DateRangeThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), true
	case models.DateRangeThisYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), true
	}
	return time.Time{}, false
}
