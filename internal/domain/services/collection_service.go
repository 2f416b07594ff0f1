package services

import (
	"context"
	"sync"
	"time"

	"github.com/docuflow/docuflow/internal/domain/models"
	"github.com/docuflow/docuflow/pkg/logger"
)

// FetchErrorMessage is the user-facing message shown when the document
// listing cannot be loaded. The previous collection stays on screen.
const FetchErrorMessage = "Error while fetching documents. Please try again later."

// Phase is the display state of the collection for one screen instance.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "init"
	}
}

// Filters is the server-side filter state. Each field maps to a query
// parameter on the document listing; empty fields are not sent.
type Filters struct {
	Status     models.DocStatus
	Department string
	StartDate  string
	EndDate    string
	CreatedBy  string
}

// Snapshot is a point-in-time copy of the collection state, safe to
// hand to any number of rendering screens.
type Snapshot struct {
	Documents  []models.Document
	Filters    Filters
	Phase      Phase
	Refreshing bool
	ErrMessage string
}

// CollectionService owns the current document collection, its loading
// and refreshing flags, and the server-side filter state. Mutating any
// server-side filter field re-fetches from the remote service; local
// narrowing goes through FilterDocuments without a new request.
//
// Every fetch carries a sequence number taken under the lock. A
// response that arrives after a newer one has already been applied is
// discarded, so a burst of filter changes cannot leave stale data on
// screen.
type CollectionService struct {
	api DocumentAPI
	log *logger.Logger

	mu         sync.Mutex
	filters    Filters
	documents  []models.Document
	phase      Phase
	refreshing bool
	errMessage string
	nextSeq    uint64
	applied    uint64
}

// NewCollectionService creates the collection view model with its
// initial server-side filter state.
func NewCollectionService(api DocumentAPI, initial Filters, log *logger.Logger) *CollectionService {
	return &CollectionService{
		api:     api,
		log:     log,
		filters: initial,
		phase:   PhaseInit,
	}
}

// SetStatus selects a status partition (or DocStatusAll) and re-fetches.
func (s *CollectionService) SetStatus(ctx context.Context, status models.DocStatus) error {
	s.mu.Lock()
	s.filters.Status = status
	s.mu.Unlock()
	return s.fetch(ctx, false)
}

// SetDepartment changes the department constraint and re-fetches.
func (s *CollectionService) SetDepartment(ctx context.Context, department string) error {
	s.mu.Lock()
	s.filters.Department = department
	s.mu.Unlock()
	return s.fetch(ctx, false)
}

// SetDateWindow changes the createdDate window and re-fetches. Either
// bound may be empty.
func (s *CollectionService) SetDateWindow(ctx context.Context, startDate, endDate string) error {
	s.mu.Lock()
	s.filters.StartDate = startDate
	s.filters.EndDate = endDate
	s.mu.Unlock()
	return s.fetch(ctx, false)
}

// SetCreatedBy scopes the collection to one author's documents and
// re-fetches. An empty id removes the scoping.
func (s *CollectionService) SetCreatedBy(ctx context.Context, userID string) error {
	s.mu.Lock()
	s.filters.CreatedBy = userID
	s.mu.Unlock()
	return s.fetch(ctx, false)
}

// Load performs the initial fetch with the current filter state.
func (s *CollectionService) Load(ctx context.Context) error {
	return s.fetch(ctx, false)
}

// Refresh re-fetches for pull-to-refresh. The refreshing flag is
// cleared when the fetch settles, success or failure; the full-screen
// loading phase is left alone so both spinners never stack.
func (s *CollectionService) Refresh(ctx context.Context) error {
	return s.fetch(ctx, true)
}

// Snapshot returns a copy of the current state. The documents slice is
// copied so callers can never observe a partial replacement.
func (s *CollectionService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]models.Document, len(s.documents))
	copy(docs, s.documents)
	return Snapshot{
		Documents:  docs,
		Filters:    s.filters,
		Phase:      s.phase,
		Refreshing: s.refreshing,
		ErrMessage: s.errMessage,
	}
}

// Filters returns the current server-side filter state.
func (s *CollectionService) Filters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// FilteredDocuments applies a client-side filter to the current
// collection, anchored at now.
func (s *CollectionService) FilteredDocuments(f LocalFilter, now time.Time) []models.Document {
	snap := s.Snapshot()
	return FilterDocuments(snap.Documents, f, now)
}

func (s *CollectionService) fetch(ctx context.Context, asRefresh bool) error {
	s.mu.Lock()
	s.nextSeq++
	seq := s.nextSeq
	query := queryFromFilters(s.filters)
	if asRefresh {
		s.refreshing = true
	} else {
		s.phase = PhaseLoading
	}
	s.mu.Unlock()

	docs, err := s.api.GetDocuments(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()

	if asRefresh {
		s.refreshing = false
	}
	if seq < s.applied {
		// A newer fetch already settled; this response is stale.
		s.log.Debug("discarding stale document response", "seq", seq, "applied", s.applied)
		return err
	}
	s.applied = seq

	if err != nil {
		s.log.Error("failed to fetch documents", "error", err, "status", query.Status)
		s.errMessage = FetchErrorMessage
		s.phase = PhaseFailed
		return err
	}

	s.documents = docs
	s.errMessage = ""
	s.phase = PhaseReady
	return nil
}

func queryFromFilters(f Filters) DocumentQuery {
	return DocumentQuery{
		Status:     string(f.Status),
		Department: f.Department,
		StartDate:  f.StartDate,
		EndDate:    f.EndDate,
		CreatedBy:  f.CreatedBy,
	}
}
