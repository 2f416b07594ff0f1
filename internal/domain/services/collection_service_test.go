package services

import (
	"context"
	"errors"
	"testing"

	"github.com/docuflow/docuflow/internal/domain/models"
	"github.com/docuflow/docuflow/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDocumentAPI struct {
	calls   []DocumentQuery
	respond func(query DocumentQuery) ([]models.Document, error)
}

func (f *fakeDocumentAPI) GetDocuments(_ context.Context, query DocumentQuery) ([]models.Document, error) {
	f.calls = append(f.calls, query)
	if f.respond == nil {
		return nil, nil
	}
	return f.respond(query)
}

func pendingDocs() []models.Document {
	return []models.Document{
		{ID: "1", Title: "Budget Draft.pdf", Status: models.DocStatusPending},
		{ID: "2", Title: "Travel Request.pdf", Status: models.DocStatusPending},
	}
}

func newCollection(api DocumentAPI, initial Filters) *CollectionService {
	return NewCollectionService(api, initial, logger.NewForTesting())
}

func TestCollectionLoadPopulatesDocuments(t *testing.T) {
	api := &fakeDocumentAPI{respond: func(DocumentQuery) ([]models.Document, error) {
		return pendingDocs(), nil
	}}
	svc := newCollection(api, Filters{Status: models.DocStatusPending})

	require.Equal(t, PhaseInit, svc.Snapshot().Phase)
	require.NoError(t, svc.Load(context.Background()))

	snap := svc.Snapshot()
	assert.Equal(t, PhaseReady, snap.Phase)
	assert.Len(t, snap.Documents, 2)
	assert.Empty(t, snap.ErrMessage)
	assert.False(t, snap.Refreshing)
}

func TestCollectionMutatorsSendCurrentFilters(t *testing.T) {
	api := &fakeDocumentAPI{}
	svc := newCollection(api, Filters{Status: models.DocStatusPending})
	ctx := context.Background()

	require.NoError(t, svc.SetStatus(ctx, models.DocStatusApproved))
	require.NoError(t, svc.SetDepartment(ctx, "finance"))
	require.NoError(t, svc.SetDateWindow(ctx, "2024-01-01", "2024-06-30"))
	require.NoError(t, svc.SetCreatedBy(ctx, "user-42"))

	require.Len(t, api.calls, 4)
	assert.Equal(t, DocumentQuery{Status: "approved"}, api.calls[0])
	assert.Equal(t, DocumentQuery{Status: "approved", Department: "finance"}, api.calls[1])
	assert.Equal(t, DocumentQuery{
		Status:     "approved",
		Department: "finance",
		StartDate:  "2024-01-01",
		EndDate:    "2024-06-30",
	}, api.calls[2])
	assert.Equal(t, DocumentQuery{
		Status:     "approved",
		Department: "finance",
		StartDate:  "2024-01-01",
		EndDate:    "2024-06-30",
		CreatedBy:  "user-42",
	}, api.calls[3])
}

func TestCollectionFetchFailureKeepsPreviousDocuments(t *testing.T) {
	failing := false
	api := &fakeDocumentAPI{respond: func(DocumentQuery) ([]models.Document, error) {
		if failing {
			return nil, errors.New("connection refused")
		}
		return pendingDocs(), nil
	}}
	svc := newCollection(api, Filters{Status: models.DocStatusPending})
	ctx := context.Background()

	require.NoError(t, svc.Load(ctx))
	before := svc.Snapshot().Documents

	failing = true
	err := svc.SetStatus(ctx, models.DocStatusApproved)
	require.Error(t, err)

	snap := svc.Snapshot()
	assert.Equal(t, before, snap.Documents, "stale list must survive a failed fetch")
	assert.Equal(t, PhaseFailed, snap.Phase)
	assert.Equal(t, FetchErrorMessage, snap.ErrMessage)
}

func TestCollectionRefreshClearsFlagOnFailure(t *testing.T) {
	failing := false
	api := &fakeDocumentAPI{respond: func(DocumentQuery) ([]models.Document, error) {
		if failing {
			return nil, errors.New("timeout")
		}
		return pendingDocs(), nil
	}}
	svc := newCollection(api, Filters{Status: models.DocStatusPending})
	ctx := context.Background()

	require.NoError(t, svc.Load(ctx))

	failing = true
	err := svc.Refresh(ctx)
	require.Error(t, err)

	snap := svc.Snapshot()
	assert.False(t, snap.Refreshing, "refreshing flag must clear even when the fetch fails")
	assert.Len(t, snap.Documents, 2)
}

func TestCollectionRefreshSuccessClearsError(t *testing.T) {
	failing := true
	api := &fakeDocumentAPI{respond: func(DocumentQuery) ([]models.Document, error) {
		if failing {
			return nil, errors.New("boom")
		}
		return pendingDocs(), nil
	}}
	svc := newCollection(api, Filters{Status: models.DocStatusPending})
	ctx := context.Background()

	require.Error(t, svc.Load(ctx))
	require.Equal(t, PhaseFailed, svc.Snapshot().Phase)

	failing = false
	require.NoError(t, svc.Refresh(ctx))

	snap := svc.Snapshot()
	assert.Equal(t, PhaseReady, snap.Phase)
	assert.Empty(t, snap.ErrMessage)
}

// blockingAPI holds the first request until released so a later request
// can settle first.
type blockingAPI struct {
	started chan struct{}
	release chan struct{}
	first   bool
}

func (a *blockingAPI) GetDocuments(_ context.Context, query DocumentQuery) ([]models.Document, error) {
	if !a.first {
		a.first = true
		close(a.started)
		<-a.release
		return []models.Document{{ID: "stale", Title: "Stale.pdf", Status: models.DocStatusPending}}, nil
	}
	return []models.Document{{ID: "fresh", Title: "Fresh.pdf", Status: models.DocStatusApproved}}, nil
}

func TestCollectionDiscardsStaleResponses(t *testing.T) {
	api := &blockingAPI{started: make(chan struct{}), release: make(chan struct{})}
	svc := newCollection(api, Filters{Status: models.DocStatusPending})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- svc.SetStatus(ctx, models.DocStatusPending)
	}()

	<-api.started
	require.NoError(t, svc.SetStatus(ctx, models.DocStatusApproved))

	close(api.release)
	require.NoError(t, <-done)

	snap := svc.Snapshot()
	require.Len(t, snap.Documents, 1)
	assert.Equal(t, "fresh", snap.Documents[0].ID, "older response must not overwrite a newer one")
	assert.Equal(t, PhaseReady, snap.Phase)
}

func TestCollectionSnapshotIsACopy(t *testing.T) {
	api := &fakeDocumentAPI{respond: func(DocumentQuery) ([]models.Document, error) {
		return pendingDocs(), nil
	}}
	svc := newCollection(api, Filters{Status: models.DocStatusPending})
	require.NoError(t, svc.Load(context.Background()))

	snap := svc.Snapshot()
	snap.Documents[0].Title = "mutated"

	assert.Equal(t, "Budget Draft.pdf", svc.Snapshot().Documents[0].Title)
}

func TestCollectionFilteredDocumentsScenario(t *testing.T) {
	api := &fakeDocumentAPI{respond: func(DocumentQuery) ([]models.Document, error) {
		return []models.Document{
			{ID: "1", Title: "A.pdf", Status: models.DocStatusPending},
			{ID: "2", Title: "B.pdf", Status: models.DocStatusPending},
			{ID: "3", Title: "C.pdf", Status: models.DocStatusPending},
			{ID: "4", Title: "D.pdf", Status: models.DocStatusApproved},
			{ID: "5", Title: "E.pdf", Status: models.DocStatusApproved},
		}, nil
	}}
	svc := newCollection(api, Filters{Status: models.DocStatusAll})
	require.NoError(t, svc.Load(context.Background()))

	out := svc.FilteredDocuments(LocalFilter{Status: models.DocStatusPending}, now)
	assert.Len(t, out, 3)
}
