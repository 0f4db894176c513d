package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mergeed-api/internal/models"
	appErrors "github.com/noah-isme/mergeed-api/pkg/errors"
	"github.com/noah-isme/mergeed-api/pkg/export"
)

type mockSubmissionStore struct {
	submissions map[int64]*models.Submission
	stats       models.SubmissionStats
	districts   []models.DistrictStats
	statsCalls  int
}

func newMockStore(subs ...*models.Submission) *mockSubmissionStore {
	store := &mockSubmissionStore{submissions: make(map[int64]*models.Submission)}
	for _, sub := range subs {
		store.submissions[sub.ID] = sub
	}
	return store
}

func (m *mockSubmissionStore) FindByID(_ context.Context, id int64) (*models.Submission, error) {
	sub, ok := m.submissions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *sub
	return &copied, nil
}

func (m *mockSubmissionStore) ListAll(_ context.Context) ([]models.Submission, error) {
	out := make([]models.Submission, 0, len(m.submissions))
	for _, sub := range m.submissions {
		out = append(out, *sub)
	}
	return out, nil
}

func (m *mockSubmissionStore) ListByStatus(_ context.Context, status string) ([]models.Submission, error) {
	out := []models.Submission{}
	for _, sub := range m.submissions {
		if sub.Status == status {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (m *mockSubmissionStore) UpdateStatus(_ context.Context, id int64, status string, officerID, feedback *string) (bool, error) {
	sub, ok := m.submissions[id]
	if !ok {
		return false, nil
	}
	sub.Status = status
	sub.DietOfficer = officerID
	sub.Feedback = feedback
	return true, nil
}

func (m *mockSubmissionStore) Stats(_ context.Context) (models.SubmissionStats, error) {
	m.statsCalls++
	return m.stats, nil
}

func (m *mockSubmissionStore) DistrictStats(_ context.Context) ([]models.DistrictStats, error) {
	return m.districts, nil
}

type memoryCacheRepo struct {
	entries map[string]interface{}
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string]interface{})}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	value, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	switch d := dest.(type) {
	case *models.SubmissionStats:
		*d = value.(models.SubmissionStats)
	case *[]models.DistrictStats:
		*d = value.([]models.DistrictStats)
	}
	return nil
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.entries[key] = value
	return nil
}

func (m *memoryCacheRepo) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func pendingSubmission(id int64) *models.Submission {
	return &models.Submission{
		ID:             id,
		TeacherID:      "TCH_001",
		Problem:        "engagement",
		Language:       "Hindi",
		Infrastructure: models.InfrastructureLow,
		RawMessage:     "Students are bored",
		Strategy:       FallbackBanner + "\n\nstrategy body",
		Status:         models.StatusPending,
		CreatedAt:      time.Now(),
	}
}

func TestApproveSetsReviewFields(t *testing.T) {
	store := newMockStore(pendingSubmission(1))
	svc := NewApprovalService(store, nil, nil, nil, nil)

	feedback := "Well structured"
	sub, err := svc.Approve(context.Background(), 1, ReviewRequest{OfficerID: "DIET_001", Feedback: &feedback})

	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, sub.Status)
	require.NotNil(t, sub.DietOfficer)
	assert.Equal(t, "DIET_001", *sub.DietOfficer)
	require.NotNil(t, sub.Feedback)
	assert.Equal(t, "Well structured", *sub.Feedback)
}

func TestRejectOverwritesEarlierReview(t *testing.T) {
	store := newMockStore(pendingSubmission(1))
	svc := NewApprovalService(store, nil, nil, nil, nil)

	_, err := svc.Approve(context.Background(), 1, ReviewRequest{OfficerID: "DIET_001"})
	require.NoError(t, err)

	sub, err := svc.Reject(context.Background(), 1, ReviewRequest{OfficerID: "DIET_002"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, sub.Status)
	assert.Equal(t, "DIET_002", *sub.DietOfficer)
	assert.Nil(t, sub.Feedback, "last write wins, earlier feedback cleared")
}

func TestReviewUnknownSubmission(t *testing.T) {
	svc := NewApprovalService(newMockStore(), nil, nil, nil, nil)

	_, err := svc.Approve(context.Background(), 99, ReviewRequest{OfficerID: "DIET_001"})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReviewRequiresOfficer(t *testing.T) {
	svc := NewApprovalService(newMockStore(pendingSubmission(1)), nil, nil, nil, nil)

	_, err := svc.Reject(context.Background(), 1, ReviewRequest{})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestListFiltersByStatus(t *testing.T) {
	approved := pendingSubmission(2)
	approved.Status = models.StatusApproved
	store := newMockStore(pendingSubmission(1), approved)
	svc := NewApprovalService(store, nil, nil, nil, nil)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.List(context.Background(), models.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1), pending[0].ID)
}

func TestStatsServedFromCacheOnSecondCall(t *testing.T) {
	store := newMockStore()
	store.stats = models.SubmissionStats{Total: 5, Pending: 2, Approved: 2, Rejected: 1}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	svc := NewApprovalService(store, cache, nil, nil, nil)

	first, err := svc.Stats(context.Background())
	require.NoError(t, err)
	second, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.statsCalls, "second call served from cache")
}

func TestReviewInvalidatesStatsCache(t *testing.T) {
	store := newMockStore(pendingSubmission(1))
	store.stats = models.SubmissionStats{Total: 1, Pending: 1}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	svc := NewApprovalService(store, cache, nil, nil, nil)

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), 1, ReviewRequest{OfficerID: "DIET_001"})
	require.NoError(t, err)

	store.stats = models.SubmissionStats{Total: 1, Approved: 1}
	refreshed, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed.Approved)
	assert.Equal(t, 2, store.statsCalls)
}

func TestDistrictStatsEmptyNotNil(t *testing.T) {
	svc := NewApprovalService(newMockStore(), nil, nil, nil, nil)

	stats, err := svc.DistrictStats(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, stats)
	assert.Empty(t, stats)
}

func TestExportPDFProducesDocument(t *testing.T) {
	store := newMockStore(pendingSubmission(1))
	svc := NewApprovalService(store, nil, export.NewPDFExporter(), nil, nil)

	payload, err := svc.ExportPDF(context.Background(), 1)

	require.NoError(t, err)
	assert.True(t, len(payload) > 0)
	assert.Equal(t, "%PDF", string(payload[:4]))
}

func TestExportPDFUnknownSubmission(t *testing.T) {
	svc := NewApprovalService(newMockStore(), nil, export.NewPDFExporter(), nil, nil)

	_, err := svc.ExportPDF(context.Background(), 42)

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
