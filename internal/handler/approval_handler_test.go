package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mergeed-api/internal/models"
	"github.com/noah-isme/mergeed-api/internal/service"
	"github.com/noah-isme/mergeed-api/pkg/export"
)

type fakeSubmissionStore struct {
	submissions map[int64]*models.Submission
	stats       models.SubmissionStats
	districts   []models.DistrictStats
}

func newFakeStore(subs ...*models.Submission) *fakeSubmissionStore {
	store := &fakeSubmissionStore{submissions: make(map[int64]*models.Submission)}
	for _, sub := range subs {
		store.submissions[sub.ID] = sub
	}
	return store
}

func (f *fakeSubmissionStore) FindByID(_ context.Context, id int64) (*models.Submission, error) {
	sub, ok := f.submissions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *sub
	return &copied, nil
}

func (f *fakeSubmissionStore) ListAll(_ context.Context) ([]models.Submission, error) {
	out := make([]models.Submission, 0, len(f.submissions))
	for _, sub := range f.submissions {
		out = append(out, *sub)
	}
	return out, nil
}

func (f *fakeSubmissionStore) ListByStatus(_ context.Context, status string) ([]models.Submission, error) {
	out := []models.Submission{}
	for _, sub := range f.submissions {
		if sub.Status == status {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeSubmissionStore) UpdateStatus(_ context.Context, id int64, status string, officerID, feedback *string) (bool, error) {
	sub, ok := f.submissions[id]
	if !ok {
		return false, nil
	}
	sub.Status = status
	sub.DietOfficer = officerID
	sub.Feedback = feedback
	return true, nil
}

func (f *fakeSubmissionStore) Stats(_ context.Context) (models.SubmissionStats, error) {
	return f.stats, nil
}

func (f *fakeSubmissionStore) DistrictStats(_ context.Context) ([]models.DistrictStats, error) {
	return f.districts, nil
}

func reviewableSubmission(id int64) *models.Submission {
	return &models.Submission{
		ID:             id,
		TeacherID:      "TCH_001",
		Problem:        "engagement",
		Language:       "Hindi",
		Infrastructure: models.InfrastructureLow,
		RawMessage:     "Students are bored",
		Strategy:       "strategy body",
		Status:         models.StatusPending,
		CreatedAt:      time.Now(),
	}
}

func newApprovalHandler(store *fakeSubmissionStore) *ApprovalHandler {
	return NewApprovalHandler(service.NewApprovalService(store, nil, export.NewPDFExporter(), nil, nil))
}

func TestApprovalHandlerApprove(t *testing.T) {
	handler := newApprovalHandler(newFakeStore(reviewableSubmission(1)))

	rec, c := postJSON(t, `{"officer_id": "DIET_001", "feedback": "Good plan"}`)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	handler.Approve(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var sub models.Submission
	require.NoError(t, json.Unmarshal(envelope.Data, &sub))
	assert.Equal(t, models.StatusApproved, sub.Status)
	require.NotNil(t, sub.DietOfficer)
	assert.Equal(t, "DIET_001", *sub.DietOfficer)
}

func TestApprovalHandlerRejectUnknownSubmission(t *testing.T) {
	handler := newApprovalHandler(newFakeStore())

	rec, c := postJSON(t, `{"officer_id": "DIET_001"}`)
	c.Params = gin.Params{{Key: "id", Value: "99"}}
	handler.Reject(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApprovalHandlerNonNumericID(t *testing.T) {
	handler := newApprovalHandler(newFakeStore())

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/approvals/submissions/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.Get(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApprovalHandlerListByStatus(t *testing.T) {
	approved := reviewableSubmission(2)
	approved.Status = models.StatusApproved
	handler := newApprovalHandler(newFakeStore(reviewableSubmission(1), approved))

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/approvals/submissions?status=Approved", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var subs []models.Submission
	require.NoError(t, json.Unmarshal(envelope.Data, &subs))
	require.Len(t, subs, 1)
	assert.Equal(t, int64(2), subs[0].ID)
}

func TestApprovalHandlerStats(t *testing.T) {
	store := newFakeStore()
	store.stats = models.SubmissionStats{Total: 3, Pending: 1, Approved: 1, Rejected: 1}
	handler := newApprovalHandler(store)

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/approvals/stats", nil)

	handler.Stats(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var stats models.SubmissionStats
	require.NoError(t, json.Unmarshal(envelope.Data, &stats))
	assert.Equal(t, 3, stats.Total)
}

func TestApprovalHandlerExportReturnsPDF(t *testing.T) {
	handler := newApprovalHandler(newFakeStore(reviewableSubmission(1)))

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/approvals/submissions/1/export", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "submission_1.pdf")
}
