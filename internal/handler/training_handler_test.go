package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mergeed-api/internal/models"
	"github.com/noah-isme/mergeed-api/internal/service"
)

func newTrainingHandler() *TrainingHandler {
	return NewTrainingHandler(service.NewTrainingService(true, nil))
}

func TestTrainingHandlerModulesFilterByLanguage(t *testing.T) {
	handler := newTrainingHandler()

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/training/modules?language=Hindi", nil)

	handler.Modules(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var modules []models.TrainingModule
	require.NoError(t, json.Unmarshal(envelope.Data, &modules))
	require.Len(t, modules, 2)
	for _, module := range modules {
		assert.Contains(t, []string{"Hindi", "Multilingual"}, module.Language)
	}
}

func TestTrainingHandlerEnroll(t *testing.T) {
	handler := newTrainingHandler()

	rec, c := postJSON(t, `{"teacher_id": "TCH_001", "training_id": 2}`)
	handler.Enroll(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var receipt models.EnrollmentReceipt
	require.NoError(t, json.Unmarshal(envelope.Data, &receipt))
	assert.Equal(t, "TCH_001", receipt.TeacherID)
	assert.NotEmpty(t, receipt.ReceiptID)
}

func TestTrainingHandlerEnrollMissingFields(t *testing.T) {
	handler := newTrainingHandler()

	rec, c := postJSON(t, `{"teacher_id": "TCH_001"}`)
	handler.Enroll(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrainingHandlerEnrollments(t *testing.T) {
	handler := newTrainingHandler()

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/training/enrollments/TCH_001", nil)
	c.Params = gin.Params{{Key: "teacher_id", Value: "TCH_001"}}

	handler.Enrollments(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var enrollments []models.Enrollment
	require.NoError(t, json.Unmarshal(envelope.Data, &enrollments))
	assert.Len(t, enrollments, 2)
}
