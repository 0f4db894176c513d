package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mergeed-api/internal/service"
	appErrors "github.com/noah-isme/mergeed-api/pkg/errors"
	"github.com/noah-isme/mergeed-api/pkg/genai"
	"github.com/noah-isme/mergeed-api/pkg/response"
)

// TeacherHandler wires teacher-facing services to HTTP routes.
type TeacherHandler struct {
	chat      *service.ChatService
	directory *service.TeacherDirectoryService
	provider  genai.TextGenerator
	model     string
}

// NewTeacherHandler constructs a new TeacherHandler.
func NewTeacherHandler(chat *service.ChatService, directory *service.TeacherDirectoryService, provider genai.TextGenerator, model string) *TeacherHandler {
	return &TeacherHandler{
		chat:      chat,
		directory: directory,
		provider:  provider,
		model:     model,
	}
}

// Chat godoc
// @Summary Submit a classroom problem and receive a teaching strategy
// @Tags Teachers
// @Accept json
// @Produce json
// @Param payload body service.ChatRequest true "Chat payload"
// @Success 200 {object} response.Envelope
// @Router /teachers/chat [post]
func (h *TeacherHandler) Chat(c *gin.Context) {
	var req service.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid chat payload"))
		return
	}
	resp, err := h.chat.SubmitChat(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Register godoc
// @Summary Register a teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param payload body service.RegisterTeacherRequest true "Teacher payload"
// @Success 201 {object} response.Envelope
// @Router /teachers [post]
func (h *TeacherHandler) Register(c *gin.Context) {
	var req service.RegisterTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid teacher payload"))
		return
	}
	teacher, err := h.directory.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher)
}

// List godoc
// @Summary List registered teachers
// @Tags Teachers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	teachers, err := h.directory.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers)
}

// Get godoc
// @Summary Get a teacher by TCH identifier
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID (TCH_###)"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *TeacherHandler) Get(c *gin.Context) {
	teacher, err := h.directory.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher)
}

// Submissions godoc
// @Summary List a teacher's submission history
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID (TCH_###)"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/submissions [get]
func (h *TeacherHandler) Submissions(c *gin.Context) {
	views, err := h.directory.Submissions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views)
}

// AIHealth godoc
// @Summary Report generative provider availability
// @Tags Teachers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers/ai/health [get]
func (h *TeacherHandler) AIHealth(c *gin.Context) {
	configured := h.provider != nil && h.provider.Ready()
	status := "fallback"
	if configured {
		status = "ready"
	}
	response.JSON(c, http.StatusOK, gin.H{
		"gemini_configured": configured,
		"model":             h.model,
		"status":            status,
	})
}
