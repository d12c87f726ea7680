package handler

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/service"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/source/csvfile"
)

// TaskHandler handles upload-task endpoints.
type TaskHandler struct {
	taskService      *service.TaskService
	reconcileService *service.ReconcileService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService *service.TaskService, reconcileService *service.ReconcileService) *TaskHandler {
	return &TaskHandler{
		taskService:      taskService,
		reconcileService: reconcileService,
	}
}

// CreateTask handles POST /api/v1/tasks. The request is a multipart form
// with a "file" CSV part and an optional "created_by" field.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond(c, http.StatusBadRequest, "a CSV file upload is required", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond(c, http.StatusBadRequest, "failed to open uploaded file: "+err.Error(), nil)
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		respond(c, http.StatusBadRequest, "failed to read uploaded file: "+err.Error(), nil)
		return
	}

	listings, err := csvfile.Parse(bytes.NewReader(raw))
	if err != nil {
		respond(c, http.StatusBadRequest, "failed to parse listing file: "+err.Error(), nil)
		return
	}

	createdBy := c.DefaultPostForm("created_by", "api")
	task, err := h.taskService.CreateTask(c.Request.Context(), fileHeader.Filename, createdBy, listings, raw)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "task created", task)
}

// ListTasks handles GET /api/v1/tasks.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	tasks, err := h.taskService.ListTasks(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", tasks)
}

// GetTask handles GET /api/v1/tasks/:id.
func (h *TaskHandler) GetTask(c *gin.Context) {
	detail, err := h.taskService.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", detail)
}

// DeleteTask handles DELETE /api/v1/tasks/:id. Finalized rows descended
// from the task survive the delete.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.taskService.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "task deleted", nil)
}

type assignRequest struct {
	AssigneeID *string `json:"assigneeId"`
}

// AssignTask handles PUT /api/v1/tasks/:id/assign.
func (h *TaskHandler) AssignTask(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}

	task, err := h.taskService.AssignTask(c.Request.Context(), c.Param("id"), req.AssigneeID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "task assigned", task)
}

// Reconcile handles POST /api/v1/tasks/:id/reconcile.
func (h *TaskHandler) Reconcile(c *gin.Context) {
	result, err := h.reconcileService.Reconcile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "reconciliation completed", result)
}

// ListRows handles GET /api/v1/tasks/:id/rows.
func (h *TaskHandler) ListRows(c *gin.Context) {
	rows, err := h.taskService.ListRows(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", rows)
}
