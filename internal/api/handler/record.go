package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/service"
)

// RecordHandler handles per-row endpoints for in-process and final records.
type RecordHandler struct {
	taskService      *service.TaskService
	publisherService *service.PublisherService
}

// NewRecordHandler creates a new record handler.
func NewRecordHandler(taskService *service.TaskService, publisherService *service.PublisherService) *RecordHandler {
	return &RecordHandler{
		taskService:      taskService,
		publisherService: publisherService,
	}
}

type publisherRequest struct {
	PublisherName  string `json:"publisherName"`
	PublisherEmail string `json:"publisherEmail"`
}

// UpdateInProcessPublisher handles PUT /data-in-process/:id/publisher.
func (h *RecordHandler) UpdateInProcessPublisher(c *gin.Context) {
	var req publisherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}

	row, match, err := h.publisherService.MatchInProcess(c.Request.Context(), c.Param("id"), req.PublisherName, req.PublisherEmail)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "publisher details saved", gin.H{
		"record":      row,
		"matched":     match.Matched,
		"publisherId": match.PublisherID,
	})
}

// UpdateFinalPublisher handles PUT /data-final/:id/publisher.
func (h *RecordHandler) UpdateFinalPublisher(c *gin.Context) {
	var req publisherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}

	final, match, err := h.publisherService.MatchFinal(c.Request.Context(), c.Param("id"), req.PublisherName, req.PublisherEmail)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "publisher details saved", gin.H{
		"record":      final,
		"matched":     match.Matched,
		"publisherId": match.PublisherID,
	})
}

// FinalizeRow handles POST /api/v1/data-in-process/:id/finalize.
func (h *RecordHandler) FinalizeRow(c *gin.Context) {
	final, err := h.taskService.FinalizeRow(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "row finalized", final)
}

// DiscardRow handles DELETE /api/v1/data-in-process/:id.
func (h *RecordHandler) DiscardRow(c *gin.Context) {
	if err := h.taskService.DiscardRow(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "row discarded", nil)
}

// ListFinal handles GET /api/v1/data-final.
func (h *RecordHandler) ListFinal(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	finals, err := h.taskService.ListFinals(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", finals)
}
