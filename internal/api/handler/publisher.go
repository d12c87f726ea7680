package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/service"
)

// PublisherHandler handles publisher-directory endpoints.
type PublisherHandler struct {
	publisherService *service.PublisherService
}

// NewPublisherHandler creates a new publisher handler.
func NewPublisherHandler(publisherService *service.PublisherService) *PublisherHandler {
	return &PublisherHandler{publisherService: publisherService}
}

type registerPublisherRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
}

// Register handles POST /api/v1/publishers. Registering an email that
// already exists refreshes the stored name.
func (h *PublisherHandler) Register(c *gin.Context) {
	var req registerPublisherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}

	pub, err := h.publisherService.RegisterPublisher(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "publisher registered", pub)
}

// List handles GET /api/v1/publishers.
func (h *PublisherHandler) List(c *gin.Context) {
	pubs, err := h.publisherService.ListPublishers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", pubs)
}
