package handler

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"procurement-portal/internal/lifecycle"
	"procurement-portal/internal/middleware"
	"procurement-portal/internal/service"
	"procurement-portal/pkg/pagination"
	"procurement-portal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProcurementHandler struct {
	procurementService service.ProcurementService
	uploadDir          string
}

// NewProcurementHandler sets up the routing dependencies for procurement endpoints
func NewProcurementHandler(procurementService service.ProcurementService) *ProcurementHandler {
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	return &ProcurementHandler{procurementService: procurementService, uploadDir: uploadDir}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ProcurementHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/procurement")
	{
		requests.GET("", middleware.RequirePermission("procurement.read"), h.ListRequests)
		requests.GET("/:id", middleware.RequirePermission("procurement.read"), h.GetRequest)
		requests.GET("/:id/draft", middleware.RequirePermission("procurement.read"), h.GetDraft)
		requests.POST("", middleware.RequirePermission("procurement.write"), h.CreateRequest)
		requests.PUT("/:id", middleware.RequirePermission("procurement.write"), h.UpdateRequest)
		requests.DELETE("/:id", middleware.RequirePermission("procurement.delete"), h.DeleteRequest)

		requests.PATCH("/:id/submit", middleware.RequirePermission("procurement.write"), h.SubmitRequest)
		requests.PATCH("/:id/approve", middleware.RequirePermission("procurement.approve"), h.ApproveRequest)
		requests.PATCH("/:id/reject", middleware.RequirePermission("procurement.approve"), h.RejectRequest)
		requests.PATCH("/:id/purchase", middleware.RequirePermission("procurement.purchase"), h.MarkPurchased)
		requests.PATCH("/:id/complete", middleware.RequirePermission("procurement.complete"), h.CompleteRequest)
		requests.PATCH("/:id/archive", middleware.RequirePermission("procurement.delete"), h.ArchiveRequest)

		requests.POST("/upload-proof", middleware.RequirePermission("procurement.purchase"), h.UploadProof)
	}
}

// writeServiceError maps service-layer failures onto HTTP statuses:
// validation 400, missing row 404, illegal transition 409, failed
// precondition (balance, proofs) 422, anything else 500.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrValidation):
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, response.Error("Procurement request not found"))
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		c.JSON(http.StatusConflict, response.Error(err.Error()))
	case errors.Is(err, lifecycle.ErrPrecondition):
		c.JSON(http.StatusUnprocessableEntity, response.Error(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(err.Error()))
	}
}

// ListRequests handles GET /procurement with status, free-text and pagination filters
// @Summary      List procurement requests
// @Description  Retrieves a paginated list of procurement requests, optionally filtered by status and a free-text query
// @Tags         procurement
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Lifecycle status filter (DRAFT, SUBMITTED, APPROVED, REJECTED, PURCHASED, COMPLETED)"
// @Param        q       query     string  false  "Free-text match on title and description"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.ListData}
// @Failure      400     {object}  response.Response
// @Router       /procurement [get]
func (h *ProcurementHandler) ListRequests(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.RequestFilter{
		Status: c.Query("status"),
		Query:  c.Query("q"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	requests, total, err := h.procurementService.List(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.List(requests, total, params.Page, params.Limit))
}

// GetRequest handles GET /procurement/:id
// @Summary      Get procurement request
// @Description  Fetch a single procurement request with items, approvals and proofs
// @Tags         procurement
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.ProcurementResponse}
// @Failure      404  {object}  response.Response
// @Router       /procurement/{id} [get]
func (h *ProcurementHandler) GetRequest(c *gin.Context) {
	request, err := h.procurementService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(request))
}

// GetDraft handles GET /procurement/:id/draft for the edit form
// @Summary      Get draft for editing
// @Description  Fetch a DRAFT request with its full editable item list; non-drafts are rejected
// @Tags         procurement
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.ProcurementResponse}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /procurement/{id}/draft [get]
func (h *ProcurementHandler) GetDraft(c *gin.Context) {
	request, err := h.procurementService.GetDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(request))
}

// CreateRequest handles POST /procurement
// @Summary      Create procurement request
// @Description  Creates a new DRAFT procurement request; the amount is derived from the item lines
// @Tags         procurement
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRequestInput  true  "Request payload"
// @Success      201      {object}  response.Response{data=service.ProcurementResponse}
// @Failure      400      {object}  response.Response
// @Router       /procurement [post]
func (h *ProcurementHandler) CreateRequest(c *gin.Context) {
	var input service.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("Invalid request payload: "+err.Error()))
		return
	}

	request, err := h.procurementService.Create(c.Request.Context(), c.GetString("userID"), input)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(request))
}

// UpdateRequest handles PUT /procurement/:id while the request is still a draft
// @Summary      Update procurement request
// @Description  Replaces the title, description and item list of a DRAFT request
// @Tags         procurement
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Request ID"
// @Param        payload  body      service.UpdateRequestInput  true  "Request payload"
// @Success      200      {object}  response.Response{data=service.ProcurementResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /procurement/{id} [put]
func (h *ProcurementHandler) UpdateRequest(c *gin.Context) {
	var input service.UpdateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("Invalid request payload: "+err.Error()))
		return
	}

	request, err := h.procurementService.Update(c.Request.Context(), c.GetString("userID"), c.Param("id"), input)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(request))
}

// DeleteRequest handles DELETE /procurement/:id (drafts only)
// @Summary      Delete draft request
// @Description  Permanently deletes a DRAFT request and its items; non-drafts must be archived instead
// @Tags         procurement
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /procurement/{id} [delete]
func (h *ProcurementHandler) DeleteRequest(c *gin.Context) {
	if err := h.procurementService.Delete(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Request deleted successfully"))
}

// ArchiveRequest handles PATCH /procurement/:id/archive
// @Summary      Archive request
// @Description  Soft-deletes a non-draft request so it no longer appears in listings
// @Tags         procurement
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /procurement/{id}/archive [patch]
func (h *ProcurementHandler) ArchiveRequest(c *gin.Context) {
	if err := h.procurementService.Archive(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Request archived successfully"))
}

// SubmitRequest handles PATCH /procurement/:id/submit
// @Summary      Submit request
// @Description  Moves a DRAFT request to SUBMITTED after item and balance checks
// @Tags         procurement
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.ProcurementResponse}
// @Failure      409  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /procurement/{id}/submit [patch]
func (h *ProcurementHandler) SubmitRequest(c *gin.Context) {
	request, err := h.procurementService.Submit(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(request))
}

// ApproveRequest handles PATCH /procurement/:id/approve
// @Summary      Approve request
// @Description  Moves a SUBMITTED request to APPROVED and records the approval
// @Tags         procurement
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true   "Request ID"
// @Param        payload  body      service.ApproveInput false  "Optional remarks"
// @Success      200      {object}  response.Response{data=service.ProcurementResponse}
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /procurement/{id}/approve [patch]
func (h *ProcurementHandler) ApproveRequest(c *gin.Context) {
	var input service.ApproveInput
	// Remarks are optional on approval, so an empty body is fine
	_ = c.ShouldBindJSON(&input)

	request, err := h.procurementService.Approve(c.Request.Context(), c.GetString("userID"), c.Param("id"), input)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(request))
}

// RejectRequest handles PATCH /procurement/:id/reject
// @Summary      Reject request
// @Description  Moves a SUBMITTED request to REJECTED; remarks are mandatory
// @Tags         procurement
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string              true  "Request ID"
// @Param        payload  body      service.RejectInput true  "Rejection remarks"
// @Success      200      {object}  response.Response{data=service.ProcurementResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /procurement/{id}/reject [patch]
func (h *ProcurementHandler) RejectRequest(c *gin.Context) {
	var input service.RejectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("Invalid request payload: "+err.Error()))
		return
	}

	request, err := h.procurementService.Reject(c.Request.Context(), c.GetString("userID"), c.Param("id"), input)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(request))
}

// MarkPurchased handles PATCH /procurement/:id/purchase
// @Summary      Mark request purchased
// @Description  Moves an APPROVED request to PURCHASED once the buy has happened
// @Tags         procurement
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.ProcurementResponse}
// @Failure      409  {object}  response.Response
// @Router       /procurement/{id}/purchase [patch]
func (h *ProcurementHandler) MarkPurchased(c *gin.Context) {
	request, err := h.procurementService.MarkPurchased(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(request))
}

// CompleteRequest handles PATCH /procurement/:id/complete
// @Summary      Complete request
// @Description  Moves a PURCHASED request to COMPLETED and books the amount against the allocation
// @Tags         procurement
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.ProcurementResponse}
// @Failure      409  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /procurement/{id}/complete [patch]
func (h *ProcurementHandler) CompleteRequest(c *gin.Context) {
	request, err := h.procurementService.Complete(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(request))
}

// UploadProof handles POST /procurement/upload-proof (multipart form)
// @Summary      Upload proof of purchase
// @Description  Stores a proof file (official receipt, delivery receipt or invoice) against a PURCHASED request
// @Tags         procurement
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        request_id   formData  string  true   "Request ID"
// @Param        type         formData  string  true   "Proof type (OFFICIAL_RECEIPT, DELIVERY_RECEIPT, INVOICE)"
// @Param        description  formData  string  false  "Optional description"
// @Param        file         formData  file    true   "Proof file"
// @Success      200  {object}  response.Response{data=service.ProcurementResponse}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /procurement/upload-proof [post]
func (h *ProcurementHandler) UploadProof(c *gin.Context) {
	requestID := c.PostForm("request_id")
	if requestID == "" {
		c.JSON(http.StatusBadRequest, response.Error("request_id is required"))
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error("A proof file is required"))
		return
	}

	// Stored name is randomized; the original name survives in the proof record
	dir := filepath.Join(h.uploadDir, "proofs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error("Failed to prepare upload directory"))
		return
	}
	storedPath := filepath.Join(dir, uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error("Failed to store proof file"))
		return
	}

	input := service.ProofInput{
		Type:        c.PostForm("type"),
		FilePath:    storedPath,
		FileName:    file.Filename,
		Description: c.PostForm("description"),
	}

	request, err := h.procurementService.UploadProof(c.Request.Context(), c.GetString("userID"), requestID, input)
	if err != nil {
		// The transition was refused, so the stored file is orphaned
		_ = os.Remove(storedPath)
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(request))
}
