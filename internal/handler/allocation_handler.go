package handler

import (
	"net/http"

	"procurement-portal/internal/middleware"
	"procurement-portal/internal/service"
	"procurement-portal/pkg/pagination"
	"procurement-portal/pkg/response"

	"github.com/gin-gonic/gin"
)

type AllocationHandler struct {
	allocationService service.AllocationService
}

// NewAllocationHandler sets up the routing dependencies for allocation endpoints
func NewAllocationHandler(allocationService service.AllocationService) *AllocationHandler {
	return &AllocationHandler{allocationService: allocationService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AllocationHandler) RegisterRoutes(router *gin.RouterGroup) {
	allocations := router.Group("/allocations")
	{
		allocations.GET("", middleware.RequirePermission("allocations.read"), h.ListAllocations)
		allocations.GET("/:id", middleware.RequirePermission("allocations.read"), h.GetAllocation)
		allocations.POST("", middleware.RequirePermission("allocations.write"), h.CreateAllocation)
		allocations.PUT("/:id", middleware.RequirePermission("allocations.write"), h.UpdateAllocation)
		allocations.DELETE("/:id", middleware.RequirePermission("allocations.write"), h.DeleteAllocation)
	}
}

// ListAllocations handles GET /allocations with budget/program filters
// @Summary      List budget allocations
// @Description  Retrieves a paginated list of allocations, optionally filtered by budget and program
// @Tags         allocations
// @Produce      json
// @Security     BearerAuth
// @Param        budget_id   query     string  false  "Budget ID filter"
// @Param        program_id  query     string  false  "Program ID filter"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Success      200         {object}  response.Response{data=response.ListData}
// @Failure      500         {object}  response.Response
// @Router       /allocations [get]
func (h *AllocationHandler) ListAllocations(c *gin.Context) {
	params := pagination.Parse(c)

	allocations, total, err := h.allocationService.List(c.Request.Context(),
		c.Query("budget_id"), c.Query("program_id"), params.Page, params.Limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.List(allocations, total, params.Page, params.Limit))
}

// GetAllocation handles GET /allocations/:id
// @Summary      Get allocation
// @Description  Fetch a single allocation with its remaining balance
// @Tags         allocations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Allocation ID"
// @Success      200  {object}  response.Response{data=service.AllocationResponse}
// @Failure      404  {object}  response.Response
// @Router       /allocations/{id} [get]
func (h *AllocationHandler) GetAllocation(c *gin.Context) {
	allocation, err := h.allocationService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(allocation))
}

// CreateAllocation handles POST /allocations
// @Summary      Create allocation
// @Description  Creates an allocation of budget funds for a program and object of expenditure
// @Tags         allocations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateAllocationInput  true  "Allocation payload"
// @Success      201      {object}  response.Response{data=service.AllocationResponse}
// @Failure      400      {object}  response.Response
// @Router       /allocations [post]
func (h *AllocationHandler) CreateAllocation(c *gin.Context) {
	var input service.CreateAllocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("Invalid request payload: "+err.Error()))
		return
	}

	allocation, err := h.allocationService.Create(c.Request.Context(), c.GetString("userID"), input)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(allocation))
}

// UpdateAllocation handles PUT /allocations/:id
// @Summary      Update allocation
// @Description  Updates the allocated amount; it cannot shrink below what requests already consumed
// @Tags         allocations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Allocation ID"
// @Param        payload  body      service.UpdateAllocationInput  true  "Allocation payload"
// @Success      200      {object}  response.Response{data=service.AllocationResponse}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /allocations/{id} [put]
func (h *AllocationHandler) UpdateAllocation(c *gin.Context) {
	var input service.UpdateAllocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("Invalid request payload: "+err.Error()))
		return
	}

	allocation, err := h.allocationService.Update(c.Request.Context(), c.GetString("userID"), c.Param("id"), input)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(allocation))
}

// DeleteAllocation handles DELETE /allocations/:id
// @Summary      Delete allocation
// @Description  Soft-deletes an allocation; refused while procurement requests still reference it
// @Tags         allocations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Allocation ID"
// @Success      200  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /allocations/{id} [delete]
func (h *AllocationHandler) DeleteAllocation(c *gin.Context) {
	if err := h.allocationService.Delete(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Allocation deleted successfully"))
}
