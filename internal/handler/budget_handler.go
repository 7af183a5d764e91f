package handler

import (
	"net/http"

	"procurement-portal/internal/middleware"
	"procurement-portal/internal/service"
	"procurement-portal/pkg/pagination"
	"procurement-portal/pkg/response"

	"github.com/gin-gonic/gin"
)

type BudgetHandler struct {
	budgetService service.BudgetService
}

// NewBudgetHandler sets up the routing dependencies for budget and reference data endpoints
func NewBudgetHandler(budgetService service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *BudgetHandler) RegisterRoutes(router *gin.RouterGroup) {
	budgets := router.Group("/budgets")
	{
		budgets.GET("", middleware.RequirePermission("budgets.read"), h.ListBudgets)
		budgets.POST("", middleware.RequirePermission("budgets.write"), h.CreateBudget)
		budgets.PUT("/:id", middleware.RequirePermission("budgets.write"), h.UpdateBudget)
	}

	programs := router.Group("/programs")
	{
		programs.GET("", middleware.RequirePermission("budgets.read"), h.ListPrograms)
		programs.POST("", middleware.RequirePermission("budgets.write"), h.CreateProgram)
	}

	classifications := router.Group("/classifications")
	{
		classifications.GET("", middleware.RequirePermission("budgets.read"), h.ListClassifications)
		classifications.POST("", middleware.RequirePermission("budgets.write"), h.CreateClassification)
	}

	objects := router.Group("/objects")
	{
		objects.GET("", middleware.RequirePermission("budgets.read"), h.ListObjects)
		objects.POST("", middleware.RequirePermission("budgets.write"), h.CreateObject)
	}
}

// ListBudgets handles GET /budgets
// @Summary      List budgets
// @Description  Retrieves a paginated list of fiscal-year budgets
// @Tags         budgets
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=response.ListData}
// @Failure      500    {object}  response.Response
// @Router       /budgets [get]
func (h *BudgetHandler) ListBudgets(c *gin.Context) {
	params := pagination.Parse(c)

	budgets, total, err := h.budgetService.ListBudgets(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.List(budgets, total, params.Page, params.Limit))
}

// CreateBudget handles POST /budgets
// @Summary      Create budget
// @Description  Creates a fiscal-year budget; each fiscal year can only carry one
// @Tags         budgets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateBudgetInput  true  "Budget payload"
// @Success      201      {object}  response.Response{data=service.BudgetResponse}
// @Failure      400      {object}  response.Response
// @Router       /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	var input service.CreateBudgetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("Invalid request payload: "+err.Error()))
		return
	}

	budget, err := h.budgetService.CreateBudget(c.Request.Context(), c.GetString("userID"), input)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(budget))
}

// UpdateBudget handles PUT /budgets/:id
// @Summary      Update budget
// @Description  Updates a budget's total amount or active flag
// @Tags         budgets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Budget ID"
// @Param        payload  body      service.UpdateBudgetInput  true  "Budget payload"
// @Success      200      {object}  response.Response{data=service.BudgetResponse}
// @Failure      400      {object}  response.Response
// @Router       /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	var input service.UpdateBudgetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("Invalid request payload: "+err.Error()))
		return
	}

	budget, err := h.budgetService.UpdateBudget(c.Request.Context(), c.GetString("userID"), c.Param("id"), input)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(budget))
}

// ListPrograms handles GET /programs
// @Summary      List programs
// @Tags         reference
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.Program}
// @Router       /programs [get]
func (h *BudgetHandler) ListPrograms(c *gin.Context) {
	programs, err := h.budgetService.ListPrograms(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(programs))
}

// CreateProgram handles POST /programs
// @Summary      Create program
// @Tags         reference
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateProgramInput  true  "Program payload"
// @Success      201      {object}  response.Response{data=model.Program}
// @Failure      400      {object}  response.Response
// @Router       /programs [post]
func (h *BudgetHandler) CreateProgram(c *gin.Context) {
	var input service.CreateProgramInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("Invalid request payload: "+err.Error()))
		return
	}

	program, err := h.budgetService.CreateProgram(c.Request.Context(), input)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(program))
}

// ListClassifications handles GET /classifications
// @Summary      List expense classifications
// @Tags         reference
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.Classification}
// @Router       /classifications [get]
func (h *BudgetHandler) ListClassifications(c *gin.Context) {
	classifications, err := h.budgetService.ListClassifications(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(classifications))
}

// CreateClassification handles POST /classifications
// @Summary      Create expense classification
// @Tags         reference
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateClassificationInput  true  "Classification payload"
// @Success      201      {object}  response.Response{data=model.Classification}
// @Failure      400      {object}  response.Response
// @Router       /classifications [post]
func (h *BudgetHandler) CreateClassification(c *gin.Context) {
	var input service.CreateClassificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("Invalid request payload: "+err.Error()))
		return
	}

	classification, err := h.budgetService.CreateClassification(c.Request.Context(), input)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(classification))
}

// ListObjects handles GET /objects with an optional classification filter
// @Summary      List objects of expenditure
// @Tags         reference
// @Produce      json
// @Security     BearerAuth
// @Param        classification_id  query     string  false  "Classification ID filter"
// @Success      200  {object}  response.Response{data=[]model.ObjectOfExpenditure}
// @Router       /objects [get]
func (h *BudgetHandler) ListObjects(c *gin.Context) {
	objects, err := h.budgetService.ListObjects(c.Request.Context(), c.Query("classification_id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(objects))
}

// CreateObject handles POST /objects
// @Summary      Create object of expenditure
// @Tags         reference
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateObjectInput  true  "Object payload"
// @Success      201      {object}  response.Response{data=model.ObjectOfExpenditure}
// @Failure      400      {object}  response.Response
// @Router       /objects [post]
func (h *BudgetHandler) CreateObject(c *gin.Context) {
	var input service.CreateObjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("Invalid request payload: "+err.Error()))
		return
	}

	object, err := h.budgetService.CreateObject(c.Request.Context(), input)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(object))
}
