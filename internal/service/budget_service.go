package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"procurement-portal/internal/lifecycle"
	"procurement-portal/internal/model"
	"procurement-portal/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateBudgetInput struct {
	FiscalYear  int    `json:"fiscal_year" binding:"required"`
	TotalAmount string `json:"total_amount" binding:"required"` // Decimal string
	Description string `json:"description"`
}

type UpdateBudgetInput struct {
	TotalAmount string `json:"total_amount" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type BudgetResponse struct {
	ID          string `json:"id"`
	FiscalYear  int    `json:"fiscal_year"`
	TotalAmount string `json:"total_amount"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
}

type CreateProgramInput struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CreateClassificationInput struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type CreateObjectInput struct {
	Code             string `json:"code" binding:"required"`
	Name             string `json:"name" binding:"required"`
	ClassificationID string `json:"classification_id" binding:"required"`
}

// --- Interface ---

// BudgetService covers the annual budgets plus the reference entities
// allocations are classified by (programs, classifications, objects).
type BudgetService interface {
	CreateBudget(ctx context.Context, userID string, input CreateBudgetInput) (BudgetResponse, error)
	ListBudgets(ctx context.Context, page, limit int) ([]BudgetResponse, int64, error)
	UpdateBudget(ctx context.Context, userID, id string, input UpdateBudgetInput) (BudgetResponse, error)

	CreateProgram(ctx context.Context, input CreateProgramInput) (*model.Program, error)
	ListPrograms(ctx context.Context) ([]model.Program, error)

	CreateClassification(ctx context.Context, input CreateClassificationInput) (*model.Classification, error)
	ListClassifications(ctx context.Context) ([]model.Classification, error)

	CreateObject(ctx context.Context, input CreateObjectInput) (*model.ObjectOfExpenditure, error)
	ListObjects(ctx context.Context, classificationID string) ([]model.ObjectOfExpenditure, error)
}

type budgetService struct {
	budgetRepo repository.BudgetRepository
	refRepo    repository.ReferenceRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
}

func NewBudgetService(
	budgetRepo repository.BudgetRepository,
	refRepo repository.ReferenceRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) BudgetService {
	return &budgetService{
		budgetRepo: budgetRepo,
		refRepo:    refRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
	}
}

// --- Implementation ---

func (s *budgetService) CreateBudget(ctx context.Context, userID string, input CreateBudgetInput) (BudgetResponse, error) {
	if input.FiscalYear < 2000 || input.FiscalYear > 2100 {
		return BudgetResponse{}, fmt.Errorf("%w: fiscal_year out of range", lifecycle.ErrValidation)
	}

	amount, err := decimal.NewFromString(input.TotalAmount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return BudgetResponse{}, fmt.Errorf("%w: total_amount must be a positive decimal", lifecycle.ErrValidation)
	}

	if _, err := s.budgetRepo.FindByFiscalYear(ctx, input.FiscalYear); err == nil {
		return BudgetResponse{}, fmt.Errorf("%w: a budget for fiscal year %d already exists", lifecycle.ErrValidation, input.FiscalYear)
	}

	budget := model.Budget{
		FiscalYear:  input.FiscalYear,
		TotalAmount: amount,
		Description: input.Description,
		IsActive:    true,
	}

	actorID := parseOptionalUUID(userID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.budgetRepo.Create(txCtx, &budget); createErr != nil {
			return fmt.Errorf("failed to create budget: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"fiscal_year":  input.FiscalYear,
			"total_amount": amount.StringFixed(4),
		})
		audit := &model.AuditLog{
			UserID:   actorID,
			Action:   model.ActionCreateBudget,
			EntityID: budget.ID.String(),
			Details:  string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})

	if err != nil {
		return BudgetResponse{}, err
	}

	return toBudgetResponse(&budget), nil
}

func (s *budgetService) ListBudgets(ctx context.Context, page, limit int) ([]BudgetResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	budgets, total, err := s.budgetRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch budgets: %w", err)
	}

	result := make([]BudgetResponse, 0, len(budgets))
	for i := range budgets {
		result = append(result, toBudgetResponse(&budgets[i]))
	}
	return result, total, nil
}

func (s *budgetService) UpdateBudget(ctx context.Context, userID, id string, input UpdateBudgetInput) (BudgetResponse, error) {
	budgetID, err := uuid.Parse(id)
	if err != nil {
		return BudgetResponse{}, fmt.Errorf("%w: invalid budget id", lifecycle.ErrValidation)
	}

	amount, err := decimal.NewFromString(input.TotalAmount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return BudgetResponse{}, fmt.Errorf("%w: total_amount must be a positive decimal", lifecycle.ErrValidation)
	}

	budget, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return BudgetResponse{}, fmt.Errorf("budget not found: %w", err)
	}

	budget.TotalAmount = amount
	budget.Description = input.Description
	if input.IsActive != nil {
		budget.IsActive = *input.IsActive
	}

	actorID := parseOptionalUUID(userID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if saveErr := s.budgetRepo.Update(txCtx, budget); saveErr != nil {
			return fmt.Errorf("failed to update budget: %w", saveErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"total_amount": amount.StringFixed(4),
		})
		audit := &model.AuditLog{
			UserID:   actorID,
			Action:   model.ActionUpdateBudget,
			EntityID: budget.ID.String(),
			Details:  string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})

	if err != nil {
		return BudgetResponse{}, err
	}

	return toBudgetResponse(budget), nil
}

func (s *budgetService) CreateProgram(ctx context.Context, input CreateProgramInput) (*model.Program, error) {
	program := &model.Program{
		Code:        input.Code,
		Name:        input.Name,
		Description: input.Description,
		IsActive:    true,
	}
	if err := s.refRepo.CreateProgram(ctx, program); err != nil {
		return nil, fmt.Errorf("failed to create program: %w", err)
	}
	return program, nil
}

func (s *budgetService) ListPrograms(ctx context.Context) ([]model.Program, error) {
	return s.refRepo.ListPrograms(ctx)
}

func (s *budgetService) CreateClassification(ctx context.Context, input CreateClassificationInput) (*model.Classification, error) {
	classification := &model.Classification{
		Code:     input.Code,
		Name:     input.Name,
		IsActive: true,
	}
	if err := s.refRepo.CreateClassification(ctx, classification); err != nil {
		return nil, fmt.Errorf("failed to create classification: %w", err)
	}
	return classification, nil
}

func (s *budgetService) ListClassifications(ctx context.Context) ([]model.Classification, error) {
	return s.refRepo.ListClassifications(ctx)
}

func (s *budgetService) CreateObject(ctx context.Context, input CreateObjectInput) (*model.ObjectOfExpenditure, error) {
	classificationID, err := uuid.Parse(input.ClassificationID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid classification_id", lifecycle.ErrValidation)
	}

	object := &model.ObjectOfExpenditure{
		Code:             input.Code,
		Name:             input.Name,
		ClassificationID: classificationID,
		IsActive:         true,
	}
	if err := s.refRepo.CreateObject(ctx, object); err != nil {
		return nil, fmt.Errorf("failed to create object of expenditure: %w", err)
	}
	return object, nil
}

func (s *budgetService) ListObjects(ctx context.Context, classificationID string) ([]model.ObjectOfExpenditure, error) {
	classificationUUID := uuid.Nil
	if classificationID != "" {
		parsed, err := uuid.Parse(classificationID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid classification_id filter", lifecycle.ErrValidation)
		}
		classificationUUID = parsed
	}
	return s.refRepo.ListObjects(ctx, classificationUUID)
}

// --- Helpers ---

func toBudgetResponse(b *model.Budget) BudgetResponse {
	return BudgetResponse{
		ID:          b.ID.String(),
		FiscalYear:  b.FiscalYear,
		TotalAmount: b.TotalAmount.StringFixed(4),
		Description: b.Description,
		IsActive:    b.IsActive,
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
	}
}
