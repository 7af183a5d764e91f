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

type CreateAllocationInput struct {
	BudgetID        string `json:"budget_id" binding:"required"`
	ProgramID       string `json:"program_id" binding:"required"`
	ObjectID        string `json:"object_id" binding:"required"`
	AllocatedAmount string `json:"allocated_amount" binding:"required"` // Decimal string
}

type UpdateAllocationInput struct {
	AllocatedAmount string `json:"allocated_amount" binding:"required"`
}

type AllocationResponse struct {
	ID              string `json:"id"`
	BudgetID        string `json:"budget_id"`
	FiscalYear      int    `json:"fiscal_year,omitempty"`
	ProgramName     string `json:"program_name,omitempty"`
	ObjectName      string `json:"object_name,omitempty"`
	Classification  string `json:"classification,omitempty"`
	AllocatedAmount string `json:"allocated_amount"`
	UsedAmount      string `json:"used_amount"`
	Remaining       string `json:"remaining"`
	CreatedAt       string `json:"created_at"`
}

// --- Interface ---

type AllocationService interface {
	Create(ctx context.Context, userID string, input CreateAllocationInput) (AllocationResponse, error)
	Get(ctx context.Context, id string) (AllocationResponse, error)
	List(ctx context.Context, budgetID, programID string, page, limit int) ([]AllocationResponse, int64, error)
	Update(ctx context.Context, userID, id string, input UpdateAllocationInput) (AllocationResponse, error)
	Delete(ctx context.Context, userID, id string) error
}

type allocationService struct {
	allocRepo   repository.AllocationRepository
	budgetRepo  repository.BudgetRepository
	refRepo     repository.ReferenceRepository
	requestRepo repository.ProcurementRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewAllocationService(
	allocRepo repository.AllocationRepository,
	budgetRepo repository.BudgetRepository,
	refRepo repository.ReferenceRepository,
	requestRepo repository.ProcurementRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) AllocationService {
	return &allocationService{
		allocRepo:   allocRepo,
		budgetRepo:  budgetRepo,
		refRepo:     refRepo,
		requestRepo: requestRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

func (s *allocationService) Create(ctx context.Context, userID string, input CreateAllocationInput) (AllocationResponse, error) {
	budgetID, err := uuid.Parse(input.BudgetID)
	if err != nil {
		return AllocationResponse{}, fmt.Errorf("%w: invalid budget_id", lifecycle.ErrValidation)
	}
	programID, err := uuid.Parse(input.ProgramID)
	if err != nil {
		return AllocationResponse{}, fmt.Errorf("%w: invalid program_id", lifecycle.ErrValidation)
	}
	objectID, err := uuid.Parse(input.ObjectID)
	if err != nil {
		return AllocationResponse{}, fmt.Errorf("%w: invalid object_id", lifecycle.ErrValidation)
	}

	amount, err := decimal.NewFromString(input.AllocatedAmount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return AllocationResponse{}, fmt.Errorf("%w: allocated_amount must be a positive decimal", lifecycle.ErrValidation)
	}

	alloc := model.BudgetAllocation{
		BudgetID:        budgetID,
		ProgramID:       programID,
		ObjectID:        objectID,
		AllocatedAmount: amount,
		UsedAmount:      decimal.Zero,
	}

	actorID := parseOptionalUUID(userID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, findErr := s.budgetRepo.FindByID(txCtx, budgetID); findErr != nil {
			return fmt.Errorf("%w: budget not found", lifecycle.ErrValidation)
		}
		if _, findErr := s.refRepo.FindProgramByID(txCtx, programID); findErr != nil {
			return fmt.Errorf("%w: program not found", lifecycle.ErrValidation)
		}
		if _, findErr := s.refRepo.FindObjectByID(txCtx, objectID); findErr != nil {
			return fmt.Errorf("%w: object of expenditure not found", lifecycle.ErrValidation)
		}

		if createErr := s.allocRepo.Create(txCtx, &alloc); createErr != nil {
			return fmt.Errorf("failed to create allocation: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"budget_id":        budgetID.String(),
			"program_id":       programID.String(),
			"allocated_amount": amount.StringFixed(4),
		})
		audit := &model.AuditLog{
			UserID:   actorID,
			Action:   model.ActionCreateAllocation,
			EntityID: alloc.ID.String(),
			Details:  string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})

	if err != nil {
		return AllocationResponse{}, err
	}

	return s.Get(ctx, alloc.ID.String())
}

func (s *allocationService) Get(ctx context.Context, id string) (AllocationResponse, error) {
	allocID, err := uuid.Parse(id)
	if err != nil {
		return AllocationResponse{}, fmt.Errorf("%w: invalid allocation id", lifecycle.ErrValidation)
	}

	alloc, err := s.allocRepo.FindByIDWithRelations(ctx, allocID)
	if err != nil {
		return AllocationResponse{}, fmt.Errorf("allocation not found: %w", err)
	}
	return toAllocationResponse(alloc), nil
}

func (s *allocationService) List(ctx context.Context, budgetID, programID string, page, limit int) ([]AllocationResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	budgetUUID := uuid.Nil
	if budgetID != "" {
		parsed, err := uuid.Parse(budgetID)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid budget_id filter", lifecycle.ErrValidation)
		}
		budgetUUID = parsed
	}
	programUUID := uuid.Nil
	if programID != "" {
		parsed, err := uuid.Parse(programID)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid program_id filter", lifecycle.ErrValidation)
		}
		programUUID = parsed
	}

	allocations, total, err := s.allocRepo.List(ctx, budgetUUID, programUUID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch allocations: %w", err)
	}

	result := make([]AllocationResponse, 0, len(allocations))
	for i := range allocations {
		result = append(result, toAllocationResponse(&allocations[i]))
	}
	return result, total, nil
}

func (s *allocationService) Update(ctx context.Context, userID, id string, input UpdateAllocationInput) (AllocationResponse, error) {
	allocID, err := uuid.Parse(id)
	if err != nil {
		return AllocationResponse{}, fmt.Errorf("%w: invalid allocation id", lifecycle.ErrValidation)
	}

	amount, err := decimal.NewFromString(input.AllocatedAmount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return AllocationResponse{}, fmt.Errorf("%w: allocated_amount must be a positive decimal", lifecycle.ErrValidation)
	}

	actorID := parseOptionalUUID(userID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		alloc, findErr := s.allocRepo.FindByIDForUpdate(txCtx, allocID)
		if findErr != nil {
			return fmt.Errorf("allocation not found: %w", findErr)
		}

		// The envelope can never shrink below what is already consumed
		if amount.LessThan(alloc.UsedAmount) {
			return fmt.Errorf("%w: allocated_amount %s is below the consumed amount %s",
				lifecycle.ErrPrecondition, amount.StringFixed(4), alloc.UsedAmount.StringFixed(4))
		}

		alloc.AllocatedAmount = amount
		if saveErr := s.allocRepo.Update(txCtx, alloc); saveErr != nil {
			return fmt.Errorf("failed to update allocation: %w", saveErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"allocated_amount": amount.StringFixed(4),
		})
		audit := &model.AuditLog{
			UserID:   actorID,
			Action:   model.ActionUpdateAllocation,
			EntityID: alloc.ID.String(),
			Details:  string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})

	if err != nil {
		return AllocationResponse{}, err
	}

	return s.Get(ctx, id)
}

func (s *allocationService) Delete(ctx context.Context, userID, id string) error {
	allocID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid allocation id", lifecycle.ErrValidation)
	}

	actorID := parseOptionalUUID(userID)

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		alloc, findErr := s.allocRepo.FindByIDForUpdate(txCtx, allocID)
		if findErr != nil {
			return fmt.Errorf("allocation not found: %w", findErr)
		}

		count, countErr := s.requestRepo.CountActiveByAllocation(txCtx, allocID)
		if countErr != nil {
			return fmt.Errorf("failed to count linked requests: %w", countErr)
		}
		if count > 0 {
			return fmt.Errorf("%w: %d procurement requests still reference this allocation", lifecycle.ErrPrecondition, count)
		}

		if delErr := s.allocRepo.Delete(txCtx, alloc.ID); delErr != nil {
			return fmt.Errorf("failed to delete allocation: %w", delErr)
		}

		audit := &model.AuditLog{
			UserID:   actorID,
			Action:   model.ActionDeleteAllocation,
			EntityID: alloc.ID.String(),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
}

// --- Helpers ---

func toAllocationResponse(a *model.BudgetAllocation) AllocationResponse {
	resp := AllocationResponse{
		ID:              a.ID.String(),
		BudgetID:        a.BudgetID.String(),
		AllocatedAmount: a.AllocatedAmount.StringFixed(4),
		UsedAmount:      a.UsedAmount.StringFixed(4),
		Remaining:       a.Remaining().StringFixed(4),
		CreatedAt:       a.CreatedAt.Format(time.RFC3339),
	}
	if a.Budget != nil {
		resp.FiscalYear = a.Budget.FiscalYear
	}
	if a.Program != nil {
		resp.ProgramName = a.Program.Name
	}
	if a.Object != nil {
		resp.ObjectName = a.Object.Name
		if a.Object.Classification != nil {
			resp.Classification = a.Object.Classification.Name
		}
	}
	return resp
}
