package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"procurement-portal/internal/lifecycle"
	"procurement-portal/internal/model"
	"procurement-portal/internal/repository"
	ws "procurement-portal/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type ProcurementItemInput struct {
	Name     string `json:"name" binding:"required"`
	Unit     string `json:"unit" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
	UnitCost string `json:"unit_cost" binding:"required"` // Decimal string
}

type CreateRequestInput struct {
	Title        string                 `json:"title" binding:"required"`
	Description  string                 `json:"description"`
	AllocationID string                 `json:"allocation_id" binding:"required"`
	Items        []ProcurementItemInput `json:"items" binding:"required"`
}

type UpdateRequestInput struct {
	Title       string                 `json:"title" binding:"required"`
	Description string                 `json:"description"`
	Items       []ProcurementItemInput `json:"items" binding:"required"`
}

type RejectInput struct {
	Remarks string `json:"remarks"`
}

type ApproveInput struct {
	Remarks string `json:"remarks"`
}

type ProofInput struct {
	Type        string
	FilePath    string
	FileName    string
	Description string
}

type RequestFilter struct {
	Status string // lifecycle status or empty for all
	Query  string // free-text match on title/description
	Page   int
	Limit  int
}

type ProcurementItemResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	Quantity  int    `json:"quantity"`
	UnitCost  string `json:"unit_cost"`
	LineTotal string `json:"line_total"`
}

type ApprovalResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Remarks      string `json:"remarks"`
	ApproverName string `json:"approver_name"`
	CreatedAt    string `json:"created_at"`
}

type ProofResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	FileName    string `json:"file_name"`
	FilePath    string `json:"file_path"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

type ProcurementResponse struct {
	ID                  string                    `json:"id"`
	Title               string                    `json:"title"`
	Description         string                    `json:"description"`
	Status              string                    `json:"status"`
	Amount              string                    `json:"amount"`
	AllocationID        string                    `json:"allocation_id"`
	AllocationRemaining *string                   `json:"allocation_remaining,omitempty"` // balance hint for the caller
	RequesterName       string                    `json:"requester_name,omitempty"`
	Items               []ProcurementItemResponse `json:"items"`
	Approvals           []ApprovalResponse        `json:"approvals,omitempty"`
	Proofs              []ProofResponse           `json:"proofs,omitempty"`
	AllowedActions      []lifecycle.Action        `json:"allowed_actions"`
	SubmittedAt         *string                   `json:"submitted_at"`
	PurchasedAt         *string                   `json:"purchased_at"`
	CompletedAt         *string                   `json:"completed_at"`
	CreatedAt           string                    `json:"created_at"`
	UpdatedAt           string                    `json:"updated_at"`
}

// StatusEvent is the payload broadcast to websocket clients on every transition
type StatusEvent struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id"`
	Title     string `json:"title"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// --- Interface ---

type ProcurementService interface {
	Create(ctx context.Context, userID string, input CreateRequestInput) (ProcurementResponse, error)
	Update(ctx context.Context, userID, id string, input UpdateRequestInput) (ProcurementResponse, error)
	Get(ctx context.Context, id string) (ProcurementResponse, error)
	GetDraft(ctx context.Context, id string) (ProcurementResponse, error)
	List(ctx context.Context, filter RequestFilter) ([]ProcurementResponse, int64, error)
	Submit(ctx context.Context, userID, id string) (ProcurementResponse, error)
	Approve(ctx context.Context, userID, id string, input ApproveInput) (ProcurementResponse, error)
	Reject(ctx context.Context, userID, id string, input RejectInput) (ProcurementResponse, error)
	MarkPurchased(ctx context.Context, userID, id string) (ProcurementResponse, error)
	UploadProof(ctx context.Context, userID, id string, input ProofInput) (ProcurementResponse, error)
	Complete(ctx context.Context, userID, id string) (ProcurementResponse, error)
	Delete(ctx context.Context, userID, id string) error
	Archive(ctx context.Context, userID, id string) error
}

type procurementService struct {
	requestRepo  repository.ProcurementRepository
	allocRepo    repository.AllocationRepository
	approvalRepo repository.ApprovalRepository
	proofRepo    repository.ProofRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewProcurementService(
	requestRepo repository.ProcurementRepository,
	allocRepo repository.AllocationRepository,
	approvalRepo repository.ApprovalRepository,
	proofRepo repository.ProofRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) ProcurementService {
	return &procurementService{
		requestRepo:  requestRepo,
		allocRepo:    allocRepo,
		approvalRepo: approvalRepo,
		proofRepo:    proofRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// --- Item validation and amount derivation ---

// buildItems validates item inputs and computes line totals plus the request
// amount. Fails with a wrapped lifecycle.ErrValidation on the first bad item.
func buildItems(inputs []ProcurementItemInput) ([]model.ProcurementItem, decimal.Decimal, error) {
	if len(inputs) == 0 {
		return nil, decimal.Zero, fmt.Errorf("%w: at least one item is required", lifecycle.ErrValidation)
	}

	items := make([]model.ProcurementItem, 0, len(inputs))
	amount := decimal.Zero

	for i, in := range inputs {
		if strings.TrimSpace(in.Name) == "" {
			return nil, decimal.Zero, fmt.Errorf("%w: item %d has an empty name", lifecycle.ErrValidation, i+1)
		}
		if strings.TrimSpace(in.Unit) == "" {
			return nil, decimal.Zero, fmt.Errorf("%w: item %d has an empty unit", lifecycle.ErrValidation, i+1)
		}
		if in.Quantity <= 0 {
			return nil, decimal.Zero, fmt.Errorf("%w: item %d quantity must be positive", lifecycle.ErrValidation, i+1)
		}

		unitCost, err := decimal.NewFromString(in.UnitCost)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("%w: item %d has an invalid unit_cost: %v", lifecycle.ErrValidation, i+1, err)
		}
		if unitCost.LessThanOrEqual(decimal.Zero) {
			return nil, decimal.Zero, fmt.Errorf("%w: item %d unit_cost must be positive", lifecycle.ErrValidation, i+1)
		}

		lineTotal := unitCost.Mul(decimal.NewFromInt(int64(in.Quantity)))
		amount = amount.Add(lineTotal)

		items = append(items, model.ProcurementItem{
			Name:      strings.TrimSpace(in.Name),
			Unit:      strings.TrimSpace(in.Unit),
			Quantity:  in.Quantity,
			UnitCost:  unitCost,
			LineTotal: lineTotal,
		})
	}

	return items, amount, nil
}

// --- Implementation ---

func (s *procurementService) Create(ctx context.Context, userID string, input CreateRequestInput) (ProcurementResponse, error) {
	if strings.TrimSpace(input.Title) == "" {
		return ProcurementResponse{}, fmt.Errorf("%w: title is required", lifecycle.ErrValidation)
	}

	allocationID, err := uuid.Parse(input.AllocationID)
	if err != nil {
		return ProcurementResponse{}, fmt.Errorf("%w: invalid allocation_id", lifecycle.ErrValidation)
	}

	items, amount, err := buildItems(input.Items)
	if err != nil {
		return ProcurementResponse{}, err
	}

	requesterID := parseOptionalUUID(userID)

	request := model.ProcurementRequest{
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		Status:       model.StatusDraft,
		Amount:       amount,
		AllocationID: allocationID,
		RequestedBy:  requesterID,
		Items:        items,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, findErr := s.allocRepo.FindByID(txCtx, allocationID); findErr != nil {
			return fmt.Errorf("%w: allocation not found", lifecycle.ErrValidation)
		}

		if createErr := s.requestRepo.Create(txCtx, &request); createErr != nil {
			return fmt.Errorf("failed to create procurement request: %w", createErr)
		}

		return s.writeAudit(txCtx, requesterID, model.ActionCreateRequest, request.ID.String(), request.Title, map[string]interface{}{
			"amount":        amount.StringFixed(4),
			"allocation_id": allocationID.String(),
			"items":         len(items),
		})
	})

	if err != nil {
		return ProcurementResponse{}, err
	}

	return s.reload(ctx, request.ID)
}

func (s *procurementService) Update(ctx context.Context, userID, id string, input UpdateRequestInput) (ProcurementResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return ProcurementResponse{}, fmt.Errorf("%w: invalid request id", lifecycle.ErrValidation)
	}

	if strings.TrimSpace(input.Title) == "" {
		return ProcurementResponse{}, fmt.Errorf("%w: title is required", lifecycle.ErrValidation)
	}

	items, amount, err := buildItems(input.Items)
	if err != nil {
		return ProcurementResponse{}, err
	}

	actorID := parseOptionalUUID(userID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, findErr := s.requestRepo.FindByIDForUpdate(txCtx, requestID)
		if findErr != nil {
			return fmt.Errorf("procurement request not found: %w", findErr)
		}

		if !lifecycle.Editable(request.Status) {
			return fmt.Errorf("%w: cannot edit a %s request", lifecycle.ErrInvalidTransition, request.Status)
		}

		for i := range items {
			items[i].RequestID = request.ID
		}
		if replaceErr := s.requestRepo.ReplaceItems(txCtx, request.ID, items); replaceErr != nil {
			return fmt.Errorf("failed to replace items: %w", replaceErr)
		}

		request.Title = strings.TrimSpace(input.Title)
		request.Description = input.Description
		request.Amount = amount
		request.Items = nil // items already persisted above
		if saveErr := s.requestRepo.Update(txCtx, request); saveErr != nil {
			return fmt.Errorf("failed to update procurement request: %w", saveErr)
		}

		return s.writeAudit(txCtx, actorID, model.ActionUpdateRequest, request.ID.String(), request.Title, map[string]interface{}{
			"amount": amount.StringFixed(4),
			"items":  len(items),
		})
	})

	if err != nil {
		return ProcurementResponse{}, err
	}

	return s.reload(ctx, requestID)
}

func (s *procurementService) Get(ctx context.Context, id string) (ProcurementResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return ProcurementResponse{}, fmt.Errorf("%w: invalid request id", lifecycle.ErrValidation)
	}
	return s.reload(ctx, requestID)
}

// GetDraft loads the full editable item list of a DRAFT request
func (s *procurementService) GetDraft(ctx context.Context, id string) (ProcurementResponse, error) {
	resp, err := s.Get(ctx, id)
	if err != nil {
		return ProcurementResponse{}, err
	}
	if resp.Status != model.StatusDraft {
		return ProcurementResponse{}, fmt.Errorf("%w: request is %s, not a draft", lifecycle.ErrInvalidTransition, resp.Status)
	}
	return resp, nil
}

func (s *procurementService) List(ctx context.Context, filter RequestFilter) ([]ProcurementResponse, int64, error) {
	if filter.Status != "" && !lifecycle.ValidStatus(filter.Status) {
		return nil, 0, fmt.Errorf("%w: unknown status %q", lifecycle.ErrValidation, filter.Status)
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	requests, total, err := s.requestRepo.Search(ctx, filter.Status, filter.Query, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch procurement requests: %w", err)
	}

	result := make([]ProcurementResponse, 0, len(requests))
	for i := range requests {
		result = append(result, toProcurementResponse(&requests[i]))
	}
	return result, total, nil
}

func (s *procurementService) Submit(ctx context.Context, userID, id string) (ProcurementResponse, error) {
	return s.transition(ctx, userID, id, lifecycle.ActionSubmit, model.ActionSubmitRequest,
		func(txCtx context.Context, request *model.ProcurementRequest) error {
			full, err := s.requestRepo.FindByIDWithRelations(txCtx, request.ID)
			if err != nil {
				return fmt.Errorf("failed to load items: %w", err)
			}
			if err := validatePersistedItems(full.Items); err != nil {
				return err
			}
			if err := s.checkBalance(txCtx, request); err != nil {
				return err
			}
			now := time.Now()
			request.SubmittedAt = &now
			return nil
		})
}

func (s *procurementService) Approve(ctx context.Context, userID, id string, input ApproveInput) (ProcurementResponse, error) {
	approverID := parseOptionalUUID(userID)

	return s.transition(ctx, userID, id, lifecycle.ActionApprove, model.ActionApproveRequest,
		func(txCtx context.Context, request *model.ProcurementRequest) error {
			if err := s.checkBalance(txCtx, request); err != nil {
				return err
			}
			approval := model.Approval{
				RequestID:  request.ID,
				Status:     model.ApprovalApproved,
				Remarks:    strings.TrimSpace(input.Remarks),
				ApprovedBy: approverID,
			}
			if err := s.approvalRepo.Create(txCtx, &approval); err != nil {
				return fmt.Errorf("failed to record approval: %w", err)
			}
			return nil
		})
}

func (s *procurementService) Reject(ctx context.Context, userID, id string, input RejectInput) (ProcurementResponse, error) {
	remarks := strings.TrimSpace(input.Remarks)
	if remarks == "" {
		return ProcurementResponse{}, fmt.Errorf("%w: remarks are required when rejecting", lifecycle.ErrValidation)
	}

	approverID := parseOptionalUUID(userID)

	return s.transition(ctx, userID, id, lifecycle.ActionReject, model.ActionRejectRequest,
		func(txCtx context.Context, request *model.ProcurementRequest) error {
			approval := model.Approval{
				RequestID:  request.ID,
				Status:     model.ApprovalRejected,
				Remarks:    remarks,
				ApprovedBy: approverID,
			}
			if err := s.approvalRepo.Create(txCtx, &approval); err != nil {
				return fmt.Errorf("failed to record rejection: %w", err)
			}
			return nil
		})
}

func (s *procurementService) MarkPurchased(ctx context.Context, userID, id string) (ProcurementResponse, error) {
	return s.transition(ctx, userID, id, lifecycle.ActionPurchase, model.ActionMarkPurchased,
		func(txCtx context.Context, request *model.ProcurementRequest) error {
			now := time.Now()
			request.PurchasedAt = &now
			return nil
		})
}

func (s *procurementService) UploadProof(ctx context.Context, userID, id string, input ProofInput) (ProcurementResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return ProcurementResponse{}, fmt.Errorf("%w: invalid request id", lifecycle.ErrValidation)
	}

	switch input.Type {
	case model.ProofTypeOfficialReceipt, model.ProofTypeDeliveryReceipt, model.ProofTypeInvoice:
	case "":
		return ProcurementResponse{}, fmt.Errorf("%w: proof type is required", lifecycle.ErrValidation)
	default:
		return ProcurementResponse{}, fmt.Errorf("%w: unknown proof type %q", lifecycle.ErrValidation, input.Type)
	}
	if input.FilePath == "" || input.FileName == "" {
		return ProcurementResponse{}, fmt.Errorf("%w: a proof file is required", lifecycle.ErrValidation)
	}

	uploaderID := parseOptionalUUID(userID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, findErr := s.requestRepo.FindByIDForUpdate(txCtx, requestID)
		if findErr != nil {
			return fmt.Errorf("procurement request not found: %w", findErr)
		}

		// Proofs attach only while the request sits in PURCHASED
		if request.Status != model.StatusPurchased {
			return fmt.Errorf("%w: cannot attach proof to a %s request", lifecycle.ErrInvalidTransition, request.Status)
		}

		proof := model.Proof{
			RequestID:   request.ID,
			Type:        input.Type,
			FilePath:    input.FilePath,
			FileName:    input.FileName,
			Description: input.Description,
			UploadedBy:  uploaderID,
		}
		if createErr := s.proofRepo.Create(txCtx, &proof); createErr != nil {
			return fmt.Errorf("failed to save proof: %w", createErr)
		}

		return s.writeAudit(txCtx, uploaderID, model.ActionUploadProof, request.ID.String(), request.Title, map[string]interface{}{
			"proof_type": input.Type,
			"file_name":  input.FileName,
		})
	})

	if err != nil {
		return ProcurementResponse{}, err
	}

	return s.reload(ctx, requestID)
}

func (s *procurementService) Complete(ctx context.Context, userID, id string) (ProcurementResponse, error) {
	actorID := parseOptionalUUID(userID)

	return s.transition(ctx, userID, id, lifecycle.ActionComplete, model.ActionCompleteRequest,
		func(txCtx context.Context, request *model.ProcurementRequest) error {
			proofCount, err := s.proofRepo.CountByRequest(txCtx, request.ID)
			if err != nil {
				return fmt.Errorf("failed to count proofs: %w", err)
			}
			if proofCount == 0 {
				return fmt.Errorf("%w: at least one proof of purchase is required", lifecycle.ErrPrecondition)
			}

			// Lock the allocation so two completions cannot jointly exceed it
			alloc, err := s.allocRepo.FindByIDForUpdate(txCtx, request.AllocationID)
			if err != nil {
				return fmt.Errorf("allocation not found: %w", err)
			}
			if alloc.Remaining().LessThan(request.Amount) {
				return fmt.Errorf("%w: allocation balance %s is below the request amount %s",
					lifecycle.ErrPrecondition, alloc.Remaining().StringFixed(4), request.Amount.StringFixed(4))
			}

			alloc.UsedAmount = alloc.UsedAmount.Add(request.Amount)
			if err := s.allocRepo.Update(txCtx, alloc); err != nil {
				return fmt.Errorf("failed to consume allocation: %w", err)
			}

			if err := s.writeAudit(txCtx, actorID, model.ActionConsumeBudget, alloc.ID.String(), request.Title, map[string]interface{}{
				"request_id":  request.ID.String(),
				"amount":      request.Amount.StringFixed(4),
				"used_amount": alloc.UsedAmount.StringFixed(4),
			}); err != nil {
				return err
			}

			now := time.Now()
			request.CompletedAt = &now
			return nil
		})
}

func (s *procurementService) Delete(ctx context.Context, userID, id string) error {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid request id", lifecycle.ErrValidation)
	}

	actorID := parseOptionalUUID(userID)

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, findErr := s.requestRepo.FindByIDForUpdate(txCtx, requestID)
		if findErr != nil {
			return fmt.Errorf("procurement request not found: %w", findErr)
		}

		// Hard delete is a draft-only operation; everything else is archived
		if request.Status != model.StatusDraft {
			return fmt.Errorf("%w: only drafts can be deleted, archive the request instead", lifecycle.ErrInvalidTransition)
		}

		if delErr := s.requestRepo.HardDelete(txCtx, request.ID); delErr != nil {
			return fmt.Errorf("failed to delete procurement request: %w", delErr)
		}

		return s.writeAudit(txCtx, actorID, model.ActionDeleteRequest, request.ID.String(), request.Title, nil)
	})
}

func (s *procurementService) Archive(ctx context.Context, userID, id string) error {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid request id", lifecycle.ErrValidation)
	}

	actorID := parseOptionalUUID(userID)

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, findErr := s.requestRepo.FindByIDForUpdate(txCtx, requestID)
		if findErr != nil {
			return fmt.Errorf("procurement request not found: %w", findErr)
		}

		if request.Status == model.StatusDraft {
			return fmt.Errorf("%w: drafts are deleted, not archived", lifecycle.ErrInvalidTransition)
		}

		if archiveErr := s.requestRepo.Archive(txCtx, request.ID); archiveErr != nil {
			return fmt.Errorf("failed to archive procurement request: %w", archiveErr)
		}

		return s.writeAudit(txCtx, actorID, model.ActionArchiveRequest, request.ID.String(), request.Title, nil)
	})
}

// --- Transition plumbing ---

// transition runs one guarded status change: lock the request row, consult the
// transition table against the current status, run the action-specific guard
// and side effects, persist the new status, and audit — all in one DB
// transaction. The first writer wins; a concurrent caller finds the
// already-changed status and gets an invalid-transition error naming it.
func (s *procurementService) transition(
	ctx context.Context,
	userID, id string,
	action lifecycle.Action,
	auditAction string,
	guard func(txCtx context.Context, request *model.ProcurementRequest) error,
) (ProcurementResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return ProcurementResponse{}, fmt.Errorf("%w: invalid request id", lifecycle.ErrValidation)
	}

	actorID := parseOptionalUUID(userID)

	var from, to string
	var title string

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, findErr := s.requestRepo.FindByIDForUpdate(txCtx, requestID)
		if findErr != nil {
			return fmt.Errorf("procurement request not found: %w", findErr)
		}

		next, nextErr := lifecycle.Next(request.Status, action)
		if nextErr != nil {
			return nextErr
		}

		if guard != nil {
			if guardErr := guard(txCtx, request); guardErr != nil {
				return guardErr
			}
		}

		from, to, title = request.Status, next, request.Title
		request.Status = next
		if saveErr := s.requestRepo.Update(txCtx, request); saveErr != nil {
			return fmt.Errorf("failed to persist status change: %w", saveErr)
		}

		return s.writeAudit(txCtx, actorID, auditAction, request.ID.String(), request.Title, map[string]interface{}{
			"from": from,
			"to":   to,
		})
	})

	if err != nil {
		return ProcurementResponse{}, err
	}

	s.broadcast(StatusEvent{
		Type:      "procurement_status",
		RequestID: requestID.String(),
		Title:     title,
		From:      from,
		To:        to,
	})

	return s.reload(ctx, requestID)
}

// checkBalance verifies the allocation can still cover the request amount.
// Complete does its own locked re-check, since siblings may consume the
// allocation between approval and completion.
func (s *procurementService) checkBalance(txCtx context.Context, request *model.ProcurementRequest) error {
	alloc, err := s.allocRepo.FindByID(txCtx, request.AllocationID)
	if err != nil {
		return fmt.Errorf("allocation not found: %w", err)
	}
	if alloc.Remaining().LessThan(request.Amount) {
		return fmt.Errorf("%w: allocation balance %s is below the request amount %s",
			lifecycle.ErrPrecondition, alloc.Remaining().StringFixed(4), request.Amount.StringFixed(4))
	}
	return nil
}

func (s *procurementService) writeAudit(txCtx context.Context, userID *uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error {
	payload := ""
	if details != nil {
		raw, _ := json.Marshal(details)
		payload = string(raw)
	}
	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    payload,
	}
	if err := s.auditRepo.Log(txCtx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// broadcast pushes a status event to connected dashboard clients without
// blocking the request path when the hub is absent or saturated
func (s *procurementService) broadcast(event StatusEvent) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case s.hub.Broadcast <- payload:
	default:
	}
}

func (s *procurementService) reload(ctx context.Context, id uuid.UUID) (ProcurementResponse, error) {
	request, err := s.requestRepo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return ProcurementResponse{}, fmt.Errorf("failed to reload procurement request: %w", err)
	}
	return toProcurementResponse(request), nil
}

// validatePersistedItems re-checks stored items before submission; a draft
// saved by an older client could carry rows the current rules refuse
func validatePersistedItems(items []model.ProcurementItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: at least one item is required", lifecycle.ErrValidation)
	}
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" || strings.TrimSpace(item.Unit) == "" {
			return fmt.Errorf("%w: item %d is missing a name or unit", lifecycle.ErrValidation, i+1)
		}
		if item.Quantity <= 0 || item.UnitCost.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: item %d has a non-positive quantity or unit_cost", lifecycle.ErrValidation, i+1)
		}
	}
	return nil
}

// --- Helpers ---

func parseOptionalUUID(raw string) *uuid.UUID {
	if raw == "" {
		return nil
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &parsed
}

func toProcurementResponse(r *model.ProcurementRequest) ProcurementResponse {
	resp := ProcurementResponse{
		ID:             r.ID.String(),
		Title:          r.Title,
		Description:    r.Description,
		Status:         r.Status,
		Amount:         r.Amount.StringFixed(4),
		AllocationID:   r.AllocationID.String(),
		AllowedActions: lifecycle.AllowedActions(r.Status),
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      r.UpdatedAt.Format(time.RFC3339),
	}

	if r.Allocation != nil {
		remaining := r.Allocation.Remaining().StringFixed(4)
		resp.AllocationRemaining = &remaining
	}
	if r.Requester != nil {
		resp.RequesterName = r.Requester.Username
	}

	resp.Items = make([]ProcurementItemResponse, 0, len(r.Items))
	for _, item := range r.Items {
		resp.Items = append(resp.Items, ProcurementItemResponse{
			ID:        item.ID.String(),
			Name:      item.Name,
			Unit:      item.Unit,
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost.StringFixed(4),
			LineTotal: item.LineTotal.StringFixed(4),
		})
	}

	for _, approval := range r.Approvals {
		a := ApprovalResponse{
			ID:        approval.ID.String(),
			Status:    approval.Status,
			Remarks:   approval.Remarks,
			CreatedAt: approval.CreatedAt.Format(time.RFC3339),
		}
		if approval.Approver != nil {
			a.ApproverName = approval.Approver.Username
		}
		resp.Approvals = append(resp.Approvals, a)
	}

	for _, proof := range r.Proofs {
		resp.Proofs = append(resp.Proofs, ProofResponse{
			ID:          proof.ID.String(),
			Type:        proof.Type,
			FileName:    proof.FileName,
			FilePath:    proof.FilePath,
			Description: proof.Description,
			CreatedAt:   proof.CreatedAt.Format(time.RFC3339),
		})
	}

	if r.SubmittedAt != nil {
		v := r.SubmittedAt.Format(time.RFC3339)
		resp.SubmittedAt = &v
	}
	if r.PurchasedAt != nil {
		v := r.PurchasedAt.Format(time.RFC3339)
		resp.PurchasedAt = &v
	}
	if r.CompletedAt != nil {
		v := r.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &v
	}

	return resp
}
