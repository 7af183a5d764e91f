package service

import (
	"context"
	"strings"
	"testing"

	"procurement-portal/internal/lifecycle"
	"procurement-portal/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- In-memory stand-ins for the repository layer ---

type memStore struct {
	requests  map[uuid.UUID]model.ProcurementRequest
	items     map[uuid.UUID][]model.ProcurementItem
	archived  map[uuid.UUID]bool
	allocs    map[uuid.UUID]model.BudgetAllocation
	budgets   map[uuid.UUID]model.Budget
	programs  map[uuid.UUID]model.Program
	objects   map[uuid.UUID]model.ObjectOfExpenditure
	approvals []model.Approval
	proofs    []model.Proof
	audits    []model.AuditLog
}

func newMemStore() *memStore {
	return &memStore{
		requests: make(map[uuid.UUID]model.ProcurementRequest),
		items:    make(map[uuid.UUID][]model.ProcurementItem),
		archived: make(map[uuid.UUID]bool),
		allocs:   make(map[uuid.UUID]model.BudgetAllocation),
		budgets:  make(map[uuid.UUID]model.Budget),
		programs: make(map[uuid.UUID]model.Program),
		objects:  make(map[uuid.UUID]model.ObjectOfExpenditure),
	}
}

func (s *memStore) auditActions() []string {
	actions := make([]string, 0, len(s.audits))
	for _, a := range s.audits {
		actions = append(actions, a.Action)
	}
	return actions
}

type stubTxManager struct{}

func (stubTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type stubRequestRepo struct{ s *memStore }

func (r stubRequestRepo) Create(_ context.Context, req *model.ProcurementRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	items := make([]model.ProcurementItem, len(req.Items))
	copy(items, req.Items)
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].RequestID = req.ID
	}
	stored := *req
	stored.Items = nil
	r.s.requests[req.ID] = stored
	r.s.items[req.ID] = items
	return nil
}

func (r stubRequestRepo) find(id uuid.UUID) (model.ProcurementRequest, error) {
	req, ok := r.s.requests[id]
	if !ok || r.s.archived[id] {
		return model.ProcurementRequest{}, gorm.ErrRecordNotFound
	}
	return req, nil
}

func (r stubRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProcurementRequest, error) {
	req, err := r.find(id)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r stubRequestRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.ProcurementRequest, error) {
	req, err := r.find(id)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r stubRequestRepo) FindByIDWithRelations(_ context.Context, id uuid.UUID) (*model.ProcurementRequest, error) {
	req, err := r.find(id)
	if err != nil {
		return nil, err
	}
	req.Items = append([]model.ProcurementItem(nil), r.s.items[id]...)
	if alloc, ok := r.s.allocs[req.AllocationID]; ok {
		allocCopy := alloc
		req.Allocation = &allocCopy
	}
	for _, a := range r.s.approvals {
		if a.RequestID == id {
			req.Approvals = append(req.Approvals, a)
		}
	}
	for _, p := range r.s.proofs {
		if p.RequestID == id {
			req.Proofs = append(req.Proofs, p)
		}
	}
	return &req, nil
}

func (r stubRequestRepo) Search(_ context.Context, status, q string, _, _ int) ([]model.ProcurementRequest, int64, error) {
	var out []model.ProcurementRequest
	for id, req := range r.s.requests {
		if r.s.archived[id] {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(req.Title), strings.ToLower(q)) &&
			!strings.Contains(strings.ToLower(req.Description), strings.ToLower(q)) {
			continue
		}
		out = append(out, req)
	}
	return out, int64(len(out)), nil
}

func (r stubRequestRepo) Update(_ context.Context, req *model.ProcurementRequest) error {
	stored := *req
	stored.Items = nil
	stored.Approvals = nil
	stored.Proofs = nil
	stored.Allocation = nil
	r.s.requests[req.ID] = stored
	return nil
}

func (r stubRequestRepo) ReplaceItems(_ context.Context, requestID uuid.UUID, items []model.ProcurementItem) error {
	stored := make([]model.ProcurementItem, len(items))
	copy(stored, items)
	for i := range stored {
		if stored[i].ID == uuid.Nil {
			stored[i].ID = uuid.New()
		}
		stored[i].RequestID = requestID
	}
	r.s.items[requestID] = stored
	return nil
}

func (r stubRequestRepo) HardDelete(_ context.Context, id uuid.UUID) error {
	delete(r.s.requests, id)
	delete(r.s.items, id)
	return nil
}

func (r stubRequestRepo) Archive(_ context.Context, id uuid.UUID) error {
	r.s.archived[id] = true
	return nil
}

func (r stubRequestRepo) CountActiveByAllocation(_ context.Context, allocationID uuid.UUID) (int64, error) {
	var n int64
	for id, req := range r.s.requests {
		if !r.s.archived[id] && req.AllocationID == allocationID {
			n++
		}
	}
	return n, nil
}

type stubAllocRepo struct{ s *memStore }

func (r stubAllocRepo) Create(_ context.Context, alloc *model.BudgetAllocation) error {
	if alloc.ID == uuid.Nil {
		alloc.ID = uuid.New()
	}
	r.s.allocs[alloc.ID] = *alloc
	return nil
}

func (r stubAllocRepo) find(id uuid.UUID) (*model.BudgetAllocation, error) {
	alloc, ok := r.s.allocs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &alloc, nil
}

func (r stubAllocRepo) FindByID(_ context.Context, id uuid.UUID) (*model.BudgetAllocation, error) {
	return r.find(id)
}

func (r stubAllocRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.BudgetAllocation, error) {
	return r.find(id)
}

func (r stubAllocRepo) FindByIDWithRelations(_ context.Context, id uuid.UUID) (*model.BudgetAllocation, error) {
	return r.find(id)
}

func (r stubAllocRepo) List(_ context.Context, budgetID, programID uuid.UUID, _, _ int) ([]model.BudgetAllocation, int64, error) {
	var out []model.BudgetAllocation
	for _, alloc := range r.s.allocs {
		if budgetID != uuid.Nil && alloc.BudgetID != budgetID {
			continue
		}
		if programID != uuid.Nil && alloc.ProgramID != programID {
			continue
		}
		out = append(out, alloc)
	}
	return out, int64(len(out)), nil
}

func (r stubAllocRepo) Update(_ context.Context, alloc *model.BudgetAllocation) error {
	if _, ok := r.s.allocs[alloc.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.allocs[alloc.ID] = *alloc
	return nil
}

func (r stubAllocRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.s.allocs, id)
	return nil
}

type stubApprovalRepo struct{ s *memStore }

func (r stubApprovalRepo) Create(_ context.Context, approval *model.Approval) error {
	if approval.ID == uuid.Nil {
		approval.ID = uuid.New()
	}
	r.s.approvals = append(r.s.approvals, *approval)
	return nil
}

func (r stubApprovalRepo) ListByRequest(_ context.Context, requestID uuid.UUID) ([]model.Approval, error) {
	var out []model.Approval
	for _, a := range r.s.approvals {
		if a.RequestID == requestID {
			out = append(out, a)
		}
	}
	return out, nil
}

type stubProofRepo struct{ s *memStore }

func (r stubProofRepo) Create(_ context.Context, proof *model.Proof) error {
	if proof.ID == uuid.Nil {
		proof.ID = uuid.New()
	}
	r.s.proofs = append(r.s.proofs, *proof)
	return nil
}

func (r stubProofRepo) CountByRequest(_ context.Context, requestID uuid.UUID) (int64, error) {
	var n int64
	for _, p := range r.s.proofs {
		if p.RequestID == requestID {
			n++
		}
	}
	return n, nil
}

func (r stubProofRepo) ListByRequest(_ context.Context, requestID uuid.UUID) ([]model.Proof, error) {
	var out []model.Proof
	for _, p := range r.s.proofs {
		if p.RequestID == requestID {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubAuditRepo struct{ s *memStore }

func (r stubAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	r.s.audits = append(r.s.audits, *entry)
	return nil
}

func (r stubAuditRepo) List(_ context.Context, _, _ int) ([]model.AuditLog, int64, error) {
	return r.s.audits, int64(len(r.s.audits)), nil
}

type stubBudgetRepo struct{ s *memStore }

func (r stubBudgetRepo) Create(_ context.Context, budget *model.Budget) error {
	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}
	r.s.budgets[budget.ID] = *budget
	return nil
}

func (r stubBudgetRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Budget, error) {
	budget, ok := r.s.budgets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &budget, nil
}

func (r stubBudgetRepo) FindByFiscalYear(_ context.Context, year int) (*model.Budget, error) {
	for _, b := range r.s.budgets {
		if b.FiscalYear == year {
			budget := b
			return &budget, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r stubBudgetRepo) List(_ context.Context, _, _ int) ([]model.Budget, int64, error) {
	var out []model.Budget
	for _, b := range r.s.budgets {
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (r stubBudgetRepo) Update(_ context.Context, budget *model.Budget) error {
	r.s.budgets[budget.ID] = *budget
	return nil
}

type stubRefRepo struct{ s *memStore }

func (r stubRefRepo) CreateProgram(_ context.Context, program *model.Program) error {
	if program.ID == uuid.Nil {
		program.ID = uuid.New()
	}
	r.s.programs[program.ID] = *program
	return nil
}

func (r stubRefRepo) UpdateProgram(_ context.Context, program *model.Program) error {
	r.s.programs[program.ID] = *program
	return nil
}

func (r stubRefRepo) FindProgramByID(_ context.Context, id uuid.UUID) (*model.Program, error) {
	program, ok := r.s.programs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &program, nil
}

func (r stubRefRepo) ListPrograms(_ context.Context) ([]model.Program, error) {
	var out []model.Program
	for _, p := range r.s.programs {
		out = append(out, p)
	}
	return out, nil
}

func (r stubRefRepo) CreateClassification(_ context.Context, _ *model.Classification) error {
	return nil
}

func (r stubRefRepo) ListClassifications(_ context.Context) ([]model.Classification, error) {
	return nil, nil
}

func (r stubRefRepo) CreateObject(_ context.Context, object *model.ObjectOfExpenditure) error {
	if object.ID == uuid.Nil {
		object.ID = uuid.New()
	}
	r.s.objects[object.ID] = *object
	return nil
}

func (r stubRefRepo) FindObjectByID(_ context.Context, id uuid.UUID) (*model.ObjectOfExpenditure, error) {
	object, ok := r.s.objects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &object, nil
}

func (r stubRefRepo) ListObjects(_ context.Context, _ uuid.UUID) ([]model.ObjectOfExpenditure, error) {
	var out []model.ObjectOfExpenditure
	for _, o := range r.s.objects {
		out = append(out, o)
	}
	return out, nil
}

// --- Fixtures ---

func newTestProcurementService(store *memStore) ProcurementService {
	return NewProcurementService(
		stubRequestRepo{store},
		stubAllocRepo{store},
		stubApprovalRepo{store},
		stubProofRepo{store},
		stubAuditRepo{store},
		stubTxManager{},
		nil, // no websocket hub in tests
	)
}

func seedAllocation(store *memStore, allocated string) uuid.UUID {
	id := uuid.New()
	store.allocs[id] = model.BudgetAllocation{
		ID:              id,
		BudgetID:        uuid.New(),
		ProgramID:       uuid.New(),
		ObjectID:        uuid.New(),
		AllocatedAmount: decimal.RequireFromString(allocated),
		UsedAmount:      decimal.Zero,
	}
	return id
}

func officeSupplyItems() []ProcurementItemInput {
	return []ProcurementItemInput{
		{Name: "Bond paper", Unit: "ream", Quantity: 2, UnitCost: "100"},
		{Name: "Stapler", Unit: "pcs", Quantity: 1, UnitCost: "50"},
	}
}

// --- Tests ---

func TestCreateDerivesAmountFromItems(t *testing.T) {
	store := newMemStore()
	allocID := seedAllocation(store, "10000")
	svc := newTestProcurementService(store)

	resp, err := svc.Create(context.Background(), uuid.NewString(), CreateRequestInput{
		Title:        "Office supplies Q3",
		Description:  "Quarterly restock",
		AllocationID: allocID.String(),
		Items:        officeSupplyItems(),
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusDraft, resp.Status)
	assert.Equal(t, "250.0000", resp.Amount)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, "200.0000", resp.Items[0].LineTotal)
	assert.Equal(t, []lifecycle.Action{lifecycle.ActionSubmit}, resp.AllowedActions)
	assert.Equal(t, []string{model.ActionCreateRequest}, store.auditActions())
}

func TestCreateRejectsBadItems(t *testing.T) {
	store := newMemStore()
	allocID := seedAllocation(store, "10000")
	svc := newTestProcurementService(store)

	cases := []struct {
		name  string
		items []ProcurementItemInput
	}{
		{"no items", nil},
		{"zero quantity", []ProcurementItemInput{{Name: "Paper", Unit: "ream", Quantity: 0, UnitCost: "100"}}},
		{"negative quantity", []ProcurementItemInput{{Name: "Paper", Unit: "ream", Quantity: -1, UnitCost: "100"}}},
		{"zero unit cost", []ProcurementItemInput{{Name: "Paper", Unit: "ream", Quantity: 1, UnitCost: "0"}}},
		{"garbage unit cost", []ProcurementItemInput{{Name: "Paper", Unit: "ream", Quantity: 1, UnitCost: "abc"}}},
		{"blank name", []ProcurementItemInput{{Name: "  ", Unit: "ream", Quantity: 1, UnitCost: "100"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "", CreateRequestInput{
				Title:        "Bad request",
				AllocationID: allocID.String(),
				Items:        tc.items,
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, lifecycle.ErrValidation)
		})
	}

	assert.Empty(t, store.requests, "nothing should be persisted on validation failure")
}

func TestFullLifecycleConsumesAllocationOnce(t *testing.T) {
	store := newMemStore()
	allocID := seedAllocation(store, "10000")
	svc := newTestProcurementService(store)
	ctx := context.Background()
	actor := uuid.NewString()

	created, err := svc.Create(ctx, actor, CreateRequestInput{
		Title:        "Office supplies Q3",
		AllocationID: allocID.String(),
		Items:        officeSupplyItems(),
	})
	require.NoError(t, err)

	submitted, err := svc.Submit(ctx, actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, submitted.Status)
	assert.NotNil(t, submitted.SubmittedAt)

	approved, err := svc.Approve(ctx, actor, created.ID, ApproveInput{Remarks: "within budget"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Status)
	require.Len(t, approved.Approvals, 1)
	assert.Equal(t, model.ApprovalApproved, approved.Approvals[0].Status)

	purchased, err := svc.MarkPurchased(ctx, actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPurchased, purchased.Status)
	assert.NotNil(t, purchased.PurchasedAt)

	withProof, err := svc.UploadProof(ctx, actor, created.ID, ProofInput{
		Type:     model.ProofTypeOfficialReceipt,
		FilePath: "uploads/proofs/receipt.pdf",
		FileName: "receipt.pdf",
	})
	require.NoError(t, err)
	require.Len(t, withProof.Proofs, 1)

	completed, err := svc.Complete(ctx, actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)
	assert.Empty(t, completed.AllowedActions)

	alloc := store.allocs[allocID]
	assert.True(t, alloc.UsedAmount.Equal(decimal.RequireFromString("250")),
		"used amount should equal the request amount, got %s", alloc.UsedAmount)

	// A second completion attempt must neither succeed nor double-book
	_, err = svc.Complete(ctx, actor, created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)

	alloc = store.allocs[allocID]
	assert.True(t, alloc.UsedAmount.Equal(decimal.RequireFromString("250")),
		"a failed retry must not consume the allocation again")

	assert.Equal(t, []string{
		model.ActionCreateRequest,
		model.ActionSubmitRequest,
		model.ActionApproveRequest,
		model.ActionMarkPurchased,
		model.ActionUploadProof,
		model.ActionConsumeBudget,
		model.ActionCompleteRequest,
	}, store.auditActions())
}

func TestSubmitFailsWhenBalanceInsufficient(t *testing.T) {
	store := newMemStore()
	allocID := seedAllocation(store, "100") // below the 250 request amount
	svc := newTestProcurementService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, "", CreateRequestInput{
		Title:        "Oversized order",
		AllocationID: allocID.String(),
		Items:        officeSupplyItems(),
	})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "", created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, lifecycle.ErrPrecondition)

	reloaded, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, reloaded.Status, "a refused submit must leave the draft untouched")
}

func TestRejectRequiresRemarks(t *testing.T) {
	store := newMemStore()
	allocID := seedAllocation(store, "10000")
	svc := newTestProcurementService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, "", CreateRequestInput{
		Title:        "Printer toner",
		AllocationID: allocID.String(),
		Items:        officeSupplyItems(),
	})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "", created.ID)
	require.NoError(t, err)

	_, err = svc.Reject(ctx, "", created.ID, RejectInput{Remarks: "   "})
	require.Error(t, err)
	assert.ErrorIs(t, err, lifecycle.ErrValidation)

	rejected, err := svc.Reject(ctx, "", created.ID, RejectInput{Remarks: "duplicate of an existing order"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, rejected.Status)
	assert.Empty(t, rejected.AllowedActions, "rejection is terminal")
	require.Len(t, rejected.Approvals, 1)
	assert.Equal(t, model.ApprovalRejected, rejected.Approvals[0].Status)
}

func TestCompleteRequiresProof(t *testing.T) {
	store := newMemStore()
	allocID := seedAllocation(store, "10000")
	svc := newTestProcurementService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, "", CreateRequestInput{
		Title:        "Projector",
		AllocationID: allocID.String(),
		Items:        []ProcurementItemInput{{Name: "Projector", Unit: "pcs", Quantity: 1, UnitCost: "5000"}},
	})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "", created.ID)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, "", created.ID, ApproveInput{})
	require.NoError(t, err)
	_, err = svc.MarkPurchased(ctx, "", created.ID)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, "", created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, lifecycle.ErrPrecondition)

	reloaded, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPurchased, reloaded.Status)

	alloc := store.allocs[allocID]
	assert.True(t, alloc.UsedAmount.IsZero(), "a refused completion must not consume the allocation")
}

func TestUploadProofOnlyWhilePurchased(t *testing.T) {
	store := newMemStore()
	allocID := seedAllocation(store, "10000")
	svc := newTestProcurementService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, "", CreateRequestInput{
		Title:        "Filing cabinets",
		AllocationID: allocID.String(),
		Items:        officeSupplyItems(),
	})
	require.NoError(t, err)

	_, err = svc.UploadProof(ctx, "", created.ID, ProofInput{
		Type:     model.ProofTypeInvoice,
		FilePath: "uploads/proofs/invoice.pdf",
		FileName: "invoice.pdf",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)

	_, err = svc.UploadProof(ctx, "", created.ID, ProofInput{Type: "SELFIE", FilePath: "x", FileName: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, lifecycle.ErrValidation)
}

func TestInvalidTransitionsAreRefused(t *testing.T) {
	store := newMemStore()
	allocID := seedAllocation(store, "10000")
	svc := newTestProcurementService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, "", CreateRequestInput{
		Title:        "Desk chairs",
		AllocationID: allocID.String(),
		Items:        officeSupplyItems(),
	})
	require.NoError(t, err)

	// DRAFT can only be submitted
	_, err = svc.Approve(ctx, "", created.ID, ApproveInput{})
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	_, err = svc.MarkPurchased(ctx, "", created.ID)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	_, err = svc.Complete(ctx, "", created.ID)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)

	reloaded, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, reloaded.Status)
}

func TestUpdateOnlyTouchesDrafts(t *testing.T) {
	store := newMemStore()
	allocID := seedAllocation(store, "10000")
	svc := newTestProcurementService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, "", CreateRequestInput{
		Title:        "Whiteboards",
		AllocationID: allocID.String(),
		Items:        officeSupplyItems(),
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "", created.ID, UpdateRequestInput{
		Title: "Whiteboards and markers",
		Items: []ProcurementItemInput{
			{Name: "Whiteboard", Unit: "pcs", Quantity: 3, UnitCost: "400"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Whiteboards and markers", updated.Title)
	assert.Equal(t, "1200.0000", updated.Amount)
	assert.Len(t, updated.Items, 1)

	_, err = svc.Submit(ctx, "", created.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, "", created.ID, UpdateRequestInput{
		Title: "Too late",
		Items: officeSupplyItems(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
}

func TestDeleteIsDraftOnlyAndArchiveIsNot(t *testing.T) {
	store := newMemStore()
	allocID := seedAllocation(store, "10000")
	svc := newTestProcurementService(store)
	ctx := context.Background()

	draft, err := svc.Create(ctx, "", CreateRequestInput{
		Title:        "Draft to delete",
		AllocationID: allocID.String(),
		Items:        officeSupplyItems(),
	})
	require.NoError(t, err)

	err = svc.Archive(ctx, "", draft.ID)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition, "drafts are deleted, not archived")

	require.NoError(t, svc.Delete(ctx, "", draft.ID))
	_, err = svc.Get(ctx, draft.ID)
	require.Error(t, err)

	// A submitted request can only be archived
	submitted, err := svc.Create(ctx, "", CreateRequestInput{
		Title:        "Submitted to archive",
		AllocationID: allocID.String(),
		Items:        officeSupplyItems(),
	})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "", submitted.ID)
	require.NoError(t, err)

	err = svc.Delete(ctx, "", submitted.ID)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)

	require.NoError(t, svc.Archive(ctx, "", submitted.ID))
	_, err = svc.Get(ctx, submitted.ID)
	require.Error(t, err, "archived requests disappear from reads")
}

func TestGetDraftRefusesNonDrafts(t *testing.T) {
	store := newMemStore()
	allocID := seedAllocation(store, "10000")
	svc := newTestProcurementService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, "", CreateRequestInput{
		Title:        "Laminator",
		AllocationID: allocID.String(),
		Items:        officeSupplyItems(),
	})
	require.NoError(t, err)

	draft, err := svc.GetDraft(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, draft.Status)

	_, err = svc.Submit(ctx, "", created.ID)
	require.NoError(t, err)

	_, err = svc.GetDraft(ctx, created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
}

func TestListFiltersByStatusAndQuery(t *testing.T) {
	store := newMemStore()
	allocID := seedAllocation(store, "100000")
	svc := newTestProcurementService(store)
	ctx := context.Background()

	first, err := svc.Create(ctx, "", CreateRequestInput{
		Title:        "Printer toner",
		AllocationID: allocID.String(),
		Items:        officeSupplyItems(),
	})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "", first.ID)
	require.NoError(t, err)

	_, err = svc.Create(ctx, "", CreateRequestInput{
		Title:        "Office chairs",
		AllocationID: allocID.String(),
		Items:        officeSupplyItems(),
	})
	require.NoError(t, err)

	submitted, total, err := svc.List(ctx, RequestFilter{Status: model.StatusSubmitted})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, submitted, 1)
	assert.Equal(t, "Printer toner", submitted[0].Title)

	matched, _, err := svc.List(ctx, RequestFilter{Query: "chairs"})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Office chairs", matched[0].Title)

	_, _, err = svc.List(ctx, RequestFilter{Status: "SHIPPED"})
	require.Error(t, err)
	assert.ErrorIs(t, err, lifecycle.ErrValidation)
}
