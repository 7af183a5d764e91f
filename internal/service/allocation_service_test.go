package service

import (
	"context"
	"testing"

	"procurement-portal/internal/lifecycle"
	"procurement-portal/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAllocationService(store *memStore) AllocationService {
	return NewAllocationService(
		stubAllocRepo{store},
		stubBudgetRepo{store},
		stubRefRepo{store},
		stubRequestRepo{store},
		stubAuditRepo{store},
		stubTxManager{},
	)
}

func seedReferenceData(store *memStore) (budgetID, programID, objectID uuid.UUID) {
	budgetID = uuid.New()
	store.budgets[budgetID] = model.Budget{
		ID:          budgetID,
		FiscalYear:  2026,
		TotalAmount: decimal.RequireFromString("1000000"),
		IsActive:    true,
	}
	programID = uuid.New()
	store.programs[programID] = model.Program{ID: programID, Code: "GAD", Name: "Gender and Development"}
	objectID = uuid.New()
	store.objects[objectID] = model.ObjectOfExpenditure{ID: objectID, Code: "5-02-03-010", Name: "Office Supplies Expenses"}
	return
}

func TestCreateAllocation(t *testing.T) {
	store := newMemStore()
	budgetID, programID, objectID := seedReferenceData(store)
	svc := newTestAllocationService(store)

	resp, err := svc.Create(context.Background(), "", CreateAllocationInput{
		BudgetID:        budgetID.String(),
		ProgramID:       programID.String(),
		ObjectID:        objectID.String(),
		AllocatedAmount: "50000",
	})
	require.NoError(t, err)

	assert.Equal(t, "50000.0000", resp.AllocatedAmount)
	assert.Equal(t, "0.0000", resp.UsedAmount)
	assert.Equal(t, "50000.0000", resp.Remaining)
	assert.Equal(t, []string{model.ActionCreateAllocation}, store.auditActions())
}

func TestCreateAllocationRejectsUnknownReferences(t *testing.T) {
	store := newMemStore()
	budgetID, programID, objectID := seedReferenceData(store)
	svc := newTestAllocationService(store)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateAllocationInput
	}{
		{"unknown budget", CreateAllocationInput{BudgetID: uuid.NewString(), ProgramID: programID.String(), ObjectID: objectID.String(), AllocatedAmount: "100"}},
		{"unknown program", CreateAllocationInput{BudgetID: budgetID.String(), ProgramID: uuid.NewString(), ObjectID: objectID.String(), AllocatedAmount: "100"}},
		{"unknown object", CreateAllocationInput{BudgetID: budgetID.String(), ProgramID: programID.String(), ObjectID: uuid.NewString(), AllocatedAmount: "100"}},
		{"negative amount", CreateAllocationInput{BudgetID: budgetID.String(), ProgramID: programID.String(), ObjectID: objectID.String(), AllocatedAmount: "-5"}},
		{"garbage amount", CreateAllocationInput{BudgetID: budgetID.String(), ProgramID: programID.String(), ObjectID: objectID.String(), AllocatedAmount: "lots"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "", tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, lifecycle.ErrValidation)
		})
	}
}

func TestUpdateAllocationCannotShrinkBelowConsumed(t *testing.T) {
	store := newMemStore()
	svc := newTestAllocationService(store)

	allocID := uuid.New()
	store.allocs[allocID] = model.BudgetAllocation{
		ID:              allocID,
		BudgetID:        uuid.New(),
		ProgramID:       uuid.New(),
		ObjectID:        uuid.New(),
		AllocatedAmount: decimal.RequireFromString("1000"),
		UsedAmount:      decimal.RequireFromString("600"),
	}

	_, err := svc.Update(context.Background(), "", allocID.String(), UpdateAllocationInput{AllocatedAmount: "500"})
	require.Error(t, err)
	assert.ErrorIs(t, err, lifecycle.ErrPrecondition)

	resp, err := svc.Update(context.Background(), "", allocID.String(), UpdateAllocationInput{AllocatedAmount: "800"})
	require.NoError(t, err)
	assert.Equal(t, "800.0000", resp.AllocatedAmount)
	assert.Equal(t, "200.0000", resp.Remaining)
}

func TestDeleteAllocationRefusedWhileReferenced(t *testing.T) {
	store := newMemStore()
	svc := newTestAllocationService(store)
	ctx := context.Background()

	allocID := uuid.New()
	store.allocs[allocID] = model.BudgetAllocation{
		ID:              allocID,
		AllocatedAmount: decimal.RequireFromString("1000"),
		UsedAmount:      decimal.Zero,
	}

	reqID := uuid.New()
	store.requests[reqID] = model.ProcurementRequest{
		ID:           reqID,
		Title:        "Pending order",
		Status:       model.StatusSubmitted,
		AllocationID: allocID,
		Amount:       decimal.RequireFromString("100"),
	}

	err := svc.Delete(ctx, "", allocID.String())
	require.Error(t, err)
	assert.ErrorIs(t, err, lifecycle.ErrPrecondition)

	delete(store.requests, reqID)

	require.NoError(t, svc.Delete(ctx, "", allocID.String()))
	_, err = svc.Get(ctx, allocID.String())
	require.Error(t, err)
}
