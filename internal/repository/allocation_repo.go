package repository

import (
	"context"

	"procurement-portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AllocationRepository interface {
	Create(ctx context.Context, alloc *model.BudgetAllocation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.BudgetAllocation, error)
	// FindByIDForUpdate locks the allocation row so concurrent completions
	// against the same bucket cannot jointly exceed it.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.BudgetAllocation, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.BudgetAllocation, error)
	List(ctx context.Context, budgetID, programID uuid.UUID, page, limit int) ([]model.BudgetAllocation, int64, error)
	Update(ctx context.Context, alloc *model.BudgetAllocation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type allocationRepository struct {
	db *gorm.DB
}

func NewAllocationRepository(db *gorm.DB) AllocationRepository {
	return &allocationRepository{db: db}
}

func (r *allocationRepository) Create(ctx context.Context, alloc *model.BudgetAllocation) error {
	return GetDB(ctx, r.db).Create(alloc).Error
}

func (r *allocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.BudgetAllocation, error) {
	var alloc model.BudgetAllocation
	if err := GetDB(ctx, r.db).First(&alloc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &alloc, nil
}

func (r *allocationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.BudgetAllocation, error) {
	var alloc model.BudgetAllocation
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&alloc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &alloc, nil
}

func (r *allocationRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.BudgetAllocation, error) {
	var alloc model.BudgetAllocation
	if err := GetDB(ctx, r.db).
		Preload("Budget").
		Preload("Program").
		Preload("Object").
		Preload("Object.Classification").
		First(&alloc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &alloc, nil
}

func (r *allocationRepository) List(ctx context.Context, budgetID, programID uuid.UUID, page, limit int) ([]model.BudgetAllocation, int64, error) {
	var allocations []model.BudgetAllocation
	var total int64

	db := GetDB(ctx, r.db)

	apply := func(query *gorm.DB) *gorm.DB {
		if budgetID != uuid.Nil {
			query = query.Where("budget_id = ?", budgetID)
		}
		if programID != uuid.Nil {
			query = query.Where("program_id = ?", programID)
		}
		return query
	}

	if err := apply(db.Model(&model.BudgetAllocation{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := apply(db.Preload("Budget").Preload("Program").Preload("Object").Preload("Object.Classification")).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&allocations).Error; err != nil {
		return nil, 0, err
	}

	return allocations, total, nil
}

func (r *allocationRepository) Update(ctx context.Context, alloc *model.BudgetAllocation) error {
	return GetDB(ctx, r.db).Save(alloc).Error
}

func (r *allocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.BudgetAllocation{}).Error
}
