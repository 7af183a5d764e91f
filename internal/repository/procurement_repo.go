package repository

import (
	"context"

	"procurement-portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProcurementRepository interface {
	Create(ctx context.Context, req *model.ProcurementRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProcurementRequest, error)
	// FindByIDForUpdate locks the request row for the duration of the current
	// transaction so concurrent transitions serialize on the database.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ProcurementRequest, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ProcurementRequest, error)
	Search(ctx context.Context, status, q string, page, limit int) ([]model.ProcurementRequest, int64, error)
	Update(ctx context.Context, req *model.ProcurementRequest) error
	ReplaceItems(ctx context.Context, requestID uuid.UUID, items []model.ProcurementItem) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	Archive(ctx context.Context, id uuid.UUID) error
	CountActiveByAllocation(ctx context.Context, allocationID uuid.UUID) (int64, error)
}

type procurementRepository struct {
	db *gorm.DB
}

func NewProcurementRepository(db *gorm.DB) ProcurementRepository {
	return &procurementRepository{db: db}
}

func (r *procurementRepository) Create(ctx context.Context, req *model.ProcurementRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *procurementRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProcurementRequest, error) {
	var req model.ProcurementRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *procurementRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ProcurementRequest, error) {
	var req model.ProcurementRequest
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *procurementRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ProcurementRequest, error) {
	var req model.ProcurementRequest
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Approvals").
		Preload("Approvals.Approver").
		Preload("Proofs").
		Preload("Requester").
		Preload("Allocation").
		Preload("Allocation.Program").
		Preload("Allocation.Object").
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *procurementRepository) Search(ctx context.Context, status, q string, page, limit int) ([]model.ProcurementRequest, int64, error) {
	var requests []model.ProcurementRequest
	var total int64

	db := GetDB(ctx, r.db)

	apply := func(query *gorm.DB) *gorm.DB {
		if status != "" {
			query = query.Where("status = ?", status)
		}
		if q != "" {
			pattern := "%" + q + "%"
			query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
		}
		return query
	}

	if err := apply(db.Model(&model.ProcurementRequest{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := apply(db.Preload("Items").Preload("Requester").Preload("Allocation")).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *procurementRepository) Update(ctx context.Context, req *model.ProcurementRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}

func (r *procurementRepository) ReplaceItems(ctx context.Context, requestID uuid.UUID, items []model.ProcurementItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("request_id = ?", requestID).Delete(&model.ProcurementItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.Create(&items).Error
}

func (r *procurementRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("request_id = ?", id).Delete(&model.ProcurementItem{}).Error; err != nil {
		return err
	}
	return db.Unscoped().Where("id = ?", id).Delete(&model.ProcurementRequest{}).Error
}

func (r *procurementRepository) Archive(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ProcurementRequest{}).Error
}

func (r *procurementRepository) CountActiveByAllocation(ctx context.Context, allocationID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.ProcurementRequest{}).
		Where("allocation_id = ?", allocationID).
		Count(&count).Error
	return count, err
}
