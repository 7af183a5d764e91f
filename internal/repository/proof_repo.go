package repository

import (
	"context"

	"procurement-portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProofRepository interface {
	Create(ctx context.Context, proof *model.Proof) error
	CountByRequest(ctx context.Context, requestID uuid.UUID) (int64, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.Proof, error)
}

type proofRepository struct {
	db *gorm.DB
}

func NewProofRepository(db *gorm.DB) ProofRepository {
	return &proofRepository{db: db}
}

func (r *proofRepository) Create(ctx context.Context, proof *model.Proof) error {
	return GetDB(ctx, r.db).Create(proof).Error
}

func (r *proofRepository) CountByRequest(ctx context.Context, requestID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Proof{}).Where("request_id = ?", requestID).Count(&count).Error
	return count, err
}

func (r *proofRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.Proof, error) {
	var proofs []model.Proof
	if err := GetDB(ctx, r.db).
		Preload("Uploader").
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		Find(&proofs).Error; err != nil {
		return nil, err
	}
	return proofs, nil
}
