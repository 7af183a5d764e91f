package repository

import (
	"context"

	"procurement-portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReferenceRepository serves the classification reference data behind
// allocations: programs, classifications, and objects of expenditure.
type ReferenceRepository interface {
	CreateProgram(ctx context.Context, program *model.Program) error
	UpdateProgram(ctx context.Context, program *model.Program) error
	FindProgramByID(ctx context.Context, id uuid.UUID) (*model.Program, error)
	ListPrograms(ctx context.Context) ([]model.Program, error)

	CreateClassification(ctx context.Context, classification *model.Classification) error
	ListClassifications(ctx context.Context) ([]model.Classification, error)

	CreateObject(ctx context.Context, object *model.ObjectOfExpenditure) error
	FindObjectByID(ctx context.Context, id uuid.UUID) (*model.ObjectOfExpenditure, error)
	ListObjects(ctx context.Context, classificationID uuid.UUID) ([]model.ObjectOfExpenditure, error)
}

type referenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) CreateProgram(ctx context.Context, program *model.Program) error {
	return GetDB(ctx, r.db).Create(program).Error
}

func (r *referenceRepository) UpdateProgram(ctx context.Context, program *model.Program) error {
	return GetDB(ctx, r.db).Save(program).Error
}

func (r *referenceRepository) FindProgramByID(ctx context.Context, id uuid.UUID) (*model.Program, error) {
	var program model.Program
	if err := GetDB(ctx, r.db).First(&program, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *referenceRepository) ListPrograms(ctx context.Context) ([]model.Program, error) {
	var programs []model.Program
	if err := GetDB(ctx, r.db).Order("code ASC").Find(&programs).Error; err != nil {
		return nil, err
	}
	return programs, nil
}

func (r *referenceRepository) CreateClassification(ctx context.Context, classification *model.Classification) error {
	return GetDB(ctx, r.db).Create(classification).Error
}

func (r *referenceRepository) ListClassifications(ctx context.Context) ([]model.Classification, error) {
	var classifications []model.Classification
	if err := GetDB(ctx, r.db).Order("code ASC").Find(&classifications).Error; err != nil {
		return nil, err
	}
	return classifications, nil
}

func (r *referenceRepository) CreateObject(ctx context.Context, object *model.ObjectOfExpenditure) error {
	return GetDB(ctx, r.db).Create(object).Error
}

func (r *referenceRepository) FindObjectByID(ctx context.Context, id uuid.UUID) (*model.ObjectOfExpenditure, error) {
	var object model.ObjectOfExpenditure
	if err := GetDB(ctx, r.db).Preload("Classification").First(&object, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &object, nil
}

func (r *referenceRepository) ListObjects(ctx context.Context, classificationID uuid.UUID) ([]model.ObjectOfExpenditure, error) {
	var objects []model.ObjectOfExpenditure
	query := GetDB(ctx, r.db).Preload("Classification")
	if classificationID != uuid.Nil {
		query = query.Where("classification_id = ?", classificationID)
	}
	if err := query.Order("code ASC").Find(&objects).Error; err != nil {
		return nil, err
	}
	return objects, nil
}
