package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkarpenko/interio_bot/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) GetActivePackages(ctx context.Context) ([]models.Package, error) {
	var packages []models.Package
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC").
		Find(&packages).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to get active packages: %w", err)
	}
	return packages, nil
}

func (r *Repository) GetPackageByID(ctx context.Context, id uint) (*models.Package, error) {
	var pkg models.Package
	err := r.db.WithContext(ctx).First(&pkg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get package %d: %w", id, err)
	}
	return &pkg, nil
}

func (r *Repository) TogglePackage(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Package{}).
		Where("id = ?", id).
		Update("is_active", gorm.Expr("NOT is_active"))
	if res.Error != nil {
		return fmt.Errorf("failed to toggle package %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("package %d not found", id)
	}
	return nil
}
