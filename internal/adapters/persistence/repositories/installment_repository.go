package repositories

import (
	"context"
	"time"

	"loan-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// installmentRepository implements InstallmentRepository interface
type installmentRepository struct {
	db *gorm.DB
}

// NewInstallmentRepository creates a new installment repository
func NewInstallmentRepository(db *gorm.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

// ListUnpaidDueBetween lists unpaid installments due in [from, to]
func (r *installmentRepository) ListUnpaidDueBetween(ctx context.Context, from, to time.Time) ([]*models.LoanInstallment, error) {
	var installments []*models.LoanInstallment
	err := r.db.WithContext(ctx).
		Preload("Loan.Customer").
		Where("is_paid = ?", false).
		Where("due_date >= ? AND due_date <= ?", from, to).
		Order("due_date ASC").
		Order("id ASC").
		Find(&installments).Error
	return installments, err
}
