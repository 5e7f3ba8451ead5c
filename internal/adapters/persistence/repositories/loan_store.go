package repositories

import (
	"context"

	"loan-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// loanStore implements LoanStore on top of gorm
type loanStore struct {
	db *gorm.DB
}

// NewLoanStore creates a new loan store
func NewLoanStore(db *gorm.DB) LoanStore {
	return &loanStore{db: db}
}

// WithinTx runs fn inside a database transaction
func (s *loanStore) WithinTx(ctx context.Context, fn func(store LoanStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&loanStore{db: tx})
	})
}

// GetCustomer gets a customer by ID
func (s *loanStore) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// LockCustomer gets a customer by ID with SELECT ... FOR UPDATE
func (s *loanStore) LockCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&customer, id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetLoan gets a loan by ID
func (s *loanStore) GetLoan(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	if err := s.db.WithContext(ctx).First(&loan, id).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

// LockLoan gets a loan by ID with SELECT ... FOR UPDATE
func (s *loanStore) LockLoan(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// SaveCustomer inserts or updates a customer
func (s *loanStore) SaveCustomer(ctx context.Context, customer *models.Customer) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(customer).Error
}

// SaveLoan inserts or updates a loan
func (s *loanStore) SaveLoan(ctx context.Context, loan *models.Loan) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(loan).Error
}

// SaveInstallments inserts new installments in one batch and updates existing ones
func (s *loanStore) SaveInstallments(ctx context.Context, installments []*models.LoanInstallment) error {
	var fresh []*models.LoanInstallment
	for _, installment := range installments {
		if installment.ID == 0 {
			fresh = append(fresh, installment)
			continue
		}
		if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(installment).Error; err != nil {
			return err
		}
	}

	if len(fresh) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(&fresh).Error
}

// FindLoansByCustomer gets all loans of a customer
func (s *loanStore) FindLoansByCustomer(ctx context.Context, customerID uint) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("id ASC").
		Find(&loans).Error
	return loans, err
}

// FindInstallmentsByLoan gets all installments of a loan in due date order
func (s *loanStore) FindInstallmentsByLoan(ctx context.Context, loanID uint) ([]*models.LoanInstallment, error) {
	var installments []*models.LoanInstallment
	err := s.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("due_date ASC").
		Order("id ASC").
		Find(&installments).Error
	return installments, err
}
