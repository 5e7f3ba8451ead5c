package repositories

import (
	"context"
	"time"

	"loan-backend/internal/adapters/persistence/models"
)

// LoanStore is the record store behind loan issuance and payment.
// Lookups of a missing row return gorm.ErrRecordNotFound.
type LoanStore interface {
	// WithinTx runs fn with a store bound to a single transaction.
	// fn returning an error rolls back every write made through that store.
	WithinTx(ctx context.Context, fn func(store LoanStore) error) error

	GetCustomer(ctx context.Context, id uint) (*models.Customer, error)
	// LockCustomer reads a customer with a row lock held until the transaction ends
	LockCustomer(ctx context.Context, id uint) (*models.Customer, error)
	GetLoan(ctx context.Context, id uint) (*models.Loan, error)
	// LockLoan reads a loan with a row lock held until the transaction ends
	LockLoan(ctx context.Context, id uint) (*models.Loan, error)

	SaveCustomer(ctx context.Context, customer *models.Customer) error
	SaveLoan(ctx context.Context, loan *models.Loan) error
	SaveInstallments(ctx context.Context, installments []*models.LoanInstallment) error

	FindLoansByCustomer(ctx context.Context, customerID uint) ([]*models.Loan, error)
	// FindInstallmentsByLoan returns installments earliest due date first
	FindInstallmentsByLoan(ctx context.Context, loanID uint) ([]*models.LoanInstallment, error)
}

// CustomerRepository defines customer repository interface
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uint) (*models.Customer, error)
	List(ctx context.Context, offset, limit int) ([]*models.Customer, int64, error)
}

// InstallmentRepository defines read access used by background jobs
type InstallmentRepository interface {
	// ListUnpaidDueBetween returns unpaid installments with from <= due_date <= to,
	// with Loan and Loan.Customer preloaded
	ListUnpaidDueBetween(ctx context.Context, from, to time.Time) ([]*models.LoanInstallment, error)
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}
