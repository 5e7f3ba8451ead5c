package services

import (
	"context"

	"loan-backend/internal/adapters/persistence/models"
	"loan-backend/internal/core/domain"

	"github.com/shopspring/decimal"
)

// Handlers depend on these interfaces rather than on the concrete services

// LoanOperations issues loans and applies payments
type LoanOperations interface {
	CreateLoan(ctx context.Context, input *CreateLoanInput) (*models.Loan, error)
	ListLoans(ctx context.Context, customerID uint) ([]*models.Loan, error)
	ListInstallments(ctx context.Context, loanID uint) ([]*models.LoanInstallment, error)
	PayLoan(ctx context.Context, loanID uint, amount decimal.Decimal) (*domain.PaymentResult, error)
}

// CustomerOperations manages customers
type CustomerOperations interface {
	Create(ctx context.Context, input *CreateCustomerInput) (*models.CustomerResponse, error)
	GetByID(ctx context.Context, id uint) (*models.CustomerResponse, error)
	List(ctx context.Context, offset, limit int) (*ListCustomersOutput, error)
}

// Authenticator logs operators in
type Authenticator interface {
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
}

var (
	_ LoanOperations     = (*LoanService)(nil)
	_ CustomerOperations = (*CustomerService)(nil)
	_ Authenticator      = (*AuthService)(nil)
	_ Notifier           = (*EmailNotifier)(nil)
	_ Notifier           = (*LogNotifier)(nil)
)
