package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loan-backend/internal/adapters/persistence/models"
	"loan-backend/internal/adapters/persistence/repositories"
	"loan-backend/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LoanService issues loans and applies payments to their installments
type LoanService struct {
	store repositories.LoanStore
	log   *logrus.Logger
	now   func() time.Time
}

// NewLoanService creates a new loan service. A nil clock means time.Now.
func NewLoanService(store repositories.LoanStore, log *logrus.Logger, now func() time.Time) *LoanService {
	if now == nil {
		now = time.Now
	}
	return &LoanService{
		store: store,
		log:   log,
		now:   now,
	}
}

// CreateLoanInput represents create loan input
type CreateLoanInput struct {
	CustomerID   uint            `json:"customer_id" validate:"required"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	InterestRate decimal.Decimal `json:"interest_rate" validate:"required"`
	Installments int             `json:"installments" validate:"required"`
}

// PayLoanInput represents pay loan input
type PayLoanInput struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// today is the service clock's calendar date at UTC midnight
func (s *LoanService) today() time.Time {
	return dateOf(s.now())
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CreateLoan validates the request against the customer's available credit and,
// in one transaction, books the credit, the loan and its installment schedule.
func (s *LoanService) CreateLoan(ctx context.Context, input *CreateLoanInput) (*models.Loan, error) {
	logger := s.log.WithFields(logrus.Fields{
		"customer_id":  input.CustomerID,
		"amount":       input.Amount.String(),
		"rate":         input.InterestRate.String(),
		"installments": input.Installments,
	})
	logger.Info("Creating loan")

	// match the precision of the stored columns
	amount := input.Amount.Round(2)
	rate := input.InterestRate.Round(4)

	var loan *models.Loan
	err := s.store.WithinTx(ctx, func(tx repositories.LoanStore) error {
		customer, err := tx.LockCustomer(ctx, input.CustomerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCustomerNotFound
			}
			return fmt.Errorf("lock customer: %w", err)
		}

		if !domain.IsAllowedInstallments(input.Installments) {
			return domain.ErrInvalidInstallments
		}
		if rate.LessThan(domain.MinInterestRate) || rate.GreaterThan(domain.MaxInterestRate) {
			return domain.ErrInvalidInterestRate
		}
		if !amount.IsPositive() {
			return domain.ErrInvalidLoanAmount
		}

		totalDue := amount.Mul(decimal.NewFromInt(1).Add(rate)).Round(2)
		available := customer.AvailableCredit()
		if available.LessThan(totalDue) {
			logger.WithFields(logrus.Fields{
				"available": available.String(),
				"total_due": totalDue.String(),
			}).Warn("Loan rejected, not enough credit")
			return domain.ErrNotEnoughCredit
		}

		customer.UsedCreditLimit = customer.UsedCreditLimit.Add(totalDue)
		if err := tx.SaveCustomer(ctx, customer); err != nil {
			return fmt.Errorf("save customer: %w", err)
		}

		today := s.today()
		loan = &models.Loan{
			CustomerID:           customer.ID,
			LoanAmount:           amount,
			InterestRate:         rate,
			NumberOfInstallments: input.Installments,
			CreateDate:           today,
			IsPaid:               false,
		}
		if err := tx.SaveLoan(ctx, loan); err != nil {
			return fmt.Errorf("save loan: %w", err)
		}

		if err := tx.SaveInstallments(ctx, buildSchedule(loan.ID, totalDue, input.Installments, today)); err != nil {
			return fmt.Errorf("save installments: %w", err)
		}
		return nil
	})
	if err != nil {
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			logger.WithError(err).Warn("Loan rejected")
		} else {
			logger.WithError(err).Error("Failed to create loan")
		}
		return nil, err
	}

	logger.WithField("loan_id", loan.ID).Info("Loan created")
	return loan, nil
}

// buildSchedule splits totalDue into n equal installments due on the first day
// of each of the n months following today. The rounding remainder is dropped.
func buildSchedule(loanID uint, totalDue decimal.Decimal, n int, today time.Time) []*models.LoanInstallment {
	amount := totalDue.Div(decimal.NewFromInt(int64(n))).Round(2)

	schedule := make([]*models.LoanInstallment, 0, n)
	for i := 1; i <= n; i++ {
		schedule = append(schedule, &models.LoanInstallment{
			LoanID:     loanID,
			Amount:     amount,
			PaidAmount: decimal.Zero,
			DueDate:    time.Date(today.Year(), today.Month()+time.Month(i), 1, 0, 0, 0, 0, time.UTC),
			IsPaid:     false,
		})
	}
	return schedule
}

// ListLoans lists every loan of a customer
func (s *LoanService) ListLoans(ctx context.Context, customerID uint) ([]*models.Loan, error) {
	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}

	loans, err := s.store.FindLoansByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("find loans: %w", err)
	}
	if loans == nil {
		loans = []*models.Loan{}
	}

	s.log.WithFields(logrus.Fields{"customer_id": customerID, "count": len(loans)}).Debug("Listed loans")
	return loans, nil
}

// ListInstallments lists the installments of a loan, earliest due date first
func (s *LoanService) ListInstallments(ctx context.Context, loanID uint) ([]*models.LoanInstallment, error) {
	if _, err := s.store.GetLoan(ctx, loanID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, fmt.Errorf("get loan: %w", err)
	}

	installments, err := s.store.FindInstallmentsByLoan(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("find installments: %w", err)
	}
	if installments == nil {
		installments = []*models.LoanInstallment{}
	}
	return installments, nil
}

// PayLoan spends amount on the loan's unpaid installments in due date order.
// Only whole installments are paid; the scan stops at the first one amount cannot cover.
// A payment that covers nothing is a normal result and writes nothing.
func (s *LoanService) PayLoan(ctx context.Context, loanID uint, amount decimal.Decimal) (*domain.PaymentResult, error) {
	logger := s.log.WithFields(logrus.Fields{
		"loan_id": loanID,
		"amount":  amount.String(),
	})

	if !amount.IsPositive() {
		logger.Warn("Payment rejected, amount must be positive")
		return nil, domain.ErrInvalidPayment
	}
	logger.Info("Processing payment")

	result := &domain.PaymentResult{LoanID: loanID, TotalPaid: decimal.Zero}
	err := s.store.WithinTx(ctx, func(tx repositories.LoanStore) error {
		loan, err := tx.LockLoan(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLoanNotFound
			}
			return fmt.Errorf("lock loan: %w", err)
		}

		installments, err := tx.FindInstallmentsByLoan(ctx, loanID)
		if err != nil {
			return fmt.Errorf("find installments: %w", err)
		}

		if loan.IsPaid || allPaid(installments) {
			result.LoanPaid = true
			result.Message = domain.MsgLoanAlreadyPaid
			return nil
		}

		today := s.today()
		remaining := amount
		var paid []*models.LoanInstallment

		for _, installment := range installments {
			if installment.IsPaid {
				continue
			}
			if remaining.LessThan(installment.Amount) {
				break
			}

			paymentDate := today
			installment.PaidAmount = adjustedAmount(installment.Amount, installment.DueDate, today)
			installment.IsPaid = true
			installment.PaymentDate = &paymentDate

			remaining = remaining.Sub(installment.Amount)
			result.TotalPaid = result.TotalPaid.Add(installment.Amount)
			paid = append(paid, installment)

			logger.WithFields(logrus.Fields{
				"due_date":    installment.DueDate.Format("2006-01-02"),
				"amount":      installment.Amount.String(),
				"paid_amount": installment.PaidAmount.String(),
			}).Debug("Installment paid")
		}

		if len(paid) == 0 {
			result.Message = domain.MsgInsufficientFunds
			return nil
		}

		if err := tx.SaveInstallments(ctx, paid); err != nil {
			return fmt.Errorf("save installments: %w", err)
		}

		if allPaid(installments) {
			loan.IsPaid = true
			if err := tx.SaveLoan(ctx, loan); err != nil {
				return fmt.Errorf("save loan: %w", err)
			}
		}

		result.InstallmentsPaid = len(paid)
		result.LoanPaid = loan.IsPaid
		result.Message = domain.PaidMessage(result.InstallmentsPaid, result.TotalPaid)
		return nil
	})
	if err != nil {
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			logger.WithError(err).Warn("Payment rejected")
		} else {
			logger.WithError(err).Error("Failed to process payment")
		}
		return nil, err
	}

	if result.NothingPaid() {
		logger.Info(result.Message)
		return result, nil
	}

	logger.WithFields(logrus.Fields{
		"installments_paid": result.InstallmentsPaid,
		"total_paid":        result.TotalPaid.String(),
		"loan_paid":         result.LoanPaid,
	}).Info(result.Message)
	return result, nil
}

// adjustedAmount applies the daily reward for early payment or penalty for late payment
func adjustedAmount(amount decimal.Decimal, dueDate, today time.Time) decimal.Decimal {
	days := daysBetween(dateOf(dueDate), today)
	switch {
	case days < 0:
		discount := amount.Mul(domain.DailyAdjustmentRate).Mul(decimal.NewFromInt(-days))
		return amount.Sub(discount).Round(2)
	case days > 0:
		penalty := amount.Mul(domain.DailyAdjustmentRate).Mul(decimal.NewFromInt(days))
		return amount.Add(penalty).Round(2)
	default:
		return amount
	}
}

// daysBetween returns to - from in whole days; both are UTC midnights
func daysBetween(from, to time.Time) int64 {
	return int64(to.Sub(from).Hours() / 24)
}

func allPaid(installments []*models.LoanInstallment) bool {
	for _, installment := range installments {
		if !installment.IsPaid {
			return false
		}
	}
	return len(installments) > 0
}
