package services

import (
	"io"
	"testing"
	"time"

	"loan-backend/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixedNow is 2026-10-18 10:30 UTC
var fixedNow = time.Date(2026, 10, 18, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func createCustomer(t *testing.T, db *gorm.DB, limit, used string) *models.Customer {
	t.Helper()
	customer := &models.Customer{
		Name:            "Fatih",
		Surname:         "Terim",
		Email:           "fatih@example.com",
		CreditLimit:     dec(limit),
		UsedCreditLimit: dec(used),
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// createLoanWith stores a loan with the given installments, bypassing issuance rules
func createLoanWith(t *testing.T, db *gorm.DB, customerID uint, installments ...*models.LoanInstallment) *models.Loan {
	t.Helper()
	loan := &models.Loan{
		CustomerID:           customerID,
		LoanAmount:           dec("1000"),
		InterestRate:         dec("0.2"),
		NumberOfInstallments: len(installments),
		CreateDate:           date(2026, 9, 1),
	}
	require.NoError(t, db.Create(loan).Error)
	for _, installment := range installments {
		installment.LoanID = loan.ID
		require.NoError(t, db.Create(installment).Error)
	}
	return loan
}

func reloadCustomer(t *testing.T, db *gorm.DB, id uint) *models.Customer {
	t.Helper()
	var customer models.Customer
	require.NoError(t, db.First(&customer, id).Error)
	return &customer
}

func reloadLoan(t *testing.T, db *gorm.DB, id uint) *models.Loan {
	t.Helper()
	var loan models.Loan
	require.NoError(t, db.First(&loan, id).Error)
	return &loan
}

func reloadInstallments(t *testing.T, db *gorm.DB, loanID uint) []*models.LoanInstallment {
	t.Helper()
	var installments []*models.LoanInstallment
	require.NoError(t, db.Where("loan_id = ?", loanID).Order("due_date ASC").Order("id ASC").Find(&installments).Error)
	return installments
}
