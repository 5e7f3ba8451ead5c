package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AllowedInstallments lists the installment counts a loan may be split into
var AllowedInstallments = []int{6, 9, 12, 24}

// Interest rate bounds, inclusive
var (
	MinInterestRate = decimal.RequireFromString("0.1")
	MaxInterestRate = decimal.RequireFromString("0.5")
)

// DailyAdjustmentRate is the per-day discount (early) or penalty (late) applied to an installment
var DailyAdjustmentRate = decimal.RequireFromString("0.001")

// IsAllowedInstallments reports whether n is an allowed installment count
func IsAllowedInstallments(n int) bool {
	for _, allowed := range AllowedInstallments {
		if n == allowed {
			return true
		}
	}
	return false
}

// PaymentResult summarizes one PayLoan call.
// InstallmentsPaid == 0 means nothing was paid and nothing was written.
type PaymentResult struct {
	LoanID           uint            `json:"loan_id"`
	InstallmentsPaid int             `json:"installments_paid"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	LoanPaid         bool            `json:"loan_paid"`
	Message          string          `json:"message"`
}

// NothingPaid reports whether the payment covered no installment
func (r *PaymentResult) NothingPaid() bool {
	return r.InstallmentsPaid == 0
}

// Payment result messages
const (
	MsgInsufficientFunds = "Insufficient funds to pay any installment."
	MsgLoanAlreadyPaid   = "Loan is already fully paid."
)

// PaidMessage formats the success message of a payment
func PaidMessage(count int, total decimal.Decimal) string {
	return fmt.Sprintf("Successfully paid %d installments. Total amount spent: %s", count, total.StringFixed(2))
}
