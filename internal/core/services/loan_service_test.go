package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"loan-backend/internal/adapters/persistence/models"
	"loan-backend/internal/adapters/persistence/repositories"
	"loan-backend/internal/adapters/persistence/testdb"
	"loan-backend/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLoanService(t *testing.T) (*LoanService, *gorm.DB) {
	t.Helper()
	db := testdb.New(t)
	return NewLoanService(repositories.NewLoanStore(db), quietLogger(), fixedClock), db
}

func TestLoanService_CreateLoan(t *testing.T) {
	ctx := context.Background()
	svc, db := newLoanService(t)
	customer := createCustomer(t, db, "10000", "2000")

	loan, err := svc.CreateLoan(ctx, &CreateLoanInput{
		CustomerID:   customer.ID,
		Amount:       dec("1000"),
		InterestRate: dec("0.2"),
		Installments: 6,
	})

	require.NoError(t, err)
	assert.NotZero(t, loan.ID)
	assert.True(t, dec("1000").Equal(loan.LoanAmount))
	assert.True(t, dec("0.2").Equal(loan.InterestRate))
	assert.Equal(t, 6, loan.NumberOfInstallments)
	assert.False(t, loan.IsPaid)
	assert.True(t, loan.CreateDate.Equal(date(2026, 10, 18)))

	// total due is 1000 * 1.2
	assert.True(t, dec("3200").Equal(reloadCustomer(t, db, customer.ID).UsedCreditLimit))

	installments := reloadInstallments(t, db, loan.ID)
	require.Len(t, installments, 6)
	wantDue := []struct {
		year  int
		month int
	}{{2026, 11}, {2026, 12}, {2027, 1}, {2027, 2}, {2027, 3}, {2027, 4}}
	for i, installment := range installments {
		assert.True(t, dec("200").Equal(installment.Amount), "installment %d amount %s", i, installment.Amount)
		assert.True(t, installment.PaidAmount.IsZero())
		assert.False(t, installment.IsPaid)
		assert.Nil(t, installment.PaymentDate)
		assert.Equal(t, wantDue[i].year, installment.DueDate.Year())
		assert.Equal(t, wantDue[i].month, int(installment.DueDate.Month()))
		assert.Equal(t, 1, installment.DueDate.Day())
	}
}

func TestLoanService_CreateLoan_RoundsInstallmentsToCents(t *testing.T) {
	ctx := context.Background()
	svc, db := newLoanService(t)
	customer := createCustomer(t, db, "5000", "0")

	loan, err := svc.CreateLoan(ctx, &CreateLoanInput{
		CustomerID:   customer.ID,
		Amount:       dec("1000"),
		InterestRate: dec("0.1"),
		Installments: 9,
	})
	require.NoError(t, err)

	installments := reloadInstallments(t, db, loan.ID)
	require.Len(t, installments, 9)
	for _, installment := range installments {
		assert.True(t, dec("122.22").Equal(installment.Amount))
	}
	assert.True(t, dec("1100").Equal(reloadCustomer(t, db, customer.ID).UsedCreditLimit))
}

func TestLoanService_CreateLoan_AcceptsAllowedCountsAndRateBounds(t *testing.T) {
	ctx := context.Background()
	svc, db := newLoanService(t)
	customer := createCustomer(t, db, "1000000", "0")

	for _, n := range domain.AllowedInstallments {
		for _, rate := range []string{"0.1", "0.5"} {
			loan, err := svc.CreateLoan(ctx, &CreateLoanInput{
				CustomerID:   customer.ID,
				Amount:       dec("1200"),
				InterestRate: dec(rate),
				Installments: n,
			})
			require.NoError(t, err, "installments=%d rate=%s", n, rate)
			assert.Len(t, reloadInstallments(t, db, loan.ID), n)
		}
	}
}

func TestLoanService_CreateLoan_Rejections(t *testing.T) {
	tests := []struct {
		name         string
		used         string
		customerID   uint
		amount       string
		rate         string
		installments int
		wantKind     error
		wantErr      error
	}{
		{"unknown customer", "0", 999, "1000", "0.2", 6, domain.ErrNotFound, domain.ErrCustomerNotFound},
		{"unknown customer wins over bad count", "0", 999, "1000", "0.2", 5, domain.ErrNotFound, domain.ErrCustomerNotFound},
		{"installments not allowed", "0", 0, "1000", "0.2", 5, domain.ErrInvalidArgument, domain.ErrInvalidInstallments},
		{"installments zero", "0", 0, "1000", "0.2", 0, domain.ErrInvalidArgument, domain.ErrInvalidInstallments},
		{"bad count wins over bad rate", "0", 0, "1000", "0.05", 7, domain.ErrInvalidArgument, domain.ErrInvalidInstallments},
		{"rate below range", "0", 0, "1000", "0.05", 6, domain.ErrInvalidArgument, domain.ErrInvalidInterestRate},
		{"rate above range", "0", 0, "1000", "0.51", 6, domain.ErrInvalidArgument, domain.ErrInvalidInterestRate},
		{"zero amount", "0", 0, "0", "0.2", 6, domain.ErrInvalidArgument, domain.ErrInvalidLoanAmount},
		{"negative amount", "0", 0, "-10", "0.2", 6, domain.ErrInvalidArgument, domain.ErrInvalidLoanAmount},
		{"not enough credit", "9500", 0, "1000", "0.2", 6, domain.ErrInsufficientCredit, domain.ErrNotEnoughCredit},
		{"one cent short", "8800.01", 0, "1000", "0.2", 6, domain.ErrInsufficientCredit, domain.ErrNotEnoughCredit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, db := newLoanService(t)
			customer := createCustomer(t, db, "10000", tt.used)
			customerID := tt.customerID
			if customerID == 0 {
				customerID = customer.ID
			}

			loan, err := svc.CreateLoan(ctx, &CreateLoanInput{
				CustomerID:   customerID,
				Amount:       dec(tt.amount),
				InterestRate: dec(tt.rate),
				Installments: tt.installments,
			})

			assert.Nil(t, loan)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.ErrorIs(t, err, tt.wantErr)

			assert.True(t, dec(tt.used).Equal(reloadCustomer(t, db, customer.ID).UsedCreditLimit))
			var loans int64
			require.NoError(t, db.Model(&models.Loan{}).Count(&loans).Error)
			assert.Zero(t, loans)
		})
	}
}

func TestLoanService_CreateLoan_ExactCreditIsEnough(t *testing.T) {
	svc, db := newLoanService(t)
	customer := createCustomer(t, db, "10000", "8800")

	_, err := svc.CreateLoan(context.Background(), &CreateLoanInput{
		CustomerID:   customer.ID,
		Amount:       dec("1000"),
		InterestRate: dec("0.2"),
		Installments: 6,
	})

	require.NoError(t, err)
	updated := reloadCustomer(t, db, customer.ID)
	assert.True(t, updated.CreditLimit.Equal(updated.UsedCreditLimit))
}

func TestLoanService_CreateLoan_RoundsToColumnPrecision(t *testing.T) {
	ctx := context.Background()
	svc, db := newLoanService(t)
	customer := createCustomer(t, db, "10000", "0")

	loan, err := svc.CreateLoan(ctx, &CreateLoanInput{
		CustomerID:   customer.ID,
		Amount:       dec("1000.555"),
		InterestRate: dec("0.20004"),
		Installments: 6,
	})

	require.NoError(t, err)
	assert.Equal(t, "1000.56", loan.LoanAmount.StringFixed(2))
	assert.True(t, dec("0.2").Equal(loan.InterestRate))
	// 1000.56 * 1.2
	assert.True(t, dec("1200.67").Equal(reloadCustomer(t, db, customer.ID).UsedCreditLimit))

	_, err = svc.CreateLoan(ctx, &CreateLoanInput{
		CustomerID:   customer.ID,
		Amount:       dec("0.004"),
		InterestRate: dec("0.2"),
		Installments: 6,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidLoanAmount)
}

func TestLoanService_CreateLoan_ConcurrentRequestsShareOneLimit(t *testing.T) {
	ctx := context.Background()
	svc, db := newLoanService(t)
	// covers one loan of 1200, not two
	customer := createCustomer(t, db, "1500", "0")

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateLoan(ctx, &CreateLoanInput{
				CustomerID:   customer.ID,
				Amount:       dec("1000"),
				InterestRate: dec("0.2"),
				Installments: 6,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrInsufficientCredit):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, rejected)
	assert.True(t, dec("1200").Equal(reloadCustomer(t, db, customer.ID).UsedCreditLimit))

	var loans int64
	require.NoError(t, db.Model(&models.Loan{}).Count(&loans).Error)
	assert.EqualValues(t, 1, loans)
}

var errScheduleWrite = errors.New("schedule write failed")

// failingScheduleStore fails every installment write made inside a transaction
type failingScheduleStore struct {
	repositories.LoanStore
}

func (s *failingScheduleStore) WithinTx(ctx context.Context, fn func(store repositories.LoanStore) error) error {
	return s.LoanStore.WithinTx(ctx, func(tx repositories.LoanStore) error {
		return fn(&failingScheduleStore{LoanStore: tx})
	})
}

func (s *failingScheduleStore) SaveInstallments(context.Context, []*models.LoanInstallment) error {
	return errScheduleWrite
}

func TestLoanService_CreateLoan_FailedWriteRollsBackEverything(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	store := &failingScheduleStore{LoanStore: repositories.NewLoanStore(db)}
	svc := NewLoanService(store, quietLogger(), fixedClock)
	customer := createCustomer(t, db, "10000", "2000")

	loan, err := svc.CreateLoan(ctx, &CreateLoanInput{
		CustomerID:   customer.ID,
		Amount:       dec("1000"),
		InterestRate: dec("0.2"),
		Installments: 6,
	})

	require.ErrorIs(t, err, errScheduleWrite)
	assert.Nil(t, loan)
	assert.True(t, dec("2000").Equal(reloadCustomer(t, db, customer.ID).UsedCreditLimit))

	var loans, installments int64
	require.NoError(t, db.Model(&models.Loan{}).Count(&loans).Error)
	require.NoError(t, db.Model(&models.LoanInstallment{}).Count(&installments).Error)
	assert.Zero(t, loans)
	assert.Zero(t, installments)
}

func TestLoanService_ListLoans(t *testing.T) {
	ctx := context.Background()
	svc, db := newLoanService(t)
	first := createCustomer(t, db, "10000", "0")
	second := createCustomer(t, db, "10000", "0")

	t.Run("unknown customer", func(t *testing.T) {
		_, err := svc.ListLoans(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
	})

	t.Run("no loans is an empty list", func(t *testing.T) {
		loans, err := svc.ListLoans(ctx, first.ID)
		require.NoError(t, err)
		assert.NotNil(t, loans)
		assert.Empty(t, loans)
	})

	t.Run("only the customer's loans", func(t *testing.T) {
		for _, customerID := range []uint{first.ID, second.ID, first.ID} {
			_, err := svc.CreateLoan(ctx, &CreateLoanInput{
				CustomerID:   customerID,
				Amount:       dec("100"),
				InterestRate: dec("0.2"),
				Installments: 6,
			})
			require.NoError(t, err)
		}

		loans, err := svc.ListLoans(ctx, first.ID)
		require.NoError(t, err)
		require.Len(t, loans, 2)
		assert.Less(t, loans[0].ID, loans[1].ID)
		for _, loan := range loans {
			assert.Equal(t, first.ID, loan.CustomerID)
		}
	})
}

func TestLoanService_ListInstallments(t *testing.T) {
	ctx := context.Background()
	svc, db := newLoanService(t)
	customer := createCustomer(t, db, "10000", "0")

	_, err := svc.ListInstallments(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)

	loan, err := svc.CreateLoan(ctx, &CreateLoanInput{
		CustomerID:   customer.ID,
		Amount:       dec("2400"),
		InterestRate: dec("0.5"),
		Installments: 12,
	})
	require.NoError(t, err)

	installments, err := svc.ListInstallments(ctx, loan.ID)
	require.NoError(t, err)
	require.Len(t, installments, 12)
	for i := 1; i < len(installments); i++ {
		assert.True(t, installments[i-1].DueDate.Before(installments[i].DueDate))
	}
	assert.True(t, dec("300").Equal(installments[0].Amount))
}

func TestLoanService_PayLoan_DueToday(t *testing.T) {
	ctx := context.Background()
	svc, db := newLoanService(t)
	customer := createCustomer(t, db, "10000", "0")
	loan := createLoanWith(t, db, customer.ID,
		&models.LoanInstallment{Amount: dec("200"), DueDate: date(2026, 10, 18)},
	)

	t.Run("less than the installment pays nothing", func(t *testing.T) {
		result, err := svc.PayLoan(ctx, loan.ID, dec("100"))

		require.NoError(t, err)
		assert.True(t, result.NothingPaid())
		assert.True(t, result.TotalPaid.IsZero())
		assert.False(t, result.LoanPaid)
		assert.Equal(t, domain.MsgInsufficientFunds, result.Message)

		installments := reloadInstallments(t, db, loan.ID)
		assert.False(t, installments[0].IsPaid)
		assert.True(t, installments[0].PaidAmount.IsZero())
		assert.Nil(t, installments[0].PaymentDate)
		assert.False(t, reloadLoan(t, db, loan.ID).IsPaid)
	})

	t.Run("exact amount pays it at face value", func(t *testing.T) {
		result, err := svc.PayLoan(ctx, loan.ID, dec("200"))

		require.NoError(t, err)
		assert.Equal(t, 1, result.InstallmentsPaid)
		assert.True(t, dec("200").Equal(result.TotalPaid))
		assert.True(t, result.LoanPaid)
		assert.Equal(t, "Successfully paid 1 installments. Total amount spent: 200.00", result.Message)

		installments := reloadInstallments(t, db, loan.ID)
		assert.True(t, installments[0].IsPaid)
		assert.True(t, dec("200").Equal(installments[0].PaidAmount))
		require.NotNil(t, installments[0].PaymentDate)
		assert.True(t, installments[0].PaymentDate.Equal(date(2026, 10, 18)))
		assert.True(t, reloadLoan(t, db, loan.ID).IsPaid)
	})

	t.Run("paid loan reports already paid", func(t *testing.T) {
		result, err := svc.PayLoan(ctx, loan.ID, dec("500"))

		require.NoError(t, err)
		assert.True(t, result.NothingPaid())
		assert.True(t, result.LoanPaid)
		assert.Equal(t, domain.MsgLoanAlreadyPaid, result.Message)
	})
}

func TestLoanService_PayLoan_EarlyAndLate(t *testing.T) {
	ctx := context.Background()
	svc, db := newLoanService(t)
	customer := createCustomer(t, db, "10000", "0")
	loan := createLoanWith(t, db, customer.ID,
		// 17 days late
		&models.LoanInstallment{Amount: dec("200"), DueDate: date(2026, 10, 1)},
		// 14 days early
		&models.LoanInstallment{Amount: dec("200"), DueDate: date(2026, 11, 1)},
		&models.LoanInstallment{Amount: dec("200"), DueDate: date(2026, 12, 1)},
	)

	result, err := svc.PayLoan(ctx, loan.ID, dec("450"))

	require.NoError(t, err)
	assert.Equal(t, 2, result.InstallmentsPaid)
	// balance is reduced by face amounts, not by the adjusted amounts
	assert.True(t, dec("400").Equal(result.TotalPaid))
	assert.False(t, result.LoanPaid)

	installments := reloadInstallments(t, db, loan.ID)
	assert.True(t, dec("203.40").Equal(installments[0].PaidAmount), installments[0].PaidAmount.String())
	assert.True(t, dec("197.20").Equal(installments[1].PaidAmount), installments[1].PaidAmount.String())
	assert.False(t, installments[2].IsPaid)
	assert.True(t, installments[2].PaidAmount.IsZero())
	assert.False(t, reloadLoan(t, db, loan.ID).IsPaid)
}

func TestLoanService_PayLoan_SkipsPaidAndStopsAtFirstUncovered(t *testing.T) {
	ctx := context.Background()
	svc, db := newLoanService(t)
	customer := createCustomer(t, db, "10000", "0")

	loan, err := svc.CreateLoan(ctx, &CreateLoanInput{
		CustomerID:   customer.ID,
		Amount:       dec("1000"),
		InterestRate: dec("0.2"),
		Installments: 6,
	})
	require.NoError(t, err)

	first, err := svc.PayLoan(ctx, loan.ID, dec("200"))
	require.NoError(t, err)
	assert.Equal(t, 1, first.InstallmentsPaid)

	second, err := svc.PayLoan(ctx, loan.ID, dec("399.99"))
	require.NoError(t, err)
	assert.Equal(t, 1, second.InstallmentsPaid)
	assert.True(t, dec("200").Equal(second.TotalPaid))

	installments := reloadInstallments(t, db, loan.ID)
	paid := 0
	for _, installment := range installments {
		if installment.IsPaid {
			paid++
		}
	}
	assert.Equal(t, 2, paid)
	assert.True(t, installments[0].IsPaid)
	assert.True(t, installments[1].IsPaid)
	assert.False(t, installments[2].IsPaid)
}

func TestLoanService_PayLoan_FullPayoffIsolatedPerLoan(t *testing.T) {
	ctx := context.Background()
	svc, db := newLoanService(t)
	customer := createCustomer(t, db, "10000", "0")

	create := func() *models.Loan {
		loan, err := svc.CreateLoan(ctx, &CreateLoanInput{
			CustomerID:   customer.ID,
			Amount:       dec("1000"),
			InterestRate: dec("0.2"),
			Installments: 6,
		})
		require.NoError(t, err)
		return loan
	}
	target := create()
	other := create()

	result, err := svc.PayLoan(ctx, target.ID, dec("5000"))

	require.NoError(t, err)
	assert.Equal(t, 6, result.InstallmentsPaid)
	assert.True(t, dec("1200").Equal(result.TotalPaid))
	assert.True(t, result.LoanPaid)
	assert.True(t, reloadLoan(t, db, target.ID).IsPaid)

	assert.False(t, reloadLoan(t, db, other.ID).IsPaid)
	for _, installment := range reloadInstallments(t, db, other.ID) {
		assert.False(t, installment.IsPaid)
	}

	// credit is not given back on payoff
	assert.True(t, dec("2400").Equal(reloadCustomer(t, db, customer.ID).UsedCreditLimit))
}

func TestLoanService_PayLoan_Rejections(t *testing.T) {
	ctx := context.Background()
	svc, db := newLoanService(t)
	customer := createCustomer(t, db, "10000", "0")
	loan := createLoanWith(t, db, customer.ID,
		&models.LoanInstallment{Amount: dec("200"), DueDate: date(2026, 11, 1)},
	)

	_, err := svc.PayLoan(ctx, 999, dec("200"))
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	for _, amount := range []string{"0", "-1"} {
		_, err := svc.PayLoan(ctx, loan.ID, dec(amount))
		assert.ErrorIs(t, err, domain.ErrInvalidPayment)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	}
}

func TestAdjustedAmount(t *testing.T) {
	today := date(2026, 10, 18)

	tests := []struct {
		name string
		due  time.Time
		want string
	}{
		{"on time", date(2026, 10, 18), "200"},
		{"one day late", date(2026, 10, 17), "200.2"},
		{"one day early", date(2026, 10, 19), "199.8"},
		{"late across a year boundary", date(2025, 12, 1), "264.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adjustedAmount(dec("200"), tt.due, today)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}
