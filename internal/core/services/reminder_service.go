package services

import (
	"context"
	"fmt"
	"time"

	"loan-backend/internal/adapters/persistence/repositories"
	"loan-backend/internal/config"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// overdueLookback bounds how far back reminders look for unpaid installments
const overdueLookback = 10 * 365 * 24 * time.Hour

// ReminderService periodically reminds customers about overdue and upcoming installments
type ReminderService struct {
	installmentRepo repositories.InstallmentRepository
	notifier        Notifier
	cfg             config.ReminderConfig
	log             *logrus.Logger
	now             func() time.Time
	cron            *cron.Cron
}

// NewReminderService creates a new reminder service. A nil clock means time.Now.
func NewReminderService(
	installmentRepo repositories.InstallmentRepository,
	notifier Notifier,
	cfg config.ReminderConfig,
	log *logrus.Logger,
	now func() time.Time,
) *ReminderService {
	if now == nil {
		now = time.Now
	}
	return &ReminderService{
		installmentRepo: installmentRepo,
		notifier:        notifier,
		cfg:             cfg,
		log:             log,
		now:             now,
	}
}

// Start schedules the reminder job. The schedule is a standard 5-field cron expression in UTC.
func (s *ReminderService) Start() error {
	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc(s.cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if _, err := s.RunOnce(ctx); err != nil {
			s.log.WithError(err).Error("Reminder run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", s.cfg.Schedule, err)
	}

	s.cron = c
	c.Start()
	s.log.WithField("schedule", s.cfg.Schedule).Info("Reminder scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *ReminderService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.log.Info("Reminder scheduler stopped")
}

// RunOnce sends a reminder for every unpaid installment that is overdue or due
// within the configured number of days, and returns how many were sent.
// Customers without an email address are skipped; a failed send does not stop the run.
func (s *ReminderService) RunOnce(ctx context.Context) (int, error) {
	today := dateOf(s.now())
	from := today.Add(-overdueLookback)
	to := today.AddDate(0, 0, s.cfg.DaysAhead)

	installments, err := s.installmentRepo.ListUnpaidDueBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("list unpaid installments: %w", err)
	}

	sent := 0
	for _, installment := range installments {
		if installment.Loan == nil || installment.Loan.Customer == nil {
			continue
		}
		customer := installment.Loan.Customer
		if customer.Email == "" {
			s.log.WithField("customer_id", customer.ID).Debug("Skipping reminder, customer has no email")
			continue
		}

		due := dateOf(installment.DueDate)
		reminder := &Reminder{
			CustomerName: customer.FullName(),
			Email:        customer.Email,
			LoanID:       installment.LoanID,
			DueDate:      due,
			Amount:       installment.Amount,
			AmountToday:  adjustedAmount(installment.Amount, due, today),
			DaysLate:     daysBetween(due, today),
		}
		if err := s.notifier.Notify(ctx, reminder); err != nil {
			s.log.WithError(err).WithField("installment_id", installment.ID).Warn("Reminder not delivered")
			continue
		}
		sent++
	}

	s.log.WithFields(logrus.Fields{"candidates": len(installments), "sent": sent}).Info("Reminder run finished")
	return sent, nil
}
