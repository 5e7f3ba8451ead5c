package services

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"loan-backend/internal/config"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Reminder describes one unpaid installment to tell a customer about
type Reminder struct {
	CustomerName string
	Email        string
	LoanID       uint
	DueDate      time.Time
	Amount       decimal.Decimal
	// AmountToday is what paying today would record, penalty or reward included
	AmountToday decimal.Decimal
	DaysLate    int64
}

// Overdue reports whether the due date has passed
func (r *Reminder) Overdue() bool {
	return r.DaysLate > 0
}

// Notifier delivers installment reminders
type Notifier interface {
	Notify(ctx context.Context, reminder *Reminder) error
}

// EmailNotifier sends reminders over SMTP
type EmailNotifier struct {
	cfg  config.SMTPConfig
	log  *logrus.Logger
	send func(e *email.Email) error
}

// NewEmailNotifier creates a notifier for the configured SMTP server
func NewEmailNotifier(cfg config.SMTPConfig, log *logrus.Logger) *EmailNotifier {
	n := &EmailNotifier{cfg: cfg, log: log}
	n.send = func(e *email.Email) error {
		addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
		var auth smtp.Auth
		if cfg.Username != "" {
			auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
		}
		return e.Send(addr, auth)
	}
	return n
}

// Notify sends one reminder email
func (n *EmailNotifier) Notify(ctx context.Context, reminder *Reminder) error {
	e := email.NewEmail()
	e.From = n.cfg.From
	e.To = []string{reminder.Email}
	e.Subject, e.Text = reminderMessage(reminder)

	if err := n.send(e); err != nil {
		n.log.WithError(err).WithField("to", reminder.Email).Error("Failed to send reminder email")
		return fmt.Errorf("send reminder email: %w", err)
	}

	n.log.WithFields(logrus.Fields{"to": reminder.Email, "subject": e.Subject}).Info("Reminder email sent")
	return nil
}

func reminderMessage(r *Reminder) (string, []byte) {
	subject := "Upcoming Loan Installment Reminder"
	if r.Overdue() {
		subject = "Overdue Loan Installment Notification"
	}

	body := fmt.Sprintf("Dear %s,\n\n", r.CustomerName)
	if r.Overdue() {
		body += fmt.Sprintf(
			"Your installment of %s for loan #%d was due on %s and is %d days late.\n"+
				"Paying today costs %s including the late payment penalty.\n",
			r.Amount.StringFixed(2), r.LoanID, r.DueDate.Format("2006-01-02"), r.DaysLate, r.AmountToday.StringFixed(2),
		)
	} else {
		body += fmt.Sprintf(
			"Your installment of %s for loan #%d is due on %s.\n"+
				"Paying before the due date earns a discount; paying today costs %s.\n",
			r.Amount.StringFixed(2), r.LoanID, r.DueDate.Format("2006-01-02"), r.AmountToday.StringFixed(2),
		)
	}
	body += "\nBest regards,\nLoan Service"
	return subject, []byte(body)
}

// LogNotifier only logs reminders; used when SMTP is not configured
type LogNotifier struct {
	log *logrus.Logger
}

// NewLogNotifier creates a log-only notifier
func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify logs the reminder
func (n *LogNotifier) Notify(ctx context.Context, reminder *Reminder) error {
	n.log.WithFields(logrus.Fields{
		"email":     reminder.Email,
		"loan_id":   reminder.LoanID,
		"due_date":  reminder.DueDate.Format("2006-01-02"),
		"amount":    reminder.Amount.StringFixed(2),
		"days_late": reminder.DaysLate,
	}).Info("Installment reminder")
	return nil
}
