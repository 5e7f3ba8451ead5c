package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Auth Tables
// ============================================================

// User represents users table (API operators)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'ADMIN'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// ============================================================
// Lending Tables
// ============================================================

// Customer represents customers table
type Customer struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"size:100;not null" json:"name"`
	Surname         string          `gorm:"size:100;not null" json:"surname"`
	Email           string          `gorm:"size:100" json:"email,omitempty"`
	CreditLimit     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"credit_limit"`
	UsedCreditLimit decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"used_credit_limit"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

// AvailableCredit is the part of the limit not yet consumed by loans
func (c *Customer) AvailableCredit() decimal.Decimal {
	return c.CreditLimit.Sub(c.UsedCreditLimit)
}

// FullName joins name and surname
func (c *Customer) FullName() string {
	return c.Name + " " + c.Surname
}

// CustomerResponse DTO
type CustomerResponse struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	Surname         string          `json:"surname"`
	Email           string          `json:"email,omitempty"`
	CreditLimit     decimal.Decimal `json:"credit_limit"`
	UsedCreditLimit decimal.Decimal `json:"used_credit_limit"`
	AvailableCredit decimal.Decimal `json:"available_credit"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (c *Customer) ToResponse() *CustomerResponse {
	return &CustomerResponse{
		ID:              c.ID,
		Name:            c.Name,
		Surname:         c.Surname,
		Email:           c.Email,
		CreditLimit:     c.CreditLimit,
		UsedCreditLimit: c.UsedCreditLimit,
		AvailableCredit: c.AvailableCredit(),
		CreatedAt:       c.CreatedAt,
	}
}

// Loan represents loans table
type Loan struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	CustomerID           uint            `gorm:"not null;index" json:"customer_id"`
	LoanAmount           decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"loan_amount"`
	InterestRate         decimal.Decimal `gorm:"type:decimal(5,4);not null" json:"interest_rate"`
	NumberOfInstallments int             `gorm:"not null" json:"number_of_installments"`
	CreateDate           time.Time       `gorm:"type:date;not null" json:"create_date"`
	IsPaid               bool            `gorm:"not null;default:false" json:"is_paid"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"-"`
}

func (Loan) TableName() string {
	return "loans"
}

// LoanInstallment represents loan_installments table
type LoanInstallment struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	LoanID      uint            `gorm:"not null;index" json:"loan_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	PaidAmount  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"paid_amount"`
	DueDate     time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	IsPaid      bool            `gorm:"not null;default:false" json:"is_paid"`
	PaymentDate *time.Time      `gorm:"type:date" json:"payment_date"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Loan *Loan `gorm:"foreignKey:LoanID" json:"-"`
}

func (LoanInstallment) TableName() string {
	return "loan_installments"
}

// User roles
const (
	RoleAdmin = "ADMIN"
)

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Customer{},
		&Loan{},
		&LoanInstallment{},
	)
}
