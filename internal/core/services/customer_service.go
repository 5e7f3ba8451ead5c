package services

import (
	"context"
	"errors"
	"fmt"

	"loan-backend/internal/adapters/persistence/models"
	"loan-backend/internal/adapters/persistence/repositories"
	"loan-backend/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CustomerService handles customer management business logic
type CustomerService struct {
	customerRepo repositories.CustomerRepository
	log          *logrus.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repositories.CustomerRepository, log *logrus.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		log:          log,
	}
}

// CreateCustomerInput represents create customer input
type CreateCustomerInput struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Surname     string          `json:"surname" validate:"required,max=100"`
	Email       string          `json:"email" validate:"omitempty,email,max=100"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

// ListCustomersOutput represents one page of customers
type ListCustomersOutput struct {
	Customers []*models.CustomerResponse
	Total     int64
}

// Create registers a customer with nothing of the limit used yet
func (s *CustomerService) Create(ctx context.Context, input *CreateCustomerInput) (*models.CustomerResponse, error) {
	if input.CreditLimit.IsNegative() {
		return nil, domain.ErrInvalidCreditLimit
	}

	customer := &models.Customer{
		Name:            input.Name,
		Surname:         input.Surname,
		Email:           input.Email,
		CreditLimit:     input.CreditLimit.Round(2),
		UsedCreditLimit: decimal.Zero,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		s.log.WithError(err).Error("Failed to create customer")
		return nil, fmt.Errorf("create customer: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"customer_id":  customer.ID,
		"credit_limit": customer.CreditLimit.String(),
	}).Info("Customer created")
	return customer.ToResponse(), nil
}

// GetByID gets a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uint) (*models.CustomerResponse, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return customer.ToResponse(), nil
}

// List lists customers in id order
func (s *CustomerService) List(ctx context.Context, offset, limit int) (*ListCustomersOutput, error) {
	customers, total, err := s.customerRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	responses := make([]*models.CustomerResponse, len(customers))
	for i, customer := range customers {
		responses[i] = customer.ToResponse()
	}

	return &ListCustomersOutput{
		Customers: responses,
		Total:     total,
	}, nil
}
