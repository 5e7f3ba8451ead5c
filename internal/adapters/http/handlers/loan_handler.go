package handlers

import (
	"loan-backend/internal/core/services"
	"loan-backend/internal/pkg/response"
	"loan-backend/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles loan endpoints
type LoanHandler struct {
	loanService services.LoanOperations
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService services.LoanOperations) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// CreateLoan handles loan creation
// @Summary Create loan
// @Description Issue a loan against the customer's available credit and generate its installment schedule
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Replay key"
// @Param body body services.CreateLoanInput true "Loan data"
// @Success 201 {object} response.Response{data=models.Loan}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /loans [post]
func (h *LoanHandler) CreateLoan(c *fiber.Ctx) error {
	var input services.CreateLoanInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	loan, err := h.loanService.CreateLoan(c.UserContext(), &input)
	if err != nil {
		return writeError(c, err, "Failed to create loan")
	}

	return response.Created(c, "Loan created successfully", loan)
}

// ListLoans handles listing the loans of a customer
// @Summary List loans
// @Description List every loan of a customer
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param customer_id query int true "Customer ID"
// @Success 200 {object} response.Response{data=[]models.Loan}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans [get]
func (h *LoanHandler) ListLoans(c *fiber.Ctx) error {
	customerID, ok := parseID(c.Query("customer_id"))
	if !ok {
		return response.BadRequest(c, "customer_id query parameter is required")
	}

	loans, err := h.loanService.ListLoans(c.UserContext(), customerID)
	if err != nil {
		return writeError(c, err, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", loans)
}

// ListInstallments handles listing the installments of a loan
// @Summary List installments
// @Description List the installments of a loan, earliest due date first
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response{data=[]models.LoanInstallment}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id}/installments [get]
func (h *LoanHandler) ListInstallments(c *fiber.Ctx) error {
	loanID, ok := parseID(c.Params("id"))
	if !ok {
		return response.BadRequest(c, "Invalid loan ID")
	}

	installments, err := h.loanService.ListInstallments(c.UserContext(), loanID)
	if err != nil {
		return writeError(c, err, "Failed to list installments")
	}

	return response.Success(c, "Installments retrieved successfully", installments)
}

// PayLoan handles a payment against a loan
// @Summary Pay loan
// @Description Pay as many whole installments as the amount covers, earliest first. Paying less than the next installment is not an error.
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Replay key"
// @Param id path int true "Loan ID"
// @Param body body services.PayLoanInput true "Payment"
// @Success 200 {object} response.Response{data=domain.PaymentResult}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id}/pay [post]
func (h *LoanHandler) PayLoan(c *fiber.Ctx) error {
	loanID, ok := parseID(c.Params("id"))
	if !ok {
		return response.BadRequest(c, "Invalid loan ID")
	}

	var input services.PayLoanInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.loanService.PayLoan(c.UserContext(), loanID, input.Amount)
	if err != nil {
		return writeError(c, err, "Failed to process payment")
	}

	return response.Success(c, result.Message, result)
}
