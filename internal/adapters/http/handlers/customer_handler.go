package handlers

import (
	"strings"

	"loan-backend/internal/core/services"
	"loan-backend/internal/pkg/pagination"
	"loan-backend/internal/pkg/response"
	"loan-backend/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	customerService services.CustomerOperations
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService services.CustomerOperations) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// Create handles customer creation
// @Summary Create customer
// @Description Register a customer with a credit limit
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateCustomerInput true "Customer data"
// @Success 201 {object} response.Response{data=models.CustomerResponse}
// @Failure 400 {object} response.Response
// @Router /customers [post]
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var input services.CreateCustomerInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Surname = strings.TrimSpace(input.Surname)
	input.Email = strings.TrimSpace(input.Email)
	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	customer, err := h.customerService.Create(c.UserContext(), &input)
	if err != nil {
		return writeError(c, err, "Failed to create customer")
	}

	return response.Created(c, "Customer created successfully", customer)
}

// Get handles fetching a single customer
// @Summary Get customer
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} response.Response{data=models.CustomerResponse}
// @Failure 404 {object} response.Response
// @Router /customers/{id} [get]
func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return response.BadRequest(c, "Invalid customer ID")
	}

	customer, err := h.customerService.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err, "Failed to get customer")
	}

	return response.Success(c, "Customer retrieved successfully", customer)
}

// List handles listing customers
// @Summary List customers
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /customers [get]
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	page, err := h.customerService.List(c.UserContext(), params.Offset, params.Limit)
	if err != nil {
		return writeError(c, err, "Failed to list customers")
	}

	return response.Paginated(c, "Customers retrieved successfully", page.Customers, pagination.GetMeta(params, page.Total))
}
