package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	apperrors "findash/internal/errors"
	"findash/internal/model"
	"findash/internal/query"
	"findash/internal/service"
)

// TransactionHandler handles the transaction ledger endpoints.
type TransactionHandler struct {
	txService service.TransactionService
	binder    echo.DefaultBinder
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(txService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{txService: txService}
}

// TransactionRequest is the body of create and update calls.
type TransactionRequest struct {
	Description string           `json:"description" validate:"required,max=500" msg:"Description is required"`
	Amount      *decimal.Decimal `json:"amount" validate:"required" msg:"Amount must be a valid number" swaggertype:"number"`
	Type        string           `json:"type" validate:"required,oneof=income expense" msg:"Type must be income or expense"`
	Category    string           `json:"category" validate:"required,max=100" msg:"Category is required"`
	Status      string           `json:"status" validate:"omitempty,oneof=paid pending" msg:"Invalid status"`
	Date        string           `json:"date" validate:"required" msg:"Invalid date format"`
	Tags        []string         `json:"tags"`
}

func (r *TransactionRequest) toInput() (model.TransactionInput, error) {
	date, _, err := query.ParseDate(r.Date)
	if err != nil {
		return model.TransactionInput{}, apperrors.Validation("Invalid date format")
	}
	return model.TransactionInput{
		Description: r.Description,
		Amount:      *r.Amount,
		Type:        model.TransactionType(r.Type),
		Category:    r.Category,
		Status:      model.TransactionStatus(r.Status),
		Date:        date,
		Tags:        r.Tags,
	}, nil
}

// ExportRequest selects CSV columns and an optional filter.
type ExportRequest struct {
	Columns []string       `json:"columns"`
	Filters query.Criteria `json:"filters"`
}

// List godoc
// @Summary List transactions
// @Description Paginated, filtered and sorted listing of the caller's transactions.
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(10)
// @Param sortBy query string false "Sort field" Enums(date, amount, category, description, status, type, createdAt, updatedAt)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Param startDate query string false "Start date (YYYY-MM-DD or RFC3339)"
// @Param endDate query string false "End date, inclusive"
// @Param minAmount query number false "Minimum amount"
// @Param maxAmount query number false "Maximum amount"
// @Param category query string false "Category"
// @Param status query string false "Status" Enums(paid, pending)
// @Param type query string false "Type" Enums(income, expense)
// @Param search query string false "Case-insensitive match on description or category"
// @Success 200 {object} SuccessResponse{data=[]model.Transaction,pagination=PaginationMeta}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /transactions [get]
func (h *TransactionHandler) List(c echo.Context) error {
	owner, err := currentUser(c)
	if err != nil {
		return err
	}

	var criteria query.Criteria
	var params query.PageParams
	if err := h.binder.BindQueryParams(c, &criteria); err != nil {
		return apperrors.Validation("invalid query parameters")
	}
	if err := h.binder.BindQueryParams(c, &params); err != nil {
		return apperrors.Validation("invalid query parameters")
	}

	filter, err := query.BuildFilter(criteria, owner)
	if err != nil {
		return err
	}
	pagination, err := query.ParsePagination(params)
	if err != nil {
		return err
	}

	page, err := h.txService.List(c.Request().Context(), filter, pagination)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    page.Items,
		Pagination: &PaginationMeta{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	})
}

// Get godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} SuccessResponse{data=model.Transaction}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /transactions/{id} [get]
func (h *TransactionHandler) Get(c echo.Context) error {
	owner, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	tx, err := h.txService.Get(c.Request().Context(), owner, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, tx, "")
}

// Create godoc
// @Summary Create a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransactionRequest true "Transaction"
// @Success 201 {object} SuccessResponse{data=model.Transaction}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /transactions [post]
func (h *TransactionHandler) Create(c echo.Context) error {
	owner, err := currentUser(c)
	if err != nil {
		return err
	}

	var req TransactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := req.toInput()
	if err != nil {
		return err
	}

	tx, err := h.txService.Create(c.Request().Context(), owner, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, tx, "Transaction created successfully")
}

// Update godoc
// @Summary Replace a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Param request body TransactionRequest true "Transaction"
// @Success 200 {object} SuccessResponse{data=model.Transaction}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /transactions/{id} [put]
func (h *TransactionHandler) Update(c echo.Context) error {
	owner, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req TransactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := req.toInput()
	if err != nil {
		return err
	}

	tx, err := h.txService.Update(c.Request().Context(), owner, id, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, tx, "Transaction updated successfully")
}

// Delete godoc
// @Summary Delete a transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) Delete(c echo.Context) error {
	owner, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.txService.Delete(c.Request().Context(), owner, id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "Transaction deleted successfully")
}

// Stats godoc
// @Summary Dashboard statistics
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SuccessResponse{data=query.DashboardStats}
// @Failure 401 {object} errors.ErrorResponse
// @Router /transactions/stats [get]
func (h *TransactionHandler) Stats(c echo.Context) error {
	owner, err := currentUser(c)
	if err != nil {
		return err
	}

	stats, err := h.txService.DashboardStats(c.Request().Context(), owner)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, stats, "")
}

// Export godoc
// @Summary Export transactions as CSV
// @Tags transactions
// @Accept json
// @Produce text/csv
// @Security BearerAuth
// @Param request body ExportRequest true "Columns and filters"
// @Success 200 {file} file
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /transactions/export [post]
func (h *TransactionHandler) Export(c echo.Context) error {
	owner, err := currentUser(c)
	if err != nil {
		return err
	}

	var req ExportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	data, err := h.txService.Export(c.Request().Context(), owner, req.Columns, req.Filters)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=transactions.csv")
	return c.Blob(http.StatusOK, "text/csv", data)
}
