package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"findash/internal/auth"
	apperrors "findash/internal/errors"
)

// SuccessResponse is the body of every successful JSON API call.
type SuccessResponse struct {
	Success    bool            `json:"success"`
	Data       interface{}     `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

// PaginationMeta describes the page returned by a list call.
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func respond(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, SuccessResponse{Success: true, Data: data, Message: message})
}

// currentUser returns the authenticated user's ID.
func currentUser(c echo.Context) (uuid.UUID, error) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	id, err := claims.Subject()
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}
	return id, nil
}

// bindAndValidate decodes the request into req and runs struct validation.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	return c.Validate(req)
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// malformed ids cannot name an existing transaction
		return uuid.Nil, apperrors.ErrTransactionNotFound
	}
	return id, nil
}
