package presenter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/catalog/internal/domain"
)

type errorResponse struct {
	Error       string              `json:"error"`
	FieldErrors []domain.FieldError `json:"fieldErrors,omitempty"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func Created(c echo.Context, payload any) error {
	return c.JSON(http.StatusCreated, payload)
}

func NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func BadRequest(c echo.Context, err error) error {
	slog.InfoContext(c.Request().Context(), "bad request", slog.String("error", err.Error()), slog.String("module", "rest"))
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func BadRequestMessage(c echo.Context, msg string) error {
	slog.InfoContext(c.Request().Context(), "bad request", slog.String("error", msg), slog.String("module", "rest"))
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func NotFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, errorResponse{Error: msg})
}

// Unprocessable renders a field addressable failure.
func Unprocessable(c echo.Context, err error, fieldErrors []domain.FieldError) error {
	return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), FieldErrors: fieldErrors})
}

func InternalError(c echo.Context, err error) error {
	slog.ErrorContext(c.Request().Context(), "internal error", slog.String("error", err.Error()), slog.String("module", "rest"))
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

// Error picks the response for an error returned by a use case.
func Error(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return NotFound(c, err.Error())
	}

	var fe domain.FieldErrorer
	if errors.As(err, &fe) {
		return Unprocessable(c, err, fe.FieldErrors())
	}

	return InternalError(c, err)
}
