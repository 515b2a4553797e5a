// Package httperr turns service errors into HTTP responses.
package httperr

import (
	"errors"

	"p2h.app/configs/configslog"
	"p2h.app/pkg/apiresponse"
	"p2h.app/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status picks the HTTP status and client message for err.
func Status(err error) (int, string, []string) {
	var missing *services.MissingFieldsError
	if errors.As(err, &missing) {
		return fiber.StatusBadRequest, missing.Error(), missing.Fields
	}
	var invalid *services.ValidationError
	if errors.As(err, &invalid) {
		return fiber.StatusBadRequest, invalid.Error(), invalid.Fields
	}

	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return fiber.StatusBadRequest, err.Error(), nil
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, services.ErrInvalidCredentials.Error(), nil
	case errors.Is(err, services.ErrFormNotFound),
		errors.Is(err, services.ErrSupervisorNotFound),
		errors.Is(err, services.ErrVehicleNotFound),
		errors.Is(err, services.ErrDriverNotFound):
		return fiber.StatusNotFound, err.Error(), nil
	case errors.Is(err, services.ErrChecklistAlreadySubmitted),
		errors.Is(err, services.ErrChecklistNotSubmitted),
		errors.Is(err, services.ErrFormNotPending),
		errors.Is(err, services.ErrReviewRaceLost):
		return fiber.StatusConflict, err.Error(), nil
	}
	return fiber.StatusInternalServerError, "internal server error", nil
}

// Respond writes the error envelope for err. Unexpected errors are logged
// under op and their detail stays on the server.
func Respond(c *fiber.Ctx, op string, err error) error {
	status, message, fields := Status(err)
	if status == fiber.StatusInternalServerError {
		configslog.Log.Error(op+" failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return apiresponse.Error(c, status, message, fields...)
}

// RespondList is Respond for collection endpoints: data stays an empty list.
func RespondList(c *fiber.Ctx, op string, err error) error {
	status, message, _ := Status(err)
	if status == fiber.StatusInternalServerError {
		configslog.Log.Error(op+" failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return apiresponse.ListError(c, status, message)
}

// BadBody answers a request whose JSON could not be decoded.
func BadBody(c *fiber.Ctx) error {
	return apiresponse.Error(c, fiber.StatusBadRequest, "request body must be valid JSON")
}

// ParseID reads a uuid route parameter. ok is false after the 400 response
// has been written.
func ParseID(c *fiber.Ctx, param string) (id uuid.UUID, ok bool, err error) {
	id, parseErr := uuid.Parse(c.Params(param))
	if parseErr != nil {
		return uuid.Nil, false, apiresponse.Error(c, fiber.StatusBadRequest, param+" is not a valid id", param)
	}
	return id, true, nil
}

// Unauthenticated answers a request that reached a handler without a caller.
func Unauthenticated(c *fiber.Ctx) error {
	return apiresponse.Denied(c, fiber.StatusUnauthorized, "authentication required")
}
