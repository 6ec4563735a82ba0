package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	apperrors "sales-dashboard/internal/errors"
	"sales-dashboard/internal/services"
)

// domainError maps catalog and pipeline failures onto the HTTP taxonomy.
func domainError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var ce *services.ConstraintError
	switch {
	case errors.As(err, &ce):
		appErr = apperrors.ConstraintViolation(err, ce.Error())
		appErr.Details = ce.Field
		return appErr
	case errors.Is(err, services.ErrConstraintViolation):
		return apperrors.ConstraintViolation(err, "Constraint violation")
	case errors.Is(err, services.ErrNotFound):
		return apperrors.Wrap(err, apperrors.CodeNotFound, "Record not found")
	case errors.Is(err, services.ErrReferentialGap):
		return apperrors.ReferentialGap(err, "Record is still referenced by sales")
	}
	return apperrors.InternalWrap(err, "An unexpected error occurred")
}

// displayMessage is the one-line form shown in the management panels.
func displayMessage(err error) string {
	appErr := domainError(err)
	return fmt.Sprintf("%s: %s", appErr.Code, appErr.Message)
}

func pathID(r *http.Request) (uint, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.BadRequest(fmt.Sprintf("invalid id %q", raw))
	}
	return uint(id), nil
}
