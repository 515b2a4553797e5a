package services

import (
	"errors"
	"fmt"
	"strings"

	"p2h.app/configs/configslog"

	"go.uber.org/zap"
)

// P2HServiceError is the sentinel type handlers map onto HTTP statuses.
type P2HServiceError string

func (e P2HServiceError) Error() string { return string(e) }

const (
	ErrInvalidInput              P2HServiceError = "invalid input"
	ErrFormNotFound              P2HServiceError = "form not found"
	ErrSupervisorNotFound        P2HServiceError = "supervisor not found"
	ErrVehicleNotFound           P2HServiceError = "vehicle not found"
	ErrDriverNotFound            P2HServiceError = "driver not found"
	ErrChecklistAlreadySubmitted P2HServiceError = "checklist already submitted for this form"
	ErrChecklistNotSubmitted     P2HServiceError = "checklist has not been submitted for this form"
	ErrFormNotPending            P2HServiceError = "form is no longer pending"
	ErrReviewRaceLost            P2HServiceError = "form was reviewed by someone else first"
	ErrInvalidCredentials        P2HServiceError = "invalid credentials"
	ErrUpstream                  P2HServiceError = "datastore failure"
)

// MissingFieldsError lists every required field absent from one request.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error { return ErrInvalidInput }

// ValidationError collects every rule a request broke. Fields names the
// offending inputs when they can be pinned to one.
type ValidationError struct {
	Problems []string
	Fields   []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func (e *ValidationError) add(field, problem string) {
	if field != "" {
		e.Fields = append(e.Fields, field)
	}
	e.Problems = append(e.Problems, problem)
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// upstream logs a datastore failure and hides it behind ErrUpstream.
func upstream(op string, err error) error {
	configslog.Log.Error("Datastore failure", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%w: %s", ErrUpstream, op)
}

// passThrough keeps service sentinels and wraps everything else as upstream.
func passThrough(op string, err error) error {
	var svcErr P2HServiceError
	var missing *MissingFieldsError
	var invalid *ValidationError
	if errors.As(err, &svcErr) || errors.As(err, &missing) || errors.As(err, &invalid) {
		return err
	}
	return upstream(op, err)
}
