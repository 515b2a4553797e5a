package services

import (
	"time"

	"p2h.app/models"

	"github.com/google/uuid"
)

// Actor is the verified caller of a service operation.
type Actor struct {
	UserID uuid.UUID
	Role   string
	Name   string
	// SubjectID is the driver id of a driver and the supervisor id of a pengawas.
	SubjectID *uuid.UUID
}

func (a Actor) IsAdmin() bool    { return a.Role == models.RoleAdmin }
func (a Actor) IsDriver() bool   { return a.Role == models.RoleDriver }
func (a Actor) IsPengawas() bool { return a.Role == models.RolePengawas }

// Clock returns the current time; services take one so tests can pin "today".
type Clock func() time.Time

func systemClock() time.Time { return time.Now() }
