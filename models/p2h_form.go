package models

import (
	"time"

	"github.com/google/uuid"
)

// Form lifecycle states. pending is the only non-terminal one.
const (
	FormStatusPending  = "pending"
	FormStatusApproved = "approved"
	FormStatusRejected = "rejected"
)

const (
	ShiftDay   = "day"
	ShiftNight = "night"
)

// InspectionDateLayout is the wire and storage layout of inspection dates.
const InspectionDateLayout = "2006-01-02"

func IsValidFormStatus(s string) bool {
	switch s {
	case FormStatusPending, FormStatusApproved, FormStatusRejected:
		return true
	}
	return false
}

func IsValidShift(s string) bool {
	return s == ShiftDay || s == ShiftNight
}

// P2HForm is the header of one daily inspection. Master data references are
// plain columns without constraints so deleting a vehicle or driver never
// touches the inspection history.
type P2HForm struct {
	BaseModel
	DriverID        *uuid.UUID `gorm:"type:uuid;index" json:"driver_id"`
	DriverNIK       string     `gorm:"column:driver_nik;type:varchar(100);index" json:"driver_nik"`
	VehicleID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"vehicle_id"`
	SupervisorID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"supervisor_id"`
	InspectionDate  string     `gorm:"type:varchar(10);index;not null" json:"inspection_date"`
	Shift           string     `gorm:"type:varchar(10);not null" json:"shift"`
	StartingMeter   float64    `gorm:"column:hm_km_awal;not null" json:"hm_km_awal"`
	Status          string     `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"`
	ApprovedAt      *time.Time `json:"approved_at"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid" json:"approved_by"`
	RejectedAt      *time.Time `json:"rejected_at"`
	RejectionReason *string    `gorm:"type:text" json:"rejection_reason"`
}

func (P2HForm) TableName() string { return "p2h_forms" }

// IsPending reports whether the form can still be reviewed or captured.
func (f *P2HForm) IsPending() bool { return f.Status == FormStatusPending }
