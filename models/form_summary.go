package models

import (
	"time"

	"github.com/google/uuid"
)

// Placeholders used when a referenced master record no longer resolves.
const (
	UnknownDriver      = "Unknown Driver"
	UnknownNIK         = "Unknown NIK"
	UnknownVehicle     = "Unknown Vehicle"
	UnknownVehicleType = "Unknown Type"
	UnknownSupervisor  = "Unknown Pengawas"
	UnknownCategory    = "Unknown Category"
	UnknownDescription = "Unknown Description"
)

// FormSummary is the dashboard row of a form. It is assembled, never stored.
type FormSummary struct {
	ID              uuid.UUID  `json:"id"`
	DriverID        *uuid.UUID `json:"driver_id"`
	DriverName      string     `json:"driver_name"`
	DriverNIK       string     `json:"driver_nik"`
	VehicleID       uuid.UUID  `json:"vehicle_id"`
	VehicleNumber   string     `json:"vehicle_number"`
	VehicleType     string     `json:"vehicle_type"`
	SupervisorID    uuid.UUID  `json:"supervisor_id"`
	SupervisorName  string     `json:"pengawas_name"`
	InspectionDate  string     `json:"inspection_date"`
	Shift           string     `json:"shift"`
	StartingMeter   float64    `json:"hm_km_awal"`
	Status          string     `json:"status"`
	HasIssues       bool       `json:"has_issues"`
	CreatedAt       time.Time  `json:"created_at"`
	ApprovedAt      *time.Time `json:"approved_at"`
	ApprovedBy      *uuid.UUID `json:"approved_by"`
	RejectedAt      *time.Time `json:"rejected_at"`
	RejectionReason *string    `json:"rejection_reason"`
}

// EvaluationView joins a captured evaluation to its checklist item.
type EvaluationView struct {
	ID               uuid.UUID `json:"id"`
	InspectionItemID uuid.UUID `json:"inspection_item_id"`
	Category         string    `json:"category"`
	Description      string    `json:"description"`
	OrderNumber      int       `json:"order_number"`
	DangerCode       string    `json:"danger_code"`
	ShowDangerCode   bool      `json:"show_danger_code"`
	Condition        string    `json:"condition"`
	Notes            string    `json:"notes"`
}

type FormDetailView struct {
	FormSummary
	Evaluations []EvaluationView `json:"evaluations"`
}

// FormStats counts forms per status within one scope.
type FormStats struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Total    int64 `json:"total"`
}

// FleetVehicle is one row of the fleet compliance board.
type FleetVehicle struct {
	ID            uuid.UUID `json:"id"`
	VehicleNumber string    `json:"vehicle_number"`
	VehicleType   string    `json:"vehicle_type"`
	Status        string    `json:"status"`
	HasP2HToday   bool      `json:"has_p2h_today"`
	LastP2HDate   *string   `json:"last_p2h_date"`
}

// VehicleTodayView answers whether a vehicle is cleared for today and lists
// the forms filed for it on that date.
type VehicleTodayView struct {
	VehicleID     uuid.UUID     `json:"vehicle_id"`
	VehicleNumber string        `json:"vehicle_number"`
	VehicleType   string        `json:"vehicle_type"`
	Date          string        `json:"date"`
	HasP2HToday   bool          `json:"has_p2h_today"`
	Forms         []FormSummary `json:"forms"`
}

// VehicleOption is a row of the vehicle picker.
type VehicleOption struct {
	ID            uuid.UUID `json:"id"`
	VehicleNumber string    `json:"vehicle_number"`
	VehicleType   string    `json:"vehicle_type"`
	Status        string    `json:"status"`
}
