package models

import "github.com/google/uuid"

// Role names carried by accounts and session tokens.
const (
	RoleAdmin    = "admin"
	RoleDriver   = "driver"
	RolePengawas = "pengawas"
)

// IsValidRole reports whether r is one of the known account roles.
func IsValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleDriver, RolePengawas:
		return true
	}
	return false
}

// User is a login account. Drivers and supervisors may link to one.
type User struct {
	BaseModel
	Username     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	Name         string `gorm:"type:varchar(200);not null" json:"name"`
	NIK          string `gorm:"column:nik;type:varchar(100)" json:"nik,omitempty"`
	Role         string `gorm:"type:varchar(20);index;not null" json:"role"`
}

// Driver is the master record of a vehicle operator.
type Driver struct {
	BaseModel
	Name     string     `gorm:"type:varchar(200)" json:"name"`
	NIK      string     `gorm:"column:nik;type:varchar(100);uniqueIndex;not null" json:"nik"`
	UserID   *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	IsActive bool       `gorm:"not null" json:"is_active"`
}

// Supervisor ("pengawas") reviews submitted forms.
type Supervisor struct {
	BaseModel
	Name   string     `gorm:"type:varchar(200);index;not null" json:"name"`
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
}

func (Supervisor) TableName() string { return "supervisors" }
