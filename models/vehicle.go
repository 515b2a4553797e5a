package models

import "github.com/google/uuid"

const VehicleStatusActive = "active"

type VehicleType struct {
	BaseModel
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

type Vehicle struct {
	BaseModel
	VehicleNumber string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"vehicle_number"`
	VehicleTypeID uuid.UUID `gorm:"type:uuid;index" json:"vehicle_type_id"`
	Status        string    `gorm:"type:varchar(20);default:'active'" json:"status"`
}
