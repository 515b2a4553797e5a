package models

// Danger classification of a checklist item, most severe first.
const (
	DangerCodeAA = "AA"
	DangerCodeA  = "A"
	DangerCodeB  = "B"
)

// InspectionItem is one line of the master checklist.
type InspectionItem struct {
	BaseModel
	Category    string `gorm:"type:varchar(100);not null" json:"category"`
	Description string `gorm:"type:text;not null" json:"description"`
	OrderNumber int    `gorm:"default:0;index" json:"order_number"`
	DangerCode  string `gorm:"type:varchar(2);default:'B'" json:"danger_code"`
	IsActive    bool   `gorm:"not null;index" json:"is_active"`
}
