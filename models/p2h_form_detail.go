package models

import "github.com/google/uuid"

const (
	ConditionBaik  = "baik"
	ConditionRusak = "rusak"
)

// NormalizeCondition maps accepted input spellings onto the stored values.
// The second result is false for anything unrecognised.
func NormalizeCondition(raw string) (string, bool) {
	switch raw {
	case ConditionBaik, "ok":
		return ConditionBaik, true
	case ConditionRusak, "defective":
		return ConditionRusak, true
	}
	return "", false
}

// P2HFormDetail is one evaluated checklist line. Rows are written once.
type P2HFormDetail struct {
	BaseModel
	FormID           uuid.UUID `gorm:"column:p2h_form_id;type:uuid;not null;uniqueIndex:idx_p2h_detail_form_item" json:"p2h_form_id"`
	InspectionItemID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_p2h_detail_form_item" json:"inspection_item_id"`
	Condition        string    `gorm:"type:varchar(10);index;not null" json:"condition"`
	Notes            string    `gorm:"type:text" json:"notes"`
}

func (P2HFormDetail) TableName() string { return "p2h_form_details" }
