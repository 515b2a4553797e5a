package models

import "github.com/google/uuid"

// P2HReviewLog records every status change of a form, whether by the
// assigned supervisor or by an administrator override.
type P2HReviewLog struct {
	BaseModel
	FormID      uuid.UUID  `gorm:"column:p2h_form_id;type:uuid;index;not null" json:"p2h_form_id"`
	FromStatus  string     `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus    string     `gorm:"type:varchar(20);not null" json:"to_status"`
	ActorUserID *uuid.UUID `gorm:"type:uuid" json:"actor_user_id"`
	ActorRole   string     `gorm:"type:varchar(20);not null" json:"actor_role"`
	Reason      *string    `gorm:"type:text" json:"reason"`
}

func (P2HReviewLog) TableName() string { return "p2h_review_logs" }
