// internal/models/score_type.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScoreType is the lookup table of score categories (coding, dsa, ...).
type ScoreType struct {
	ScoreTypeID uuid.UUID `gorm:"column:score_type_id;type:uuid;primaryKey" json:"score_type_id"`
	Key         string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_score_types_key" json:"key"`
	DisplayName string    `gorm:"type:varchar(100);not null" json:"display_name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`

	// RESTRICT keeps a score type from being deleted while scores use it.
	AssessmentScores []AssessmentScore `gorm:"foreignKey:ScoreTypeID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (ScoreType) TableName() string { return "score_types" }

func (st *ScoreType) BeforeCreate(tx *gorm.DB) error {
	assignID(&st.ScoreTypeID)
	return nil
}

func (st ScoreType) String() string {
	return st.DisplayName
}
