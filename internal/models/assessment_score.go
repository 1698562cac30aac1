// internal/models/assessment_score.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AssessmentScore holds one score per (assessment, score type).
type AssessmentScore struct {
	AssessmentScoreID uuid.UUID `gorm:"column:assessment_score_id;type:uuid;primaryKey" json:"assessment_score_id"`

	AssessmentID uuid.UUID   `gorm:"column:assessment_id;type:uuid;not null;uniqueIndex:idx_assessment_scores_assessment_score_type,priority:1" json:"assessment_id"`
	Assessment   *Assessment `gorm:"foreignKey:AssessmentID;references:AssessmentID;constraint:-" json:"-"`

	// Both foreign keys are declared on the parent side (Assessment.Scores,
	// ScoreType.AssessmentScores).
	ScoreTypeID uuid.UUID  `gorm:"column:score_type_id;type:uuid;not null;uniqueIndex:idx_assessment_scores_assessment_score_type,priority:2;index:idx_assessment_scores_score_type_id" json:"score_type_id"`
	ScoreType   *ScoreType `gorm:"foreignKey:ScoreTypeID;references:ScoreTypeID;constraint:-" json:"score_type,omitempty"`

	Score     decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"score"`
	MaxScore  decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"max_score"`
	TimeSpent decimal.NullDecimal `gorm:"type:numeric(5,2)" json:"time_spent"`
	Duration  decimal.NullDecimal `gorm:"type:numeric(5,2)" json:"duration"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (AssessmentScore) TableName() string { return "assessment_scores" }

func (s *AssessmentScore) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.AssessmentScoreID)
	return nil
}

func (s AssessmentScore) String() string {
	label := s.ScoreTypeID.String()
	if s.ScoreType != nil {
		label = s.ScoreType.DisplayName
	}
	return fmt.Sprintf("%s: %s/%s", label, s.Score.String(), s.MaxScore.String())
}
