// internal/models/assessment.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Assessment struct {
	AssessmentID uuid.UUID `gorm:"column:assessment_id;type:uuid;primaryKey" json:"assessment_id"`

	StudentID uuid.UUID `gorm:"column:student_id;type:uuid;not null;index:idx_assessments_student_id" json:"student_id"`
	Student   *Student  `gorm:"foreignKey:StudentID;references:UserID;constraint:OnDelete:CASCADE" json:"student,omitempty"`

	TakenAt           *string             `gorm:"type:varchar(50)" json:"taken_at,omitempty"`
	ReportURL         *string             `gorm:"column:report_url;type:text" json:"report_url,omitempty"`
	OrgAssessID       *uuid.UUID          `gorm:"column:org_assess_id;type:uuid" json:"org_assess_id,omitempty"`
	TotalStudentScore decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"total_student_score"`
	AttemptEndReason  *string             `gorm:"type:varchar(255)" json:"attempt_end_reason,omitempty"`
	ProctorDetails    datatypes.JSON      `gorm:"type:jsonb" json:"proctor_details,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	// Loaded by the store on single-assessment reads.
	Scores []AssessmentScore `gorm:"foreignKey:AssessmentID;constraint:OnDelete:CASCADE" json:"scores,omitempty"`
}

func (Assessment) TableName() string { return "assessments" }

func (a *Assessment) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.AssessmentID)
	return nil
}

func (a Assessment) String() string {
	if a.Student != nil {
		return fmt.Sprintf("Assessment for %s", a.Student.FullName)
	}
	return fmt.Sprintf("Assessment for %s", a.StudentID)
}
