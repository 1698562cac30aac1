// internal/models/interview.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Interview struct {
	InterviewID uuid.UUID `gorm:"column:interview_id;type:uuid;primaryKey" json:"interview_id"`

	StudentID uuid.UUID `gorm:"column:student_id;type:uuid;not null;index:idx_interviews_student_id" json:"student_id"`
	Student   *Student  `gorm:"foreignKey:StudentID;references:UserID;constraint:OnDelete:CASCADE" json:"student,omitempty"`

	InterviewDate *string `gorm:"type:varchar(50);index:idx_interviews_interview_date" json:"interview_date,omitempty"`
	RecordingURL  *string `gorm:"column:recording_url;type:text" json:"recording_url,omitempty"`

	CommunicationRating              *int `gorm:"column:communication_rating;type:integer" json:"communication_rating,omitempty"`
	CoreCSTheoryRating               *int `gorm:"column:core_cs_theory_rating;type:integer" json:"core_cs_theory_rating,omitempty"`
	DSATheoryRating                  *int `gorm:"column:dsa_theory_rating;type:integer" json:"dsa_theory_rating,omitempty"`
	Problem1SolvingRating            *int `gorm:"column:problem1_solving_rating;type:integer" json:"problem1_solving_rating,omitempty"`
	Problem1CodeImplementationRating *int `gorm:"column:problem1_code_implementation_rating;type:integer" json:"problem1_code_implementation_rating,omitempty"`
	Problem2SolvingRating            *int `gorm:"column:problem2_solving_rating;type:integer" json:"problem2_solving_rating,omitempty"`
	Problem2CodeImplementationRating *int `gorm:"column:problem2_code_implementation_rating;type:integer" json:"problem2_code_implementation_rating,omitempty"`

	OverallInterviewScoreOutOf100 decimal.NullDecimal `gorm:"column:overall_interview_score_out_of_100;type:numeric(5,2)" json:"overall_interview_score_out_of_100"`

	Notes            *string `gorm:"type:text" json:"notes,omitempty"`
	AuditFinalStatus *string `gorm:"type:varchar(50)" json:"audit_final_status,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Interview) TableName() string { return "interviews" }

func (i *Interview) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.InterviewID)
	return nil
}

func (i Interview) String() string {
	if i.Student != nil {
		return fmt.Sprintf("Interview for %s", i.Student.FullName)
	}
	return fmt.Sprintf("Interview for %s", i.StudentID)
}
