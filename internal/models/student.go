// internal/models/student.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Student struct {
	UserID         uuid.UUID           `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	FullName       string              `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone          *string             `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Email          *string             `gorm:"type:varchar(255);index:idx_students_email" json:"email,omitempty"`
	Gender         *string             `gorm:"type:varchar(20)" json:"gender,omitempty"`
	ResumeURL      *string             `gorm:"column:resume_url;type:text" json:"resume_url,omitempty"`
	GraduationYear *int                `gorm:"type:integer;index:idx_students_graduation_year" json:"graduation_year,omitempty"`
	CGPA           decimal.NullDecimal `gorm:"column:cgpa;type:numeric(4,2)" json:"cgpa"`

	// Cleared by the database when the college is deleted.
	CollegeID *uuid.UUID `gorm:"column:college_id;type:uuid;index:idx_students_college_id" json:"college_id,omitempty"`
	College   *College   `gorm:"foreignKey:CollegeID;references:CollegeID;constraint:-" json:"college,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Student) TableName() string { return "students" }

func (s *Student) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.UserID)
	return nil
}

func (s Student) String() string {
	return s.FullName
}
