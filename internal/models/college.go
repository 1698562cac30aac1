// internal/models/college.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type College struct {
	CollegeID uuid.UUID `gorm:"column:college_id;type:uuid;primaryKey" json:"college_id"`
	Name      string    `gorm:"type:varchar(255);not null;index:idx_colleges_name;uniqueIndex:idx_colleges_name_degree_branch,priority:1" json:"name"`
	Degree    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_colleges_name_degree_branch,priority:2" json:"degree"`
	Branch    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_colleges_name_degree_branch,priority:3" json:"branch"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	// Removing a college keeps its students and clears their college_id.
	Students []Student `gorm:"foreignKey:CollegeID;constraint:OnDelete:SET NULL" json:"students,omitempty"`
}

func (College) TableName() string { return "colleges" }

func (c *College) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.CollegeID)
	return nil
}

func (c College) String() string {
	return fmt.Sprintf("%s - %s (%s)", c.Name, c.Degree, c.Branch)
}
