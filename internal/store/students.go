// internal/store/students.go
package store

import (
	"context"

	"placement-tracker/internal/common/errors"
	"placement-tracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tableStudents = "students"

// studentColumns are the columns an update may write.
var studentColumns = []string{
	"full_name", "phone", "email", "gender", "resume_url",
	"graduation_year", "cgpa", "college_id", "updated_at",
}

func (s *Store) CreateStudent(ctx context.Context, st *models.Student) error {
	return s.run(ctx, tableStudents, errors.OpInsert, "", func(tx *gorm.DB) error {
		if err := validate(tableStudents, st.Validate()); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(st).Error
	})
}

// GetStudent loads a student with its college, if any.
func (s *Store) GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	var st models.Student
	err := s.run(ctx, tableStudents, errors.OpSelect, id.String(), func(tx *gorm.DB) error {
		return tx.Preload("College").Where("user_id = ?", id).Take(&st).Error
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) ListStudentsByCollege(ctx context.Context, collegeID uuid.UUID) ([]models.Student, error) {
	var out []models.Student
	err := s.run(ctx, tableStudents, errors.OpSelect, "", func(tx *gorm.DB) error {
		return tx.Where("college_id = ?", collegeID).Order("full_name").Find(&out).Error
	})
	return out, err
}

func (s *Store) ListStudentsByGraduationYear(ctx context.Context, year int) ([]models.Student, error) {
	var out []models.Student
	err := s.run(ctx, tableStudents, errors.OpSelect, "", func(tx *gorm.DB) error {
		return tx.Where("graduation_year = ?", year).Order("full_name").Find(&out).Error
	})
	return out, err
}

// FindStudentByEmail returns the earliest student registered with email.
// Email is not unique, so later duplicates are ignored.
func (s *Store) FindStudentByEmail(ctx context.Context, email string) (*models.Student, error) {
	var st models.Student
	err := s.run(ctx, tableStudents, errors.OpSelect, email, func(tx *gorm.DB) error {
		return tx.Where("email = ?", email).Order("created_at").Take(&st).Error
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// UpdateStudent writes every mutable column, including NULLs. The user_id is never changed.
func (s *Store) UpdateStudent(ctx context.Context, st *models.Student) error {
	id := st.UserID.String()
	return s.run(ctx, tableStudents, errors.OpUpdate, id, func(tx *gorm.DB) error {
		if err := validate(tableStudents, st.Validate()); err != nil {
			return err
		}
		st.UpdatedAt = tx.NowFunc()
		res := tx.Model(&models.Student{UserID: st.UserID}).
			Select(studentColumns).
			Omit(clause.Associations).
			Updates(st)
		return requireAffected(tableStudents, id, res)
	})
}

// DeleteStudent removes the student; assessments, their scores and
// interviews go with it.
func (s *Store) DeleteStudent(ctx context.Context, id uuid.UUID) error {
	return s.run(ctx, tableStudents, errors.OpDelete, id.String(), func(tx *gorm.DB) error {
		return requireAffected(tableStudents, id.String(), tx.Where("user_id = ?", id).Delete(&models.Student{}))
	})
}
