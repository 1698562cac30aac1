// internal/store/interviews.go
package store

import (
	"context"

	"placement-tracker/internal/common/errors"
	"placement-tracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tableInterviews = "interviews"

var interviewColumns = []string{
	"interview_date", "recording_url",
	"communication_rating", "core_cs_theory_rating", "dsa_theory_rating",
	"problem1_solving_rating", "problem1_code_implementation_rating",
	"problem2_solving_rating", "problem2_code_implementation_rating",
	"overall_interview_score_out_of_100", "notes", "audit_final_status",
}

func (s *Store) CreateInterview(ctx context.Context, i *models.Interview) error {
	return s.run(ctx, tableInterviews, errors.OpInsert, "", func(tx *gorm.DB) error {
		if err := validate(tableInterviews, i.Validate()); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(i).Error
	})
}

func (s *Store) GetInterview(ctx context.Context, id uuid.UUID) (*models.Interview, error) {
	var i models.Interview
	err := s.run(ctx, tableInterviews, errors.OpSelect, id.String(), func(tx *gorm.DB) error {
		return tx.Where("interview_id = ?", id).Take(&i).Error
	})
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *Store) ListInterviewsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Interview, error) {
	var out []models.Interview
	err := s.run(ctx, tableInterviews, errors.OpSelect, "", func(tx *gorm.DB) error {
		return tx.Where("student_id = ?", studentID).
			Order("interview_date").
			Order("created_at").
			Find(&out).Error
	})
	return out, err
}

// FindInterview returns the student's interview held on date.
func (s *Store) FindInterview(ctx context.Context, studentID uuid.UUID, date string) (*models.Interview, error) {
	var i models.Interview
	err := s.run(ctx, tableInterviews, errors.OpSelect, date, func(tx *gorm.DB) error {
		return tx.Where("student_id = ? AND interview_date = ?", studentID, date).Take(&i).Error
	})
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *Store) UpdateInterview(ctx context.Context, i *models.Interview) error {
	id := i.InterviewID.String()
	return s.run(ctx, tableInterviews, errors.OpUpdate, id, func(tx *gorm.DB) error {
		if err := validate(tableInterviews, i.Validate()); err != nil {
			return err
		}
		res := tx.Model(&models.Interview{InterviewID: i.InterviewID}).
			Select(interviewColumns).
			Omit(clause.Associations).
			Updates(i)
		return requireAffected(tableInterviews, id, res)
	})
}

func (s *Store) DeleteInterview(ctx context.Context, id uuid.UUID) error {
	return s.run(ctx, tableInterviews, errors.OpDelete, id.String(), func(tx *gorm.DB) error {
		return requireAffected(tableInterviews, id.String(), tx.Where("interview_id = ?", id).Delete(&models.Interview{}))
	})
}
