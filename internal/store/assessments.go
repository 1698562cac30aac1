// internal/store/assessments.go
package store

import (
	"context"

	"placement-tracker/internal/common/errors"
	"placement-tracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	tableAssessments      = "assessments"
	tableAssessmentScores = "assessment_scores"
)

var assessmentColumns = []string{
	"taken_at", "report_url", "org_assess_id", "total_student_score",
	"attempt_end_reason", "proctor_details", "updated_at",
}

func (s *Store) CreateAssessment(ctx context.Context, a *models.Assessment) error {
	return s.run(ctx, tableAssessments, errors.OpInsert, "", func(tx *gorm.DB) error {
		if err := validate(tableAssessments, a.Validate()); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(a).Error
	})
}

// GetAssessment loads an assessment with its scores and their score types.
func (s *Store) GetAssessment(ctx context.Context, id uuid.UUID) (*models.Assessment, error) {
	var a models.Assessment
	err := s.run(ctx, tableAssessments, errors.OpSelect, id.String(), func(tx *gorm.DB) error {
		return tx.Where("assessment_id = ?", id).Take(&a).Error
	})
	if err != nil {
		return nil, err
	}

	scores, err := s.ListAssessmentScores(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Scores = scores
	return &a, nil
}

// ListAssessmentsByStudent returns the student's assessments, most recently taken first.
func (s *Store) ListAssessmentsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Assessment, error) {
	var out []models.Assessment
	err := s.run(ctx, tableAssessments, errors.OpSelect, "", func(tx *gorm.DB) error {
		return tx.Where("student_id = ?", studentID).
			Order("taken_at DESC NULLS LAST").
			Order("created_at DESC").
			Find(&out).Error
	})
	return out, err
}

// UpdateAssessment writes the mutable columns. Owner and identifier stay fixed.
func (s *Store) UpdateAssessment(ctx context.Context, a *models.Assessment) error {
	id := a.AssessmentID.String()
	return s.run(ctx, tableAssessments, errors.OpUpdate, id, func(tx *gorm.DB) error {
		if err := validate(tableAssessments, a.Validate()); err != nil {
			return err
		}
		a.UpdatedAt = tx.NowFunc()
		res := tx.Model(&models.Assessment{AssessmentID: a.AssessmentID}).
			Select(assessmentColumns).
			Omit(clause.Associations).
			Updates(a)
		return requireAffected(tableAssessments, id, res)
	})
}

// DeleteAssessment removes the assessment and, through the database, its scores.
func (s *Store) DeleteAssessment(ctx context.Context, id uuid.UUID) error {
	return s.run(ctx, tableAssessments, errors.OpDelete, id.String(), func(tx *gorm.DB) error {
		return requireAffected(tableAssessments, id.String(), tx.Where("assessment_id = ?", id).Delete(&models.Assessment{}))
	})
}

// CreateAssessmentScore fails with DUPLICATE_RECORD when the assessment
// already has a score of that type.
func (s *Store) CreateAssessmentScore(ctx context.Context, score *models.AssessmentScore) error {
	return s.run(ctx, tableAssessmentScores, errors.OpInsert, "", func(tx *gorm.DB) error {
		if err := validate(tableAssessmentScores, score.Validate()); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(score).Error
	})
}

func (s *Store) ListAssessmentScores(ctx context.Context, assessmentID uuid.UUID) ([]models.AssessmentScore, error) {
	var out []models.AssessmentScore
	err := s.run(ctx, tableAssessmentScores, errors.OpSelect, "", func(tx *gorm.DB) error {
		return tx.Preload("ScoreType").
			Where("assessment_id = ?", assessmentID).
			Order("created_at").
			Find(&out).Error
	})
	return out, err
}

func (s *Store) DeleteAssessmentScore(ctx context.Context, id uuid.UUID) error {
	return s.run(ctx, tableAssessmentScores, errors.OpDelete, id.String(), func(tx *gorm.DB) error {
		return requireAffected(tableAssessmentScores, id.String(), tx.Where("assessment_score_id = ?", id).Delete(&models.AssessmentScore{}))
	})
}
