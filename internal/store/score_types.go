// internal/store/score_types.go
package store

import (
	"context"

	"placement-tracker/internal/common/errors"
	"placement-tracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tableScoreTypes = "score_types"

func (s *Store) CreateScoreType(ctx context.Context, st *models.ScoreType) error {
	return s.run(ctx, tableScoreTypes, errors.OpInsert, "", func(tx *gorm.DB) error {
		if err := validate(tableScoreTypes, st.Validate()); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(st).Error
	})
}

func (s *Store) GetScoreType(ctx context.Context, id uuid.UUID) (*models.ScoreType, error) {
	var st models.ScoreType
	err := s.run(ctx, tableScoreTypes, errors.OpSelect, id.String(), func(tx *gorm.DB) error {
		return tx.Where("score_type_id = ?", id).Take(&st).Error
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) GetScoreTypeByKey(ctx context.Context, key string) (*models.ScoreType, error) {
	var st models.ScoreType
	err := s.run(ctx, tableScoreTypes, errors.OpSelect, key, func(tx *gorm.DB) error {
		return tx.Where("key = ?", key).Take(&st).Error
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) ListScoreTypes(ctx context.Context) ([]models.ScoreType, error) {
	var out []models.ScoreType
	err := s.run(ctx, tableScoreTypes, errors.OpSelect, "", func(tx *gorm.DB) error {
		return tx.Order("key").Find(&out).Error
	})
	return out, err
}

// DeleteScoreType fails with REFERENCE_PROTECTED while any assessment score uses it.
func (s *Store) DeleteScoreType(ctx context.Context, id uuid.UUID) error {
	return s.run(ctx, tableScoreTypes, errors.OpDelete, id.String(), func(tx *gorm.DB) error {
		return requireAffected(tableScoreTypes, id.String(), tx.Where("score_type_id = ?", id).Delete(&models.ScoreType{}))
	})
}
