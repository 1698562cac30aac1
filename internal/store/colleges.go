// internal/store/colleges.go
package store

import (
	"context"
	stderrors "errors"

	"placement-tracker/internal/common/errors"
	"placement-tracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tableColleges = "colleges"

func (s *Store) CreateCollege(ctx context.Context, c *models.College) error {
	return s.run(ctx, tableColleges, errors.OpInsert, "", func(tx *gorm.DB) error {
		if err := validate(tableColleges, c.Validate()); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(c).Error
	})
}

func (s *Store) GetCollege(ctx context.Context, id uuid.UUID) (*models.College, error) {
	var c models.College
	err := s.run(ctx, tableColleges, errors.OpSelect, id.String(), func(tx *gorm.DB) error {
		return tx.Where("college_id = ?", id).Take(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindOrCreateCollege returns the college with the given triple, creating it
// when absent. created reports whether this call inserted the row.
func (s *Store) FindOrCreateCollege(ctx context.Context, name, degree, branch string) (*models.College, bool, error) {
	c, err := s.findCollege(ctx, name, degree, branch)
	if err == nil {
		return c, false, nil
	}
	if !stderrors.Is(err, errors.ErrNotFound) {
		return nil, false, err
	}

	c = &models.College{Name: name, Degree: degree, Branch: branch}
	err = s.CreateCollege(ctx, c)
	if stderrors.Is(err, errors.ErrDuplicate) {
		// inserted concurrently by someone else
		c, err = s.findCollege(ctx, name, degree, branch)
		return c, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (s *Store) findCollege(ctx context.Context, name, degree, branch string) (*models.College, error) {
	var c models.College
	err := s.run(ctx, tableColleges, errors.OpSelect, name, func(tx *gorm.DB) error {
		return tx.Where("name = ? AND degree = ? AND branch = ?", name, degree, branch).Take(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListCollegesByName(ctx context.Context, name string) ([]models.College, error) {
	var out []models.College
	err := s.run(ctx, tableColleges, errors.OpSelect, "", func(tx *gorm.DB) error {
		return tx.Where("name = ?", name).Order("degree").Order("branch").Find(&out).Error
	})
	return out, err
}

// UpdateCollege writes name, degree and branch. The identifier is never changed.
func (s *Store) UpdateCollege(ctx context.Context, c *models.College) error {
	id := c.CollegeID.String()
	return s.run(ctx, tableColleges, errors.OpUpdate, id, func(tx *gorm.DB) error {
		if err := validate(tableColleges, c.Validate()); err != nil {
			return err
		}
		res := tx.Model(&models.College{CollegeID: c.CollegeID}).
			Select("name", "degree", "branch", "updated_at").
			Updates(map[string]interface{}{
				"name":       c.Name,
				"degree":     c.Degree,
				"branch":     c.Branch,
				"updated_at": tx.NowFunc(),
			})
		return requireAffected(tableColleges, id, res)
	})
}

// DeleteCollege removes the college; its students keep their rows with
// college_id cleared by the database.
func (s *Store) DeleteCollege(ctx context.Context, id uuid.UUID) error {
	return s.run(ctx, tableColleges, errors.OpDelete, id.String(), func(tx *gorm.DB) error {
		return requireAffected(tableColleges, id.String(), tx.Where("college_id = ?", id).Delete(&models.College{}))
	})
}
