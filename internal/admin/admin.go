// internal/admin/admin.go
package admin

import (
	"context"
	stderrors "errors"

	"placement-tracker/internal/common/logger"
	"placement-tracker/internal/models"
	"placement-tracker/internal/search"

	"github.com/google/uuid"
)

// ErrIndexDisabled is returned by operations that need the student index
// when Elasticsearch is not connected.
var ErrIndexDisabled = stderrors.New("student index is not enabled")

// Repository is the subset of the store the admin operations use.
type Repository interface {
	GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error)
	DeleteStudent(ctx context.Context, id uuid.UUID) error
	GetScoreTypeByKey(ctx context.Context, key string) (*models.ScoreType, error)
	DeleteScoreType(ctx context.Context, id uuid.UUID) error
}

// Index is the student search projection.
type Index interface {
	IndexStudent(ctx context.Context, st *models.Student, college *models.College) error
	RemoveStudent(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, text string, limit int) ([]search.Hit, error)
}

// Invalidator drops cached score types.
type Invalidator interface {
	Invalidate(ctx context.Context, key string) error
}

// Service applies deletes and re-projections to the database first and then
// to the derived stores (search index, score type cache). A failure in a
// derived store is logged; the database change stands.
type Service struct {
	repo   Repository
	index  Index
	cache  Invalidator
	logger logger.Logger
}

// New builds a Service. index and cache may be nil.
func New(repo Repository, index Index, cache Invalidator, log logger.Logger) *Service {
	return &Service{repo: repo, index: index, cache: cache, logger: log}
}

// DeleteStudent removes the student, which cascades to assessments, scores
// and interviews, and then drops the search document.
func (s *Service) DeleteStudent(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteStudent(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Student deleted", map[string]interface{}{"student_id": id.String()})

	if s.index == nil {
		return nil
	}
	if err := s.index.RemoveStudent(ctx, id); err != nil {
		s.logger.Warn("Student index still holds deleted student", map[string]interface{}{
			"student_id": id.String(),
			"error":      err,
		})
	}
	return nil
}

// ReindexStudent rewrites the search document from the current row.
func (s *Service) ReindexStudent(ctx context.Context, id uuid.UUID) error {
	if s.index == nil {
		return ErrIndexDisabled
	}
	st, err := s.repo.GetStudent(ctx, id)
	if err != nil {
		return err
	}
	return s.index.IndexStudent(ctx, st, st.College)
}

// DeleteScoreType removes the score type with the given key. The database
// refuses while any assessment score still uses it.
func (s *Service) DeleteScoreType(ctx context.Context, key string) error {
	st, err := s.repo.GetScoreTypeByKey(ctx, key)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteScoreType(ctx, st.ScoreTypeID); err != nil {
		return err
	}
	s.logger.Info("Score type deleted", map[string]interface{}{"key": key})

	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.logger.Warn("Score type may be served from cache until it expires", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
	return nil
}

func (s *Service) Search(ctx context.Context, text string, limit int) ([]search.Hit, error) {
	if s.index == nil {
		return nil, ErrIndexDisabled
	}
	return s.index.Search(ctx, text, limit)
}
