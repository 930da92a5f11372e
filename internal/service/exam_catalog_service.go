package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/noah-isme/ujian-go-api/internal/repository"
)

// ErrNoForms indicates the catalog holds no forms for a grade. This is a
// content configuration problem, not a bad request.
var ErrNoForms = errors.New("no exam forms for grade")

// ExamCatalogService resolves exam form payloads for a student's grade and
// class. The catalog is read-only at session time; imports own the writes.
type ExamCatalogService interface {
	FormsForGrade(ctx context.Context, grade, class string) (map[string]json.RawMessage, error)
}

type examCatalogService struct {
	repo   repository.ExamFormRepository
	logger zerolog.Logger
}

// NewExamCatalogService constructs an exam catalog service.
func NewExamCatalogService(repo repository.ExamFormRepository, logger zerolog.Logger) ExamCatalogService {
	return &examCatalogService{
		repo:   repo,
		logger: logger.With().Str("component", "exam_catalog_service").Logger(),
	}
}

// FormsForGrade returns the union of forms bound to the class and forms that
// apply to the whole grade, keyed by subject. Imports guarantee one row per
// (grade, class, subject) triple, so no merging is needed here.
func (s *examCatalogService) FormsForGrade(ctx context.Context, grade, class string) (map[string]json.RawMessage, error) {
	forms, err := s.repo.ForGrade(ctx, grade, class)
	if err != nil {
		return nil, err
	}

	if len(forms) == 0 {
		s.logger.Error().Str("grade", grade).Str("class", class).Msg("exam catalog has no forms for grade")
		return nil, ErrNoForms
	}

	bySubject := make(map[string]json.RawMessage, len(forms))
	for _, form := range forms {
		bySubject[form.Subject] = json.RawMessage(form.Payload)
	}

	return bySubject, nil
}
