package services

import (
	"time"

	"github.com/nats-io/nuid"
)

// ResultStore abstracts persistence operations required by AssessmentService.
// Results are write-once; there is no update or delete.
type ResultStore interface {
	AddResult(r *AssessmentResult) error
	GetResult(id string) (*AssessmentResult, error)
	ListResults() ([]*AssessmentResult, error)
	ListResultsByEmail(email string) ([]*AssessmentResult, error)
	ResultStats() (*Statistics, error)
}

// AssessmentService hosts the submission workflow: resolve submitted IDs
// against the catalog, validate, score, compute elapsed time, persist.
type AssessmentService struct {
	store ResultStore
	now   func() time.Time
	idGen func() string
}

func NewAssessmentService(store ResultStore) *AssessmentService {
	return &AssessmentService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: nuid.Next,
	}
}

// SubmitAssessment validates and scores a submission and persists the
// result. A submission that fails validation is rejected whole; no partial
// result is ever stored.
func (s *AssessmentService) SubmitAssessment(userData map[string]any, submitted []Response, startedAt, completedAt time.Time) (*AssessmentResult, error) {
	if completedAt.Before(startedAt) {
		return nil, NewInvalidError("completed_at precedes started_at")
	}

	responses := ResolveResponses(submitted)
	if !ValidateResponses(responses) {
		return nil, NewInvalidError("invalid assessment responses")
	}

	domainScores := DomainScores(responses)
	result := &AssessmentResult{
		ID:                s.idGen(),
		UserData:          userData,
		Responses:         responses,
		DomainScores:      domainScores,
		DescriptiveScores: DescriptiveScores(responses),
		TotalScore:        TotalScore(domainScores),
		OverallRating:     OverallRating(domainScores),
		DomainRatings:     DomainRatings(domainScores),
		StartedAt:         startedAt,
		CompletedAt:       completedAt,
		TotalTimeMinutes:  int(completedAt.Sub(startedAt).Seconds()) / 60,
		CreatedAt:         s.now(),
	}

	if err := s.store.AddResult(result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetResult fetches a stored result by ID. A missing record is a distinct
// not-found error, never a fabricated result.
func (s *AssessmentService) GetResult(id string) (*AssessmentResult, error) {
	r, err := s.store.GetResult(id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, NewNotFoundError("assessment result not found")
	}
	return r, nil
}

// ListResults returns all stored results, newest first. Authorization is
// enforced at the transport boundary before this is called.
func (s *AssessmentService) ListResults() ([]*AssessmentResult, error) {
	return s.store.ListResults()
}

// ListResultsByEmail returns results whose user_data email matches, newest
// first.
func (s *AssessmentService) ListResultsByEmail(email string) ([]*AssessmentResult, error) {
	return s.store.ListResultsByEmail(email)
}

// Stats summarises all stored results.
func (s *AssessmentService) Stats() (*Statistics, error) {
	return s.store.ResultStats()
}
