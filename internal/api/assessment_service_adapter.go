package api

import (
	"github.com/kaleidohq/synergy/internal/services"
)

type resultStoreAdapter struct {
	store Store
}

func newResultStoreAdapter(store Store) services.ResultStore {
	return &resultStoreAdapter{store: store}
}

func (a *resultStoreAdapter) AddResult(r *services.AssessmentResult) error {
	if r == nil {
		return services.NewInvalidError("result required")
	}
	a.store.AddResult(fromServiceResult(r))
	return nil
}

func (a *resultStoreAdapter) GetResult(id string) (*services.AssessmentResult, error) {
	return toServiceResult(a.store.GetResult(id)), nil
}

func (a *resultStoreAdapter) ListResults() ([]*services.AssessmentResult, error) {
	return toServiceResults(a.store.ListResults()), nil
}

func (a *resultStoreAdapter) ListResultsByEmail(email string) ([]*services.AssessmentResult, error) {
	return toServiceResults(a.store.ListResultsByEmail(email)), nil
}

func (a *resultStoreAdapter) ResultStats() (*services.Statistics, error) {
	st := a.store.ResultStats()
	return &services.Statistics{
		TotalAssessments: st.TotalAssessments,
		AvgTotalScore:    st.AvgTotalScore,
		AvgTimeMinutes:   st.AvgTimeMinutes,
	}, nil
}

var _ services.ResultStore = (*resultStoreAdapter)(nil)

func fromServiceResult(r *services.AssessmentResult) *AssessmentResult {
	out := &AssessmentResult{
		ID:                r.ID,
		UserData:          r.UserData,
		Responses:         make([]Response, 0, len(r.Responses)),
		DomainScores:      r.DomainScores,
		DescriptiveScores: r.DescriptiveScores,
		TotalScore:        r.TotalScore,
		OverallRating:     r.OverallRating,
		DomainRatings:     r.DomainRatings,
		StartedAt:         r.StartedAt,
		CompletedAt:       r.CompletedAt,
		TotalTimeMinutes:  r.TotalTimeMinutes,
		CreatedAt:         r.CreatedAt,
	}
	for _, resp := range r.Responses {
		out.Responses = append(out.Responses, Response(resp))
	}
	return out
}

func toServiceResult(r *AssessmentResult) *services.AssessmentResult {
	if r == nil {
		return nil
	}
	out := &services.AssessmentResult{
		ID:                r.ID,
		UserData:          r.UserData,
		Responses:         make([]services.Response, 0, len(r.Responses)),
		DomainScores:      r.DomainScores,
		DescriptiveScores: r.DescriptiveScores,
		TotalScore:        r.TotalScore,
		OverallRating:     r.OverallRating,
		DomainRatings:     r.DomainRatings,
		StartedAt:         r.StartedAt,
		CompletedAt:       r.CompletedAt,
		TotalTimeMinutes:  r.TotalTimeMinutes,
		CreatedAt:         r.CreatedAt,
	}
	for _, resp := range r.Responses {
		out.Responses = append(out.Responses, services.Response(resp))
	}
	return out
}

func toServiceResults(rs []*AssessmentResult) []*services.AssessmentResult {
	out := make([]*services.AssessmentResult, 0, len(rs))
	for _, r := range rs {
		out = append(out, toServiceResult(r))
	}
	return out
}
