package api

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Response is a stored answer with the server-resolved domain and type.
type Response struct {
	QuestionID   string `json:"question_id"`
	Value        int    `json:"response"`
	Domain       string `json:"domain,omitempty"`
	QuestionType string `json:"question_type,omitempty"`
}

// AssessmentResult is a persisted scoring outcome. Write-once: the store
// exposes no update or delete for results.
type AssessmentResult struct {
	ID                string            `json:"id"`
	UserData          map[string]any    `json:"user_data"`
	Responses         []Response        `json:"responses,omitempty"`
	DomainScores      map[string]int    `json:"domain_scores"`
	DescriptiveScores map[string]int    `json:"descriptive_scores"`
	TotalScore        int               `json:"total_score"`
	OverallRating     string            `json:"overall_rating"`
	DomainRatings     map[string]string `json:"domain_ratings"`
	StartedAt         time.Time         `json:"started_at"`
	CompletedAt       time.Time         `json:"completed_at"`
	TotalTimeMinutes  int               `json:"total_time_minutes"`
	CreatedAt         time.Time         `json:"created_at"`
}

// User is a registered account. Admins may list results and users.
type User struct {
	ID          string
	Username    string
	FullName    string
	Email       string
	Phone       string
	Company     string
	Position    string
	PassHash    []byte
	Role        string
	IsActive    bool
	CreatedAt   time.Time
	LastLoginAt time.Time
}

// ResultStats aggregates the stored results.
type ResultStats struct {
	TotalAssessments int     `json:"total_assessments"`
	AvgTotalScore    float64 `json:"avg_total_score"`
	AvgTimeMinutes   float64 `json:"avg_time_minutes"`
}

type memoryStore struct {
	mu           sync.RWMutex
	results      map[string]*AssessmentResult
	resultOrder  []string
	usersByEmail map[string]*User
}

// NewMemoryStore returns an in-memory Store. Used when no database path is
// configured, and by tests.
func NewMemoryStore() Store {
	return &memoryStore{
		results:      map[string]*AssessmentResult{},
		usersByEmail: map[string]*User{},
	}
}

func (s *memoryStore) AddResult(r *AssessmentResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[r.ID]; ok {
		return
	}
	s.results[r.ID] = r
	s.resultOrder = append(s.resultOrder, r.ID)
}

func (s *memoryStore) GetResult(id string) *AssessmentResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results[id]
}

func (s *memoryStore) ListResults() []*AssessmentResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*AssessmentResult, 0, len(s.resultOrder))
	for _, id := range s.resultOrder {
		out = append(out, s.results[id])
	}
	// newest first
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *memoryStore) ListResultsByEmail(email string) []*AssessmentResult {
	all := s.ListResults()
	out := []*AssessmentResult{}
	for _, r := range all {
		if e, _ := r.UserData["email"].(string); strings.EqualFold(e, email) {
			out = append(out, r)
		}
	}
	return out
}

func (s *memoryStore) ResultStats() ResultStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := ResultStats{TotalAssessments: len(s.results)}
	if st.TotalAssessments == 0 {
		return st
	}
	var scoreSum, minuteSum int
	for _, r := range s.results {
		scoreSum += r.TotalScore
		minuteSum += r.TotalTimeMinutes
	}
	st.AvgTotalScore = float64(scoreSum) / float64(st.TotalAssessments)
	st.AvgTimeMinutes = float64(minuteSum) / float64(st.TotalAssessments)
	return st
}

func (s *memoryStore) AddUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usersByEmail[strings.ToLower(u.Email)] = u
}

func (s *memoryStore) FindUserByEmail(email string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usersByEmail[strings.ToLower(email)]
}

func (s *memoryStore) FindUserByUsername(username string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.usersByEmail {
		if u.Username != "" && u.Username == username {
			return u
		}
	}
	return nil
}

func (s *memoryStore) ListUsers() []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*User, 0, len(s.usersByEmail))
	for _, u := range s.usersByEmail {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *memoryStore) SetLastLogin(id string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.usersByEmail {
		if u.ID == id {
			u.LastLoginAt = at
			return true
		}
	}
	return false
}
