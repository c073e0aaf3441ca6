package services

import "time"

// Question is a single catalog entry. The canonical catalog is immutable;
// shuffled session views are copies with DisplayNumber assigned.
type Question struct {
	ID                   string `json:"id"`
	Text                 string `json:"question_text"`
	Domain               string `json:"domain"`
	Type                 string `json:"type"` // mcq or descriptive
	DomainQuestionNumber int    `json:"domain_question_number"`
	DisplayNumber        int    `json:"question_number,omitempty"`
}

// Response is one answered question after the domain and type have been
// re-attached from the canonical catalog.
type Response struct {
	QuestionID   string `json:"question_id"`
	Value        int    `json:"response"` // 1-5 for mcq, 0-3 for descriptive
	Domain       string `json:"domain,omitempty"`
	QuestionType string `json:"question_type,omitempty"`
}

// AssessmentResult is the scored outcome of one submission. Created once,
// never updated.
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

// Statistics aggregates stored results for the admin dashboard.
type Statistics struct {
	TotalAssessments int     `json:"total_assessments"`
	AvgTotalScore    float64 `json:"avg_total_score"`
	AvgTimeMinutes   float64 `json:"avg_time_minutes"`
}

// User is an account record. Regular users register to take the assessment;
// admins additionally carry a username and may list results.
type User struct {
	ID          string
	Username    string
	FullName    string
	Email       string
	Phone       string
	Company     string
	Position    string
	PassHash    []byte
	Role        string // user or admin
	IsActive    bool
	CreatedAt   time.Time
	LastLoginAt time.Time
}
