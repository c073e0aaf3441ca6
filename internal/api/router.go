package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kaleidohq/synergy/internal/middleware"
	"github.com/kaleidohq/synergy/internal/services"
)

type Router struct {
	store       Store
	assessments *services.AssessmentService
	auth        *services.AuthService
}

func NewRouter(store Store) *Router {
	return &Router{
		store:       store,
		assessments: services.NewAssessmentService(newResultStoreAdapter(store)),
		auth:        services.NewAuthService(newAuthStoreAdapter(store), middleware.SignToken),
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/assessment/questions", rt.handleQuestions)                                              // GET
	mux.HandleFunc("/api/assessment/submit", rt.handleSubmit)                                                    // POST
	mux.HandleFunc("/api/assessment/results/", rt.handleResultByID)                                              // GET /api/assessment/results/{id}
	mux.Handle("/api/assessment/admin/results", middleware.RequireAdmin(http.HandlerFunc(rt.handleAdminResults)))// GET
	mux.Handle("/api/assessment/admin/results/", middleware.RequireAdmin(http.HandlerFunc(rt.handleAdminResultsByEmail)))
	mux.Handle("/api/admin/users", middleware.RequireAdmin(http.HandlerFunc(rt.handleAdminUsers)))               // GET
	mux.Handle("/api/admin/stats", middleware.RequireAdmin(http.HandlerFunc(rt.handleAdminStats)))               // GET
	mux.HandleFunc("/api/auth/register", rt.handleRegister)           // POST
	mux.HandleFunc("/api/auth/admin/register", rt.handleRegisterAdmin) // POST
	mux.HandleFunc("/api/auth/login", rt.handleLogin)                 // POST
	mux.HandleFunc("/api/auth/refresh", rt.handleRefresh)             // POST
	mux.Handle("/api/auth/me", middleware.RequireAuth(http.HandlerFunc(rt.handleMe)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusInternalServerError
		switch se.Code {
		case services.ErrorInvalid:
			status = http.StatusBadRequest
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		case services.ErrorForbidden:
			status = http.StatusForbidden
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		}
		http.Error(w, se.Message, status)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// publicQuestion is the projection served to assessment takers: the domain
// tag never leaves the server (it is re-attached by ID at submission time).
type publicQuestion struct {
	ID             string `json:"id"`
	QuestionText   string `json:"question_text"`
	QuestionNumber int    `json:"question_number"`
	Type           string `json:"type"`
}

// GET /api/assessment/questions
func (rt *Router) handleQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	session := services.SessionQuestions()
	out := make([]publicQuestion, 0, len(session))
	for _, q := range session {
		out = append(out, publicQuestion{ID: q.ID, QuestionText: q.Text, QuestionNumber: q.DisplayNumber, Type: q.Type})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"questions":       out,
		"total_questions": len(out),
		"domains":         services.Domains,
	})
}

type submitRequest struct {
	UserData  map[string]any `json:"user_data"`
	Responses []struct {
		QuestionID string `json:"question_id"`
		Response   int    `json:"response"`
	} `json:"responses"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at"`
}

// POST /api/assessment/submit
func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	startedAt, err := time.Parse(time.RFC3339, req.StartedAt)
	if err != nil {
		http.Error(w, "invalid started_at", http.StatusBadRequest)
		return
	}
	completedAt, err := time.Parse(time.RFC3339, req.CompletedAt)
	if err != nil {
		http.Error(w, "invalid completed_at", http.StatusBadRequest)
		return
	}

	submitted := make([]services.Response, 0, len(req.Responses))
	for _, a := range req.Responses {
		submitted = append(submitted, services.Response{QuestionID: a.QuestionID, Value: a.Response})
	}

	result, err := rt.assessments.SubmitAssessment(req.UserData, submitted, startedAt.UTC(), completedAt.UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultView(result))
}

// GET /api/assessment/results/{id}
func (rt *Router) handleResultByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/assessment/results/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	result, err := rt.assessments.GetResult(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultView(result))
}

// GET /api/assessment/admin/results
func (rt *Router) handleAdminResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	results, err := rt.assessments.ListResults()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultViews(results))
}

// GET /api/assessment/admin/results/{email}
func (rt *Router) handleAdminResultsByEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	email := strings.TrimPrefix(r.URL.Path, "/api/assessment/admin/results/")
	if email == "" {
		http.NotFound(w, r)
		return
	}
	results, err := rt.assessments.ListResultsByEmail(email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultViews(results))
}

// GET /api/admin/users
func (rt *Router) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	users := rt.store.ListUsers()
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, userViewOf(u))
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/admin/stats
func (rt *Router) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	stats, err := rt.assessments.Stats()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Position string `json:"position"`
	Password string `json:"password"`
}

func (req registerRequest) input() services.RegisterInput {
	return services.RegisterInput{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Company:  req.Company,
		Position: req.Position,
		Password: req.Password,
	}
}

// POST /api/auth/register
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	rt.register(w, r, rt.auth.Register)
}

// POST /api/auth/admin/register
func (rt *Router) handleRegisterAdmin(w http.ResponseWriter, r *http.Request) {
	rt.register(w, r, rt.auth.RegisterAdmin)
}

func (rt *Router) register(w http.ResponseWriter, r *http.Request, create func(services.RegisterInput) (*services.User, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	u, err := create(req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userViewOf(fromServiceUser(u)))
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pair, _, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// POST /api/auth/refresh
func (rt *Router) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		http.Error(w, "refresh token required", http.StatusBadRequest)
		return
	}
	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil || claims.TokenType != services.TokenTypeRefresh {
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}
	pair, err := rt.auth.IssueTokens(claims.UID, claims.Email, claims.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// GET /api/auth/me
func (rt *Router) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	u := rt.store.FindUserByEmail(claims.Email)
	if u == nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, userViewOf(u))
}

// resultView drops the raw responses from API output; scores and ratings are
// the public shape of a result.
func resultView(r *services.AssessmentResult) *services.AssessmentResult {
	out := *r
	out.Responses = nil
	return &out
}

func resultViews(rs []*services.AssessmentResult) []*services.AssessmentResult {
	out := make([]*services.AssessmentResult, 0, len(rs))
	for _, r := range rs {
		out = append(out, resultView(r))
	}
	return out
}

type userView struct {
	ID          string    `json:"id"`
	Username    string    `json:"username,omitempty"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Company     string    `json:"company,omitempty"`
	Position    string    `json:"position,omitempty"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

func userViewOf(u *User) userView {
	return userView{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		Email:       u.Email,
		Phone:       u.Phone,
		Company:     u.Company,
		Position:    u.Position,
		Role:        u.Role,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
