package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kaleidohq/synergy/internal/middleware"
)

func newTestServer() *httptest.Server {
	mux := http.NewServeMux()
	NewRouter(NewMemoryStore()).Register(mux)
	return httptest.NewServer(middleware.WithAuth(mux))
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any, out any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	if out != nil && resp.StatusCode < 300 {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func getJSON(t *testing.T, client *http.Client, url, token string, out any) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	if out != nil && resp.StatusCode < 300 {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func TestQuestionsEndpointStripsDomain(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	var payload struct {
		Questions      []map[string]any `json:"questions"`
		TotalQuestions int              `json:"total_questions"`
		Domains        []string         `json:"domains"`
	}
	resp := getJSON(t, srv.Client(), srv.URL+"/api/assessment/questions", "", &payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if payload.TotalQuestions != 72 || len(payload.Questions) != 72 {
		t.Fatalf("total questions = %d/%d, want 72", payload.TotalQuestions, len(payload.Questions))
	}
	if len(payload.Domains) != 7 {
		t.Fatalf("domains = %d, want 7", len(payload.Domains))
	}
	for _, q := range payload.Questions {
		if _, ok := q["domain"]; ok {
			t.Fatalf("question leaked domain tag: %+v", q)
		}
	}
}

func submission(t *testing.T, client *http.Client, base string) map[string]any {
	t.Helper()
	var payload struct {
		Questions []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"questions"`
	}
	getJSON(t, client, base+"/api/assessment/questions", "", &payload)

	answers := make([]map[string]any, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		v := 5
		if q.Type == "descriptive" {
			v = 3
		}
		answers = append(answers, map[string]any{"question_id": q.ID, "response": v})
	}
	started := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	return map[string]any{
		"user_data":    map[string]string{"name": "Pat", "email": "pat@example.com"},
		"responses":    answers,
		"started_at":   started.Format(time.RFC3339),
		"completed_at": started.Add(31 * time.Minute).Format(time.RFC3339),
	}
}

func TestSubmitAndFetchResult(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()
	client := srv.Client()

	var result struct {
		ID            string         `json:"id"`
		DomainScores  map[string]int `json:"domain_scores"`
		TotalScore    int            `json:"total_score"`
		OverallRating string         `json:"overall_rating"`
		TimeMinutes   int            `json:"total_time_minutes"`
	}
	resp := postJSON(t, client, srv.URL+"/api/assessment/submit", "", submission(t, client, srv.URL), &result)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit status = %d, want 200", resp.StatusCode)
	}
	if result.ID == "" {
		t.Fatalf("result id missing")
	}
	if result.TotalScore != 350 || result.OverallRating != "exemplary" {
		t.Fatalf("scores = %d/%s, want 350/exemplary", result.TotalScore, result.OverallRating)
	}
	if result.TimeMinutes != 31 {
		t.Fatalf("time minutes = %d, want 31", result.TimeMinutes)
	}
	for d, s := range result.DomainScores {
		if s != 50 {
			t.Fatalf("domain %s score = %d, want 50", d, s)
		}
	}

	var fetched struct {
		ID string `json:"id"`
	}
	resp = getJSON(t, client, srv.URL+"/api/assessment/results/"+result.ID, "", &fetched)
	if resp.StatusCode != http.StatusOK || fetched.ID != result.ID {
		t.Fatalf("fetch status = %d id = %q", resp.StatusCode, fetched.ID)
	}

	resp = getJSON(t, client, srv.URL+"/api/assessment/results/never-stored", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing result status = %d, want 404", resp.StatusCode)
	}
}

func TestSubmitRejectsIncomplete(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()
	client := srv.Client()

	body := submission(t, client, srv.URL)
	answers := body["responses"].([]map[string]any)
	body["responses"] = answers[:len(answers)-1]

	resp := postJSON(t, client, srv.URL+"/api/assessment/submit", "", body, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	resp = getJSON(t, client, srv.URL+"/api/assessment/questions", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("questions unavailable after rejected submission: %d", resp.StatusCode)
	}
}

func TestAdminResultAccess(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()
	client := srv.Client()

	resp := postJSON(t, client, srv.URL+"/api/assessment/submit", "", submission(t, client, srv.URL), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit status = %d", resp.StatusCode)
	}

	// anonymous and non-admin callers are rejected
	resp = getJSON(t, client, srv.URL+"/api/assessment/admin/results", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous admin list status = %d, want 401", resp.StatusCode)
	}

	postJSON(t, client, srv.URL+"/api/auth/register", "", map[string]string{
		"full_name": "Regular", "email": "reg@example.com", "password": "Secret123",
	}, nil)
	var userPair struct {
		AccessToken string `json:"access_token"`
	}
	postJSON(t, client, srv.URL+"/api/auth/login", "", map[string]string{
		"email": "reg@example.com", "password": "Secret123",
	}, &userPair)
	resp = getJSON(t, client, srv.URL+"/api/assessment/admin/results", userPair.AccessToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("user admin list status = %d, want 403", resp.StatusCode)
	}

	// admins see everything
	postJSON(t, client, srv.URL+"/api/auth/admin/register", "", map[string]string{
		"full_name": "Boss", "username": "boss", "email": "boss@example.com", "password": "Secret123",
	}, nil)
	var adminPair struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	postJSON(t, client, srv.URL+"/api/auth/login", "", map[string]string{
		"email": "boss@example.com", "password": "Secret123",
	}, &adminPair)

	var all []map[string]any
	resp = getJSON(t, client, srv.URL+"/api/assessment/admin/results", adminPair.AccessToken, &all)
	if resp.StatusCode != http.StatusOK || len(all) != 1 {
		t.Fatalf("admin list status = %d len = %d", resp.StatusCode, len(all))
	}

	var byEmail []map[string]any
	resp = getJSON(t, client, srv.URL+"/api/assessment/admin/results/pat@example.com", adminPair.AccessToken, &byEmail)
	if resp.StatusCode != http.StatusOK || len(byEmail) != 1 {
		t.Fatalf("admin by-email status = %d len = %d", resp.StatusCode, len(byEmail))
	}

	var stats struct {
		TotalAssessments int `json:"total_assessments"`
	}
	resp = getJSON(t, client, srv.URL+"/api/admin/stats", adminPair.AccessToken, &stats)
	if resp.StatusCode != http.StatusOK || stats.TotalAssessments != 1 {
		t.Fatalf("stats status = %d total = %d", resp.StatusCode, stats.TotalAssessments)
	}

	// refresh tokens cannot be used as access tokens but can mint new pairs
	resp = getJSON(t, client, srv.URL+"/api/assessment/admin/results", adminPair.RefreshToken, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("refresh-as-access status = %d, want 401", resp.StatusCode)
	}
	var refreshed struct {
		AccessToken string `json:"access_token"`
	}
	resp = postJSON(t, client, srv.URL+"/api/auth/refresh", "", map[string]string{
		"refresh_token": adminPair.RefreshToken,
	}, &refreshed)
	if resp.StatusCode != http.StatusOK || refreshed.AccessToken == "" {
		t.Fatalf("refresh status = %d", resp.StatusCode)
	}
}

func TestDuplicateRegistration(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()
	client := srv.Client()

	body := map[string]string{"full_name": "Pat", "email": "dup@example.com", "password": "Secret123"}
	resp := postJSON(t, client, srv.URL+"/api/auth/register", "", body, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first register status = %d", resp.StatusCode)
	}
	resp = postJSON(t, client, srv.URL+"/api/auth/register", "", body, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", resp.StatusCode)
	}
}

func TestMeEndpoint(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()
	client := srv.Client()

	email := fmt.Sprintf("me_%d@example.com", time.Now().UnixNano())
	postJSON(t, client, srv.URL+"/api/auth/register", "", map[string]string{
		"full_name": "Me", "email": email, "password": "Secret123",
	}, nil)
	var pair struct {
		AccessToken string `json:"access_token"`
	}
	postJSON(t, client, srv.URL+"/api/auth/login", "", map[string]string{
		"email": email, "password": "Secret123",
	}, &pair)

	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	resp := getJSON(t, client, srv.URL+"/api/auth/me", pair.AccessToken, &me)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d", resp.StatusCode)
	}
	if me.Email != email || me.Role != "user" {
		t.Fatalf("me = %+v", me)
	}
}
