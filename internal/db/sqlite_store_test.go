package db

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kaleidohq/synergy/internal/api"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := RunMigrations(conn, ""); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	store, err := NewSQLiteStore(conn)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func sampleResult(id, email string, createdAt time.Time) *api.AssessmentResult {
	started := createdAt.Add(-30 * time.Minute)
	return &api.AssessmentResult{
		ID:                id,
		UserData:          map[string]any{"name": "Test Person", "email": email},
		Responses:         []api.Response{{QuestionID: "1", Value: 4, Domain: "leadership", QuestionType: "mcq"}},
		DomainScores:      map[string]int{"leadership": 40},
		DescriptiveScores: map[string]int{"desc_1": 2},
		TotalScore:        280,
		OverallRating:     "strength",
		DomainRatings:     map[string]string{"leadership": "strength"},
		StartedAt:         started,
		CompletedAt:       createdAt,
		TotalTimeMinutes:  30,
		CreatedAt:         createdAt,
	}
}

func TestResultRoundTrip(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	in := sampleResult("R1", "alice@example.com", now)
	store.AddResult(in)

	got := store.GetResult("R1")
	if got == nil {
		t.Fatal("GetResult returned nil")
	}
	if got.TotalScore != 280 || got.OverallRating != "strength" {
		t.Errorf("score/rating = %d/%q, want 280/strength", got.TotalScore, got.OverallRating)
	}
	if got.UserData["email"] != "alice@example.com" {
		t.Errorf("user_data email = %v", got.UserData["email"])
	}
	if len(got.Responses) != 1 || got.Responses[0].QuestionID != "1" {
		t.Errorf("responses = %+v", got.Responses)
	}
	if got.DomainScores["leadership"] != 40 {
		t.Errorf("domain_scores = %v", got.DomainScores)
	}
	if !got.CreatedAt.Equal(now) || got.TotalTimeMinutes != 30 {
		t.Errorf("created_at/minutes = %v/%d", got.CreatedAt, got.TotalTimeMinutes)
	}

	if store.GetResult("missing") != nil {
		t.Error("GetResult for unknown id should be nil")
	}
}

func TestListResultsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store.AddResult(sampleResult("R1", "a@example.com", base))
	store.AddResult(sampleResult("R2", "b@example.com", base.Add(time.Hour)))
	store.AddResult(sampleResult("R3", "a@example.com", base.Add(2*time.Hour)))

	all := store.ListResults()
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	if all[0].ID != "R3" || all[2].ID != "R1" {
		t.Errorf("order = %s,%s,%s; want R3 first, R1 last", all[0].ID, all[1].ID, all[2].ID)
	}
}

func TestListResultsByEmail(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store.AddResult(sampleResult("R1", "a@example.com", base))
	store.AddResult(sampleResult("R2", "b@example.com", base.Add(time.Hour)))
	store.AddResult(sampleResult("R3", "A@Example.com", base.Add(2*time.Hour)))

	got := store.ListResultsByEmail("a@example.com")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (case-insensitive match)", len(got))
	}
	if got[0].ID != "R3" || got[1].ID != "R1" {
		t.Errorf("ids = %s,%s", got[0].ID, got[1].ID)
	}
	if rs := store.ListResultsByEmail("nobody@example.com"); len(rs) != 0 {
		t.Errorf("unexpected results for unknown email: %d", len(rs))
	}
}

func TestResultStats(t *testing.T) {
	store := newTestStore(t)

	empty := store.ResultStats()
	if empty.TotalAssessments != 0 || empty.AvgTotalScore != 0 {
		t.Errorf("empty stats = %+v", empty)
	}

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	r1 := sampleResult("R1", "a@example.com", base)
	r1.TotalScore = 200
	r1.TotalTimeMinutes = 20
	r2 := sampleResult("R2", "b@example.com", base.Add(time.Hour))
	r2.TotalScore = 300
	r2.TotalTimeMinutes = 40
	store.AddResult(r1)
	store.AddResult(r2)

	st := store.ResultStats()
	if st.TotalAssessments != 2 {
		t.Errorf("TotalAssessments = %d, want 2", st.TotalAssessments)
	}
	if st.AvgTotalScore != 250 {
		t.Errorf("AvgTotalScore = %v, want 250", st.AvgTotalScore)
	}
	if st.AvgTimeMinutes != 30 {
		t.Errorf("AvgTimeMinutes = %v, want 30", st.AvgTimeMinutes)
	}
}

func TestUserRoundTrip(t *testing.T) {
	store := newTestStore(t)
	created := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store.AddUser(&api.User{
		ID:        "u1",
		Username:  "admin",
		FullName:  "Admin Person",
		Email:     "admin@example.com",
		PassHash:  []byte("hash"),
		Role:      "admin",
		IsActive:  true,
		CreatedAt: created,
	})

	got := store.FindUserByEmail("ADMIN@example.com")
	if got == nil {
		t.Fatal("FindUserByEmail returned nil")
	}
	if got.Username != "admin" || got.Role != "admin" || !got.IsActive {
		t.Errorf("user = %+v", got)
	}
	if string(got.PassHash) != "hash" {
		t.Errorf("pass_hash = %q", got.PassHash)
	}
	if !got.LastLoginAt.IsZero() {
		t.Errorf("last_login_at = %v, want zero", got.LastLoginAt)
	}

	if store.FindUserByUsername("admin") == nil {
		t.Error("FindUserByUsername returned nil")
	}
	if store.FindUserByUsername("") != nil {
		t.Error("empty username should not match")
	}

	users := store.ListUsers()
	if len(users) != 1 || users[0].ID != "u1" {
		t.Errorf("ListUsers = %+v", users)
	}
}

func TestSetLastLogin(t *testing.T) {
	store := newTestStore(t)
	created := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store.AddUser(&api.User{ID: "u1", Email: "a@example.com", PassHash: []byte("h"), Role: "user", IsActive: true, CreatedAt: created})

	at := created.Add(time.Hour)
	if !store.SetLastLogin("u1", at) {
		t.Fatal("SetLastLogin = false, want true")
	}
	if store.SetLastLogin("missing", at) {
		t.Error("SetLastLogin for unknown id = true, want false")
	}
	got := store.FindUserByEmail("a@example.com")
	if got == nil {
		t.Fatal("FindUserByEmail returned nil")
	}
	if !got.LastLoginAt.Equal(at) {
		t.Errorf("last_login_at = %v, want %v", got.LastLoginAt, at)
	}
}
