package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/kaleidohq/synergy/internal/api"
)

// SQLiteStore persists users and assessment results. Map-valued columns are
// stored as JSON text; timestamps as RFC 3339 strings.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

var _ api.Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) logErr(prefix string, err error) {
	if err != nil {
		log.Errorf("sqlite store: %s: %v", prefix, err)
	}
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func toNullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		log.Errorf("sqlite store: parse time %q: %v", s, err)
		return time.Time{}
	}
	return t
}

func encodeJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeJSON(ns sql.NullString, out any, what string) {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return
	}
	if err := json.Unmarshal([]byte(ns.String), out); err != nil {
		log.Errorf("sqlite store: decode %s: %v", what, err)
	}
}

// --- Assessment results ---

func (s *SQLiteStore) AddResult(r *api.AssessmentResult) {
	if r == nil || strings.TrimSpace(r.ID) == "" {
		return
	}
	userData, err := encodeJSON(r.UserData)
	if err != nil {
		s.logErr("AddResult encode user_data", err)
		return
	}
	responses, err := encodeJSON(r.Responses)
	if err != nil {
		s.logErr("AddResult encode responses", err)
		return
	}
	domainScores, err := encodeJSON(r.DomainScores)
	if err != nil {
		s.logErr("AddResult encode domain_scores", err)
		return
	}
	descriptiveScores, err := encodeJSON(r.DescriptiveScores)
	if err != nil {
		s.logErr("AddResult encode descriptive_scores", err)
		return
	}
	domainRatings, err := encodeJSON(r.DomainRatings)
	if err != nil {
		s.logErr("AddResult encode domain_ratings", err)
		return
	}
	_, err = s.db.Exec(`INSERT INTO assessment_results
      (id, user_data, responses, domain_scores, descriptive_scores, total_score,
       overall_rating, domain_ratings, started_at, completed_at, total_time_minutes, created_at)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, userData, responses, domainScores, descriptiveScores, r.TotalScore,
		r.OverallRating, domainRatings,
		r.StartedAt.UTC().Format(time.RFC3339Nano),
		r.CompletedAt.UTC().Format(time.RFC3339Nano),
		r.TotalTimeMinutes,
		r.CreatedAt.UTC().Format(time.RFC3339Nano))
	s.logErr("AddResult", err)
}

const resultColumns = `id, user_data, responses, domain_scores, descriptive_scores,
   total_score, overall_rating, domain_ratings, started_at, completed_at,
   total_time_minutes, created_at`

func scanResult(row interface{ Scan(...any) error }) (*api.AssessmentResult, error) {
	var (
		r                 api.AssessmentResult
		userData          sql.NullString
		responses         sql.NullString
		domainScores      sql.NullString
		descriptiveScores sql.NullString
		domainRatings     sql.NullString
		startedAt         string
		completedAt       string
		createdAt         string
	)
	err := row.Scan(&r.ID, &userData, &responses, &domainScores, &descriptiveScores,
		&r.TotalScore, &r.OverallRating, &domainRatings, &startedAt, &completedAt,
		&r.TotalTimeMinutes, &createdAt)
	if err != nil {
		return nil, err
	}
	decodeJSON(userData, &r.UserData, "user_data")
	decodeJSON(responses, &r.Responses, "responses")
	decodeJSON(domainScores, &r.DomainScores, "domain_scores")
	decodeJSON(descriptiveScores, &r.DescriptiveScores, "descriptive_scores")
	decodeJSON(domainRatings, &r.DomainRatings, "domain_ratings")
	r.StartedAt = parseTime(startedAt)
	r.CompletedAt = parseTime(completedAt)
	r.CreatedAt = parseTime(createdAt)
	return &r, nil
}

func (s *SQLiteStore) GetResult(id string) *api.AssessmentResult {
	row := s.db.QueryRow(`SELECT `+resultColumns+` FROM assessment_results WHERE id = ?`, id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("GetResult", err)
		return nil
	}
	return r
}

func (s *SQLiteStore) listResults(query string, args ...any) []*api.AssessmentResult {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		s.logErr("ListResults query", err)
		return nil
	}
	defer rows.Close()
	out := []*api.AssessmentResult{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			s.logErr("ListResults scan", err)
			continue
		}
		out = append(out, r)
	}
	s.logErr("ListResults rows", rows.Err())
	return out
}

func (s *SQLiteStore) ListResults() []*api.AssessmentResult {
	return s.listResults(`SELECT ` + resultColumns + ` FROM assessment_results ORDER BY created_at DESC`)
}

func (s *SQLiteStore) ListResultsByEmail(email string) []*api.AssessmentResult {
	return s.listResults(`SELECT `+resultColumns+` FROM assessment_results
      WHERE json_extract(user_data, '$.email') = ? COLLATE NOCASE
      ORDER BY created_at DESC`, email)
}

func (s *SQLiteStore) ResultStats() api.ResultStats {
	var (
		st         api.ResultStats
		avgScore   sql.NullFloat64
		avgMinutes sql.NullFloat64
	)
	err := s.db.QueryRow(`SELECT COUNT(*), AVG(total_score), AVG(total_time_minutes)
      FROM assessment_results`).Scan(&st.TotalAssessments, &avgScore, &avgMinutes)
	if err != nil {
		s.logErr("ResultStats", err)
		return st
	}
	st.AvgTotalScore = avgScore.Float64
	st.AvgTimeMinutes = avgMinutes.Float64
	return st
}

// --- Users ---

func (s *SQLiteStore) AddUser(u *api.User) {
	if u == nil || strings.TrimSpace(u.ID) == "" {
		return
	}
	_, err := s.db.Exec(`INSERT INTO users
      (id, username, full_name, email, phone, company, position, pass_hash, role, is_active, created_at, last_login_at)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, toNullString(u.Username), toNullString(u.FullName), u.Email,
		toNullString(u.Phone), toNullString(u.Company), toNullString(u.Position),
		u.PassHash, u.Role, boolToInt64(u.IsActive),
		u.CreatedAt.UTC().Format(time.RFC3339Nano), toNullTime(u.LastLoginAt))
	s.logErr("AddUser", err)
}

const userColumns = `id, username, full_name, email, phone, company, position,
   pass_hash, role, is_active, created_at, last_login_at`

func scanUser(row interface{ Scan(...any) error }) (*api.User, error) {
	var (
		u           api.User
		username    sql.NullString
		fullName    sql.NullString
		phone       sql.NullString
		company     sql.NullString
		position    sql.NullString
		isActive    int64
		createdAt   string
		lastLoginAt sql.NullString
	)
	err := row.Scan(&u.ID, &username, &fullName, &u.Email, &phone, &company, &position,
		&u.PassHash, &u.Role, &isActive, &createdAt, &lastLoginAt)
	if err != nil {
		return nil, err
	}
	u.Username = username.String
	u.FullName = fullName.String
	u.Phone = phone.String
	u.Company = company.String
	u.Position = position.String
	u.IsActive = isActive != 0
	u.CreatedAt = parseTime(createdAt)
	u.LastLoginAt = parseTime(lastLoginAt.String)
	return &u, nil
}

func (s *SQLiteStore) findUser(query string, args ...any) *api.User {
	row := s.db.QueryRow(query, args...)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("FindUser", err)
		return nil
	}
	return u
}

func (s *SQLiteStore) FindUserByEmail(email string) *api.User {
	return s.findUser(`SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email)
}

func (s *SQLiteStore) FindUserByUsername(username string) *api.User {
	if strings.TrimSpace(username) == "" {
		return nil
	}
	return s.findUser(`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (s *SQLiteStore) ListUsers() []*api.User {
	rows, err := s.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`)
	if err != nil {
		s.logErr("ListUsers query", err)
		return nil
	}
	defer rows.Close()
	out := []*api.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			s.logErr("ListUsers scan", err)
			continue
		}
		out = append(out, u)
	}
	s.logErr("ListUsers rows", rows.Err())
	return out
}

func (s *SQLiteStore) SetLastLogin(id string, at time.Time) bool {
	res, err := s.db.Exec(`UPDATE users SET last_login_at = ? WHERE id = ?`,
		at.UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		s.logErr("SetLastLogin", err)
		return false
	}
	n, err := res.RowsAffected()
	s.logErr("SetLastLogin rows affected", err)
	return n > 0
}
