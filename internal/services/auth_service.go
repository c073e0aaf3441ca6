package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type AuthStore interface {
	FindUserByEmail(email string) (*User, error)
	FindUserByUsername(username string) (*User, error)
	AddUser(u *User) error
	SetLastLogin(id string, at time.Time) error
}

// TokenSigner issues a signed token of the given type (access or refresh)
// carrying the user's identity and role.
type TokenSigner func(uid, email, role, tokenType string, ttl time.Duration) (string, error)

type AuthService struct {
	store      AuthStore
	now        func() time.Time
	idGen      func(prefix string, n int) string
	signToken  TokenSigner
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// RegisterInput carries the identity fields collected at registration.
type RegisterInput struct {
	FullName string
	Username string
	Email    string
	Phone    string
	Company  string
	Position string
	Password string
}

// TokenPair is returned on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func NewAuthService(store AuthStore, signer TokenSigner) *AuthService {
	return &AuthService{
		store:      store,
		now:        func() time.Time { return time.Now().UTC() },
		idGen:      func(prefix string, n int) string { return prefix + shortID(n) },
		signToken:  signer,
		accessTTL:  30 * time.Minute,
		refreshTTL: 7 * 24 * time.Hour,
	}
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

// Register creates a regular user account. Registration is open; regular
// users only exist so their submissions carry a verified identity.
func (s *AuthService) Register(in RegisterInput) (*User, error) {
	return s.register(in, RoleUser)
}

// RegisterAdmin creates an administrator account. Admins carry a username
// in addition to the email and may list stored results.
func (s *AuthService) RegisterAdmin(in RegisterInput) (*User, error) {
	if strings.TrimSpace(in.Username) == "" {
		return nil, NewInvalidError("username required")
	}
	existing, err := s.store.FindUserByUsername(in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("username already taken")
	}
	return s.register(in, RoleAdmin)
}

func (s *AuthService) register(in RegisterInput, role string) (*User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || strings.TrimSpace(in.Password) == "" {
		return nil, NewInvalidError("email/password required")
	}
	existing, err := s.store.FindUserByEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("email already registered")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:        s.idGen("u", 7),
		Username:  strings.TrimSpace(in.Username),
		FullName:  in.FullName,
		Email:     in.Email,
		Phone:     in.Phone,
		Company:   in.Company,
		Position:  in.Position,
		PassHash:  hash,
		Role:      role,
		IsActive:  true,
		CreatedAt: s.now(),
	}
	if err := s.store.AddUser(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues an access/refresh token pair.
func (s *AuthService) Login(email, password string) (*TokenPair, *User, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, nil, NewInvalidError("email/password required")
	}
	u, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, nil, err
	}
	if u == nil || !u.IsActive {
		return nil, nil, NewUnauthorizedError("incorrect email or password")
	}
	if err := bcrypt.CompareHashAndPassword(u.PassHash, []byte(password)); err != nil {
		return nil, nil, NewUnauthorizedError("incorrect email or password")
	}
	if err := s.store.SetLastLogin(u.ID, s.now()); err != nil {
		return nil, nil, err
	}
	pair, err := s.IssueTokens(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, nil, err
	}
	return pair, u, nil
}

// IssueTokens signs a fresh access/refresh pair for an already-verified
// identity. Used by Login and by the refresh endpoint after it has parsed a
// valid refresh token.
func (s *AuthService) IssueTokens(uid, email, role string) (*TokenPair, error) {
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	access, err := s.signToken(uid, email, role, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signToken(uid, email, role, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}
