package api

import "time"

type Store interface {
	AddResult(r *AssessmentResult)
	GetResult(id string) *AssessmentResult
	ListResults() []*AssessmentResult
	ListResultsByEmail(email string) []*AssessmentResult
	ResultStats() ResultStats

	AddUser(u *User)
	FindUserByEmail(email string) *User
	FindUserByUsername(username string) *User
	ListUsers() []*User
	SetLastLogin(id string, at time.Time) bool
}

var _ Store = (*memoryStore)(nil)
