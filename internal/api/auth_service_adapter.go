package api

import (
	"time"

	"github.com/kaleidohq/synergy/internal/services"
)

type authStoreAdapter struct {
	store Store
}

func newAuthStoreAdapter(store Store) services.AuthStore {
	return &authStoreAdapter{store: store}
}

func (a *authStoreAdapter) FindUserByEmail(email string) (*services.User, error) {
	return toServiceUser(a.store.FindUserByEmail(email)), nil
}

func (a *authStoreAdapter) FindUserByUsername(username string) (*services.User, error) {
	return toServiceUser(a.store.FindUserByUsername(username)), nil
}

func (a *authStoreAdapter) AddUser(u *services.User) error {
	if u == nil {
		return services.NewInvalidError("user required")
	}
	a.store.AddUser(fromServiceUser(u))
	return nil
}

func (a *authStoreAdapter) SetLastLogin(id string, at time.Time) error {
	a.store.SetLastLogin(id, at)
	return nil
}

var _ services.AuthStore = (*authStoreAdapter)(nil)

func toServiceUser(u *User) *services.User {
	if u == nil {
		return nil
	}
	su := services.User(*u)
	return &su
}

func fromServiceUser(u *services.User) *User {
	au := User(*u)
	return &au
}
