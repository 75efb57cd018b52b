// Package session persists the logged-in user between runs and watches
// the account's active flag while the app is open.
package session

import (
	"time"

	"github.com/qwicbook/qwicbook-pro/internal/upstream"
)

// UserInfo is the identity blob resolved at login time.
type UserInfo struct {
	AdminUserID int64  `json:"adminUserId"`
	City        string `json:"city"`
	CityID      int64  `json:"cityId"`
	Mobile      string `json:"mobile"`
	UserType    string `json:"userType"`
}

// Session is the single persisted login snapshot. Exactly one session
// exists at a time; writing a new one replaces the old.
type Session struct {
	LoggedIn bool      `json:"loggedIn"`
	Email    string    `json:"email"`
	LoginAt  time.Time `json:"loginAt"`
	User     UserInfo  `json:"user"`
}

// FromUserType builds a session snapshot out of the CheckUserType
// answer.
func FromUserType(email string, info *upstream.UserType, at time.Time) *Session {
	s := &Session{
		LoggedIn: true,
		Email:    email,
		LoginAt:  at,
	}
	if info != nil {
		s.User = UserInfo{
			AdminUserID: int64(info.AdminUserID),
			City:        info.City,
			CityID:      int64(info.CityID),
			Mobile:      info.Mobile.String(),
			UserType:    info.UserType,
		}
	}
	return s
}

// Store persists the session snapshot. Load returns nil when no
// session has been saved.
type Store interface {
	Load() (*Session, error)
	Save(*Session) error
	Clear() error
}
