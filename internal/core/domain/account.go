package domain

import "time"

const (
	RoleTrader = "Trader"
	RoleGuest  = "Guest"
)

const GuestAccountID = "guest"

// Account is the identity behind a session. A guest account is synthetic:
// it has a display name and role but no email and is never persisted.
type Account struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email,omitempty" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         string    `json:"role" bson:"role"`
	Pro          bool      `json:"pro" bson:"pro"`
	Guest        bool      `json:"guest" bson:"-"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// GuestAccount returns the placeholder identity used by continue-as-guest.
func GuestAccount() Account {
	return Account{
		ID:    GuestAccountID,
		Name:  "Guest User",
		Role:  RoleGuest,
		Guest: true,
	}
}

// Session is the single-session state slot: the active tier plus the account it belongs to.
type Session struct {
	ID      string     `json:"id"`
	Tier    AccessTier `json:"tier"`
	Account *Account   `json:"account,omitempty"`
}

// AnonymousSession is the state after sign-out or before any sign-in.
func AnonymousSession(id string) *Session {
	return &Session{ID: id, Tier: TierAnonymous}
}
