package domain

import "time"

// Session represents an authenticated login. The signed bearer token carries
// the session id; the row is the revocation source of truth and is read on
// every authenticated request.
type Session struct {
	SessionID string    `json:"id" dynamodbav:"session_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"`
	Revoked   bool      `json:"-" dynamodbav:"revoked"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	User      *User     `json:"user,omitempty" dynamodbav:"-"`
}
