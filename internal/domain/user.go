package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an identity created on first registration. At least one of Email or
// Mobile is always present. Users are never hard-deleted.
//
// Email and Mobile are GSI hash keys, so a nil contact must be omitted from
// the item entirely; a NULL attribute would fail the index key type check.
type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id"`
	Email        *string   `json:"email,omitempty" dynamodbav:"email,omitempty"`
	Mobile       *string   `json:"mobile,omitempty" dynamodbav:"mobile,omitempty"`
	Name         *string   `json:"name,omitempty" dynamodbav:"name"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Role         string    `json:"role" dynamodbav:"role"`
	Verified     bool      `json:"is_verified" dynamodbav:"verified"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

type RegisterMobileRequest struct {
	Mobile string  `json:"mobile" validate:"required,e164"`
	Name   *string `json:"name" validate:"omitempty,min=2,max=100"`
}

type RegisterEmailRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
}

type LoginMobileRequest struct {
	Mobile string `json:"mobile" validate:"required,e164"`
}

type LoginEmailRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email  *string `json:"email" validate:"omitempty,email"`
	Mobile *string `json:"mobile" validate:"omitempty,e164"`
}
