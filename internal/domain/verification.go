package domain

// OTPPurpose discriminates which contact channel an OTP verifies.
type OTPPurpose string

const (
	OTPMobile OTPPurpose = "mobile"
	OTPEmail  OTPPurpose = "email"
)

// TokenPurpose discriminates long-lived magic-link tokens.
type TokenPurpose string

const (
	TokenVerifyEmail   TokenPurpose = "verify_email"
	TokenResetPassword TokenPurpose = "reset_password"
)

// OTP is a short numeric one-time code delivered out of band.
// PK: contact, SK: purpose — issuing a new code for the same (contact, purpose)
// overwrites the previous one, so at most one active code exists per pair.
// ExpiresAt is a Unix timestamp usable as a DynamoDB TTL attribute.
type OTP struct {
	Contact   string     `json:"contact" dynamodbav:"contact"`
	Purpose   OTPPurpose `json:"purpose" dynamodbav:"purpose"`
	UserID    string     `json:"user_id" dynamodbav:"user_id"`
	Code      string     `json:"-" dynamodbav:"code"`
	ExpiresAt int64      `json:"expires_at" dynamodbav:"expires_at"`
	Verified  bool       `json:"verified" dynamodbav:"verified"`
	CreatedAt int64      `json:"created_at" dynamodbav:"created_at"`
}

// VerificationToken is an opaque single-use magic-link secret.
// PK: token. GSI user_id-purpose-index supports invalidating prior
// unconsumed tokens when a new one is issued.
type VerificationToken struct {
	Token     string       `json:"-" dynamodbav:"token"`
	UserID    string       `json:"user_id" dynamodbav:"user_id"`
	Purpose   TokenPurpose `json:"purpose" dynamodbav:"purpose"`
	ExpiresAt int64        `json:"expires_at" dynamodbav:"expires_at"`
	Used      bool         `json:"used" dynamodbav:"used"`
	CreatedAt int64        `json:"created_at" dynamodbav:"created_at"`
}
