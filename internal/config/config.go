package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string
	AppURL  string // base URL used to build magic links

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables
	S3BucketName string
	S3BaseURL    string // optional public URL override (CDN); derived from bucket+region when empty

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	SessionTTL        time.Duration

	OTPLength      int
	OTPTTL         time.Duration
	EmailTokenTTL  time.Duration
	ResetTokenTTL  time.Duration
	SweepInterval  time.Duration
	PresignTTL     time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users              string
	Sessions           string
	OTPs               string
	VerificationTokens string
	Attendees          string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),
		AppURL:  getEnv("APP_URL", "http://localhost:3000"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Users:              getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:           getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			OTPs:               getEnv("DYNAMO_TABLE_OTPS", "otps"),
			VerificationTokens: getEnv("DYNAMO_TABLE_VERIFICATION_TOKENS", "verification_tokens"),
			Attendees:          getEnv("DYNAMO_TABLE_ATTENDEES", "attendees"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "event-registration-files"),
		S3BaseURL:    getEnv("S3_BASE_URL", ""),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		SessionTTL:        time.Duration(getEnvInt("SESSION_TTL_DAYS", 7)) * 24 * time.Hour,

		OTPLength:     getEnvInt("OTP_LENGTH", 6),
		OTPTTL:        time.Duration(getEnvInt("OTP_EXPIRY_MINUTES", 5)) * time.Minute,
		EmailTokenTTL: time.Duration(getEnvInt("EMAIL_VERIFICATION_EXPIRY_HOURS", 24)) * time.Hour,
		ResetTokenTTL: time.Duration(getEnvInt("PASSWORD_RESET_EXPIRY_MINUTES", 30)) * time.Minute,
		SweepInterval: time.Duration(getEnvInt("TOKEN_SWEEP_INTERVAL_MINUTES", 60)) * time.Minute,
		PresignTTL:    time.Duration(getEnvInt("S3_PRESIGNED_EXPIRES_SECONDS", 900)) * time.Second,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 1025),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
