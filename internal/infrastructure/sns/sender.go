package sns

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/event-registration-api/internal/config"
	"github.com/event-registration-api/internal/domain"
)

// SMSSender sends SMS messages via AWS SNS.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type sender struct {
	client *sns.Client
}

func NewSender(cfg *config.Config) (SMSSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &sender{client: sns.NewFromConfig(awsCfg)}, nil
}

func (s *sender) SendSMS(ctx context.Context, to, message string) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &to,
		Message:     &message,
	})
	return err
}

// Unconfigured is the explicit no-sender variant: it logs and fails in
// production, logs and succeeds in development (the code is visible in logs).
type Unconfigured struct {
	Dev bool
}

func (u Unconfigured) SendSMS(_ context.Context, to, message string) error {
	if u.Dev {
		slog.Warn("sms sender not configured, logging instead", "to", to, "message", message)
		return nil
	}
	return fmt.Errorf("sms sender not configured: %w", domain.ErrUpstream)
}
