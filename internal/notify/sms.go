package notify

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/zeromicro/go-zero/core/logx"
)

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

type SMSConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string
}

// SMS texts sign-up results to the member through Twilio.
type SMS struct {
	api  messageCreator
	from string
	to   string
}

func NewSMS(cfg SMSConfig) (*SMS, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("twilio account sid and auth token are required")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return newSMS(client.Api, cfg.From, cfg.To)
}

func newSMS(api messageCreator, from, to string) (*SMS, error) {
	if api == nil {
		return nil, fmt.Errorf("message api cannot be nil")
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("sms from and to numbers are required")
	}
	return &SMS{api: api, from: from, to: to}, nil
}

func (s *SMS) Notify(ctx context.Context, e Event) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(s.to)
	params.SetFrom(s.from)
	params.SetBody(e.Message())

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("unable to send sms: %w", err)
	}
	if resp.Sid != nil {
		logx.WithContext(ctx).Infof("sent sms %s for class %s", *resp.Sid, e.ClassID)
	}

	return nil
}
