package notify

import (
	"context"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/tirtakarya/waterbill/internal/config"
	"go.uber.org/zap"
)

// TwilioMessenger sends SMS through the Twilio REST API.
type TwilioMessenger struct {
	client *twilio.RestClient
	from   string
	log    *zap.Logger
}

// New picks the Twilio messenger when credentials are configured and
// the noop messenger otherwise.
func New(cfg config.Config, log *zap.Logger) Messenger {
	sms := cfg.SMS
	if sms.TwilioAccountSID == "" || sms.TwilioAuthToken == "" || sms.FromNumber == "" {
		log.Named("notify").Info("sms credentials not configured, notifications disabled")
		return NoopMessenger{}
	}

	return &TwilioMessenger{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: sms.TwilioAccountSID,
			Password: sms.TwilioAuthToken,
		}),
		from: sms.FromNumber,
		log:  log.Named("notify.twilio"),
	}
}

func (m *TwilioMessenger) Send(ctx context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(m.from)
	params.SetBody(body)

	_, err := m.client.Api.CreateMessage(params)
	if err != nil {
		m.log.Warn("sms send failed", zap.String("to", to), zap.Error(err))
		return err
	}

	m.log.Info("sms sent", zap.String("to", to))
	return nil
}
