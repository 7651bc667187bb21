package share

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Opts holds configuration options for the Twilio client.
type Opts struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// Option defines a configuration option for the Twilio client.
type Option func(*Opts)

// WithAccountSID sets the Twilio account SID.
func WithAccountSID(sid string) Option {
	return func(o *Opts) { o.AccountSID = sid }
}

// WithAuthToken sets the Twilio auth token.
func WithAuthToken(token string) Option {
	return func(o *Opts) { o.AuthToken = token }
}

// WithFromNumber sets the sending number in E.164 form. It is used for both
// SMS and WhatsApp.
func WithFromNumber(from string) Option {
	return func(o *Opts) { o.FromNumber = from }
}

// TwilioClient sends messages with the Twilio REST API.
type TwilioClient struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioClient creates a client from options, falling back to the
// TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM_NUMBER variables.
func NewTwilioClient(opts ...Option) (*TwilioClient, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.FromNumber == "" {
		cfg.FromNumber = os.Getenv("TWILIO_FROM_NUMBER")
	}
	slog.Debug("Twilio client config loaded",
		"AccountSID_set", cfg.AccountSID != "",
		"AuthToken_set", cfg.AuthToken != "",
		"FromNumber_set", cfg.FromNumber != "")

	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if err := ValidateRecipient(cfg.FromNumber); err != nil {
		return nil, fmt.Errorf("from number: %w", err)
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioClient{client: client, from: cfg.FromNumber}, nil
}

// address formats a number for the channel.
func address(ch Channel, number string) string {
	if ch == ChannelWhatsApp {
		return "whatsapp:" + number
	}
	return number
}

// SendMessage sends one message over ch.
func (c *TwilioClient) SendMessage(ctx context.Context, ch Channel, to string, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(address(ch, to))
	params.SetFrom(address(ch, c.from))
	params.SetBody(body)

	resp, err := c.client.Api.CreateMessage(params)
	if err != nil {
		slog.Error("Twilio SendMessage failed", "channel", ch, "to", to, "error", err)
		return fmt.Errorf("failed to send message to %s: %w", to, err)
	}
	if resp != nil && resp.Sid != nil {
		slog.Debug("Twilio message sent", "channel", ch, "to", to, "sid", *resp.Sid)
	}
	return nil
}

// SentMessage is one message captured by MockClient.
type SentMessage struct {
	Channel Channel
	To      string
	Body    string
}

// MockClient records messages instead of sending them.
type MockClient struct {
	mu           sync.Mutex
	SentMessages []SentMessage
	// Err, when set, is returned by SendMessage after FailAfter successful sends.
	Err       error
	FailAfter int
}

// NewMockClient creates an empty MockClient.
func NewMockClient() *MockClient {
	return &MockClient{SentMessages: []SentMessage{}}
}

func (m *MockClient) SendMessage(ctx context.Context, ch Channel, to string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil && len(m.SentMessages) >= m.FailAfter {
		return m.Err
	}
	m.SentMessages = append(m.SentMessages, SentMessage{Channel: ch, To: to, Body: body})
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *MockClient) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.SentMessages...)
}
