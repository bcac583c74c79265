package email

import (
	"context"
	"fmt"

	"groupsync/internal/config"

	"golang.org/x/time/rate"
)

// Dispatcher delivers one rendered message and returns the provider's message id
type Dispatcher interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// New builds the dispatcher selected by cfg.Provider, throttled when a rate is set
func New(cfg config.EmailConfig) (Dispatcher, error) {
	var d Dispatcher
	switch cfg.Provider {
	case "resend":
		d = NewResendDispatcher(cfg.ResendAPIKey, cfg.From, cfg.ResendBaseURL)
	case "sendgrid":
		sg, err := NewSendGridDispatcher(cfg.SendGridKey, cfg.From, cfg.SendGridHost)
		if err != nil {
			return nil, err
		}
		d = sg
	case "smtp":
		d = NewSMTPDispatcher(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.From)
	default:
		return nil, fmt.Errorf("unsupported email provider %q", cfg.Provider)
	}

	if cfg.RatePerSecond > 0 {
		d = NewRateLimited(d, rate.Limit(cfg.RatePerSecond), cfg.Burst)
	}
	return d, nil
}

// RateLimited spaces out sends to stay under the provider's request quota
type RateLimited struct {
	next    Dispatcher
	limiter *rate.Limiter
}

// NewRateLimited wraps next with a token bucket of r sends per second
func NewRateLimited(next Dispatcher, r rate.Limit, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(r, burst)}
}

// Send waits for a token, then delegates
func (d *RateLimited) Send(ctx context.Context, msg Message) (string, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return d.next.Send(ctx, msg)
}
