package email

import (
	"context"
	"fmt"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// SMTPDispatcher sends through a plain SMTP relay
type SMTPDispatcher struct {
	dialer *gomail.Dialer
	from   string
	domain string
}

func NewSMTPDispatcher(host string, port int, user, password, from string) *SMTPDispatcher {
	return &SMTPDispatcher{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
		domain: senderDomain(from, host),
	}
}

// Send implements Dispatcher. The generated Message-ID doubles as the returned id.
func (d *SMTPDispatcher) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	messageID := generateMessageID(d.domain)

	m := gomail.NewMessage()
	m.SetHeader("Message-ID", messageID)
	m.SetHeader("Date", time.Now().Format(time.RFC1123Z))
	m.SetHeader("From", d.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := d.dialer.DialAndSend(m); err != nil {
		return "", &DispatchError{Provider: "smtp", Message: err.Error()}
	}
	return messageID, nil
}

func generateMessageID(domain string) string {
	return fmt.Sprintf("<%s@%s>", uuid.New().String(), domain)
}

func senderDomain(from, fallback string) string {
	if addr, err := netmail.ParseAddress(from); err == nil {
		if at := strings.LastIndexByte(addr.Address, '@'); at >= 0 {
			return addr.Address[at+1:]
		}
	}
	return fallback
}
