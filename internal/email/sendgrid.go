package email

import (
	"context"
	"fmt"
	netmail "net/mail"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridDispatcher sends through the SendGrid v3 mail API
type SendGridDispatcher struct {
	request rest.Request
	from    *mail.Email
}

// NewSendGridDispatcher parses from ("Name <addr>") and targets host
func NewSendGridDispatcher(apiKey, from, host string) (*SendGridDispatcher, error) {
	addr, err := netmail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", from, err)
	}

	request := sendgrid.GetRequest(apiKey, "/v3/mail/send", host)
	request.Method = rest.Post

	return &SendGridDispatcher{
		request: request,
		from:    mail.NewEmail(addr.Name, addr.Address),
	}, nil
}

// Send implements Dispatcher. Each call works on its own copy of the request
// so concurrent sends never share a body.
func (d *SendGridDispatcher) Send(ctx context.Context, msg Message) (string, error) {
	m := mail.NewV3Mail()
	m.SetFrom(d.from)
	m.Subject = msg.Subject
	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", msg.To))
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/html", msg.HTML))

	request := d.request
	request.Body = mail.GetRequestBody(m)

	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return "", &DispatchError{Provider: "sendgrid", Message: err.Error()}
	}
	if response.StatusCode >= 400 {
		return "", &DispatchError{Provider: "sendgrid", StatusCode: response.StatusCode, Message: response.Body}
	}

	if ids := response.Headers["X-Message-Id"]; len(ids) > 0 {
		return ids[0], nil
	}
	return "", nil
}
