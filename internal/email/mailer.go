package email

import "context"

// Mailer renders a notification and hands it to a Dispatcher
type Mailer struct {
	renderer   *Renderer
	dispatcher Dispatcher
}

func NewMailer(renderer *Renderer, dispatcher Dispatcher) *Mailer {
	if renderer == nil {
		renderer = defaultRenderer
	}
	return &Mailer{renderer: renderer, dispatcher: dispatcher}
}

// Send renders t with d and dispatches the result. Render errors are returned
// before any provider call is made.
func (m *Mailer) Send(ctx context.Context, t Type, d Data) (string, error) {
	msg, err := m.renderer.Render(t, d)
	if err != nil {
		return "", err
	}
	return m.dispatcher.Send(ctx, msg)
}
