// Package emailtest provides an in-memory Dispatcher for tests.
package emailtest

import (
	"context"
	"fmt"
	"sync"

	"groupsync/internal/email"
)

// Recorder captures every message it is asked to send
type Recorder struct {
	mu       sync.Mutex
	messages []email.Message

	// Fail, when set, decides per message whether the send fails
	Fail func(msg email.Message) error
}

// Send implements email.Dispatcher
func (r *Recorder) Send(ctx context.Context, msg email.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Fail != nil {
		if err := r.Fail(msg); err != nil {
			return "", err
		}
	}
	r.messages = append(r.messages, msg)
	return fmt.Sprintf("msg-%d", len(r.messages)), nil
}

// Messages returns a copy of the successfully sent messages
func (r *Recorder) Messages() []email.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]email.Message(nil), r.messages...)
}

// To returns the recipients in send order
func (r *Recorder) To() []string {
	var out []string
	for _, m := range r.Messages() {
		out = append(out, m.To)
	}
	return out
}

// Reset forgets everything recorded so far
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
