package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailerSkipsDispatchOnRenderError(t *testing.T) {
	next := &countingDispatcher{}
	m := NewMailer(nil, next)

	_, err := m.Send(context.Background(), Type("bogus"), Data{To: "x@example.com"})
	require.ErrorIs(t, err, ErrUnknownType)

	_, err = m.Send(context.Background(), TypeWelcome, Data{})
	require.ErrorIs(t, err, ErrMissingRecipient)

	assert.Zero(t, next.calls)

	id, err := m.Send(context.Background(), TypeWelcome, Data{To: "x@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ok", id)
	assert.Equal(t, 1, next.calls)
}
