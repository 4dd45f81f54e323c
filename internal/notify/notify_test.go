package notify

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/logging"
)

func sampleNotice() ResetNotice {
	return ResetNotice{
		Email:     "bob@example.com",
		FirstName: "Bob",
		Token:     "abc123",
		ExpiresAt: time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC),
	}
}

func TestResetLink(t *testing.T) {
	link := ResetLink("http://localhost:3000/", sampleNotice())

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/reset-password", u.Path)
	assert.Equal(t, "abc123", u.Query().Get("token"))
	assert.Equal(t, "bob@example.com", u.Query().Get("email"))
}

func TestResetMail(t *testing.T) {
	subject, body := ResetMail("https://app.example.com", sampleNotice())
	assert.Equal(t, "Reset your password", subject)
	assert.Contains(t, body, "Hi Bob")
	assert.Contains(t, body, "1 hour")
	assert.Contains(t, body, ResetLink("https://app.example.com", sampleNotice()))
}

func TestDecodeNotice(t *testing.T) {
	data, err := encodeNotice(sampleNotice())
	require.NoError(t, err)

	got, err := DecodeNotice(data)
	require.NoError(t, err)
	assert.Equal(t, sampleNotice(), got)

	_, err = DecodeNotice([]byte("{"))
	assert.Error(t, err)

	_, err = DecodeNotice([]byte(`{"email":"bob@example.com"}`))
	assert.Error(t, err)
}

func TestSMTPNotifier_BuildMessage(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{From: "noreply@example.com", FrontendURL: "http://localhost:3000"}, logging.Discard())

	msg, err := n.buildMessage(sampleNotice())
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "bob@example.com")
	assert.Contains(t, raw, "noreply@example.com")
	assert.Contains(t, raw, "Reset your password")
}

func TestSMTPNotifier_RejectsBadAddress(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{From: "noreply@example.com"}, logging.Discard())
	notice := sampleNotice()
	notice.Email = "not an address"

	_, err := n.buildMessage(notice)
	assert.Error(t, err)
}

type recordingAcknowledger struct {
	acked   int
	nacked  int
	requeue bool
}

func (r *recordingAcknowledger) Ack(tag uint64, multiple bool) error {
	r.acked++
	return nil
}

func (r *recordingAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	r.nacked++
	r.requeue = r.requeue || requeue
	return nil
}

func (r *recordingAcknowledger) Reject(tag uint64, requeue bool) error {
	r.nacked++
	return nil
}

func TestAMQPClient_HandleDelivery(t *testing.T) {
	client := &AMQPClient{logger: logging.Discard()}
	valid, err := encodeNotice(sampleNotice())
	require.NoError(t, err)

	tests := []struct {
		name       string
		body       []byte
		handlerErr error
		wantAck    int
		wantNack   int
	}{
		{name: "delivered", body: valid, wantAck: 1},
		{name: "malformed payload", body: []byte("nope"), wantNack: 1},
		{name: "handler failure", body: valid, handlerErr: errors.New("smtp down"), wantNack: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &recordingAcknowledger{}
			var got []ResetNotice
			handler := func(_ context.Context, n ResetNotice) error {
				got = append(got, n)
				return tt.handlerErr
			}

			client.handleDelivery(context.Background(), amqp091.Delivery{Acknowledger: ack, Body: tt.body}, handler)

			assert.Equal(t, tt.wantAck, ack.acked)
			assert.Equal(t, tt.wantNack, ack.nacked)
			assert.False(t, ack.requeue)
			if strings.HasPrefix(string(tt.body), "{") {
				assert.Len(t, got, 1)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}
