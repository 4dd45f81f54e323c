package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ResetNotice is everything needed to deliver a password reset link.
type ResetNotice struct {
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Notifier delivers password reset notices.
type Notifier interface {
	SendPasswordReset(ctx context.Context, notice ResetNotice) error
}

// ResetLink builds the frontend URL the user follows to pick a new password.
func ResetLink(frontendURL string, notice ResetNotice) string {
	q := url.Values{}
	q.Set("token", notice.Token)
	q.Set("email", notice.Email)
	return strings.TrimRight(frontendURL, "/") + "/reset-password?" + q.Encode()
}

// ResetMail renders the subject and plain-text body of a reset email.
func ResetMail(frontendURL string, notice ResetNotice) (subject, body string) {
	name := notice.FirstName
	if name == "" {
		name = "there"
	}
	subject = "Reset your password"
	body = fmt.Sprintf("Hi %s,\n\n"+
		"We received a request to reset your password. Open the link below to choose a new one:\n\n"+
		"%s\n\n"+
		"The link expires in 1 hour. If you did not ask for this, you can ignore this email.\n",
		name, ResetLink(frontendURL, notice))
	return subject, body
}

func encodeNotice(notice ResetNotice) ([]byte, error) {
	return json.Marshal(notice)
}

// DecodeNotice parses a queued notice and rejects incomplete payloads.
func DecodeNotice(data []byte) (ResetNotice, error) {
	var notice ResetNotice
	if err := json.Unmarshal(data, &notice); err != nil {
		return ResetNotice{}, fmt.Errorf("unmarshal reset notice: %w", err)
	}
	if notice.Email == "" || notice.Token == "" {
		return ResetNotice{}, fmt.Errorf("reset notice missing email or token")
	}
	return notice, nil
}
