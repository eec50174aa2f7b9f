// Package contact handles the portfolio contact form: validation, the form's
// submission state, idempotent storage of messages and forwarding them to an
// external form endpoint.
package contact

import (
	"errors"
	"net/mail"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLen    = 200
	maxMessageLen = 5000
)

var (
	// ErrInvalid is wrapped by ValidationErrors.
	ErrInvalid = errors.New("contact: invalid submission")
	// ErrNotConfigured is returned when no forwarding endpoint is set.
	ErrNotConfigured = errors.New("contact: form endpoint not configured")
	// ErrInFlight is returned when the same form token is still being forwarded.
	ErrInFlight = errors.New("contact: submission already in progress")
)

// Message is the payload forwarded to the form endpoint.
type Message struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Normalize trims surrounding whitespace from every field.
func (m Message) Normalize() Message {
	return Message{
		Name:    strings.TrimSpace(m.Name),
		Email:   strings.TrimSpace(m.Email),
		Message: strings.TrimSpace(m.Message),
	}
}

// ValidationErrors maps a field name to a human readable problem.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "contact: invalid submission: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() error { return ErrInvalid }

// Validate checks a normalized message. It returns nil or ValidationErrors.
func (m Message) Validate() error {
	errs := ValidationErrors{}
	switch {
	case m.Name == "":
		errs["name"] = "Please enter your name."
	case utf8.RuneCountInString(m.Name) > maxNameLen:
		errs["name"] = "Name is too long."
	}
	if m.Email == "" {
		errs["email"] = "Please enter your email."
	} else if addr, err := mail.ParseAddress(m.Email); err != nil || addr.Address != m.Email {
		errs["email"] = "Please enter a valid email address."
	}
	switch {
	case m.Message == "":
		errs["message"] = "Please enter a message."
	case utf8.RuneCountInString(m.Message) > maxMessageLen:
		errs["message"] = "Message is too long."
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
