// Package auth resolves the bearer token bidmatch sends to the API.
//
// Sources are tried in the order they were added: usually the --token
// flag, then BIDMATCH_TOKEN, then the signed-in session.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoToken is returned by Resolve when no source provides a token.
var ErrNoToken = errors.New("token required")

// Source indicates where a token was found
type Source string

const (
	SourceFlag    Source = "flag"
	SourceEnv     Source = "env"
	SourceSession Source = "session"
	SourceNone    Source = "none"
)

// Result contains the resolved token and its source
type Result struct {
	Token  string
	Source Source
	Name   string // e.g. "BIDMATCH_TOKEN", "session:keyring"
}

// Masked returns the token with all but its last four characters hidden.
func (r *Result) Masked() string {
	if len(r.Token) <= 4 {
		return strings.Repeat("*", len(r.Token))
	}

	return strings.Repeat("*", 8) + r.Token[len(r.Token)-4:]
}

// TokenProvider returns a token and the name of where it came from.
// An empty token means "not here"; errors are reserved for failures such
// as a locked keyring.
type TokenProvider func() (token string, sourceName string, err error)

type source struct {
	kind     Source
	provider TokenProvider
}

// Resolver walks its sources in order and returns the first token.
type Resolver struct {
	sources     []source
	serviceName string
	helpMessage string
}

// NewResolver creates a resolver whose errors are prefixed with serviceName.
func NewResolver(serviceName string) *Resolver {
	return &Resolver{serviceName: serviceName}
}

// WithFlagValue adds a token passed on the command line.
func (r *Resolver) WithFlagValue(value string) *Resolver {
	value = normalize(value)

	return r.add(SourceFlag, func() (string, string, error) {
		return value, "flag", nil
	})
}

// WithEnv adds an environment variable, read at resolution time.
func (r *Resolver) WithEnv(envVar string) *Resolver {
	return r.add(SourceEnv, func() (string, string, error) {
		return normalize(os.Getenv(envVar)), envVar, nil
	})
}

// WithProvider adds the stored session token.
func (r *Resolver) WithProvider(provider TokenProvider) *Resolver {
	return r.add(SourceSession, provider)
}

// WithHelpMessage sets the hint appended when no token is found.
func (r *Resolver) WithHelpMessage(msg string) *Resolver {
	r.helpMessage = msg
	return r
}

func (r *Resolver) add(kind Source, p TokenProvider) *Resolver {
	r.sources = append(r.sources, source{kind: kind, provider: p})
	return r
}

// Resolve returns the first token found, or an error wrapping ErrNoToken.
func (r *Resolver) Resolve() (*Result, error) {
	for _, s := range r.sources {
		token, name, err := s.provider()
		if err != nil {
			return nil, fmt.Errorf("token provider error: %w", err)
		}

		if token = normalize(token); token != "" {
			return &Result{Token: token, Source: s.kind, Name: name}, nil
		}
	}

	if r.helpMessage != "" {
		return nil, fmt.Errorf("%s %w\n\n%s", r.serviceName, ErrNoToken, r.helpMessage)
	}

	return nil, fmt.Errorf("%s %w", r.serviceName, ErrNoToken)
}

// normalize trims whitespace and a pasted "Bearer " prefix.
func normalize(token string) string {
	token = strings.TrimSpace(token)

	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}

	return token
}
