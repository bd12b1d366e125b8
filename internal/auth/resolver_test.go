package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Priority(t *testing.T) {
	stored := func() (string, string, error) {
		return "stored-token", "session:keyring", nil
	}

	tests := []struct {
		name       string
		flag       string
		env        string
		wantToken  string
		wantSource Source
	}{
		{name: "flag wins", flag: "flag-token", env: "env-token", wantToken: "flag-token", wantSource: SourceFlag},
		{name: "env over session", env: "env-token", wantToken: "env-token", wantSource: SourceEnv},
		{name: "session fallback", wantToken: "stored-token", wantSource: SourceSession},
		{name: "blank flag ignored", flag: "   ", wantToken: "stored-token", wantSource: SourceSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BIDMATCH_TOKEN", tt.env)

			res, err := NewResolver("bidmatch").
				WithFlagValue(tt.flag).
				WithEnv("BIDMATCH_TOKEN").
				WithProvider(stored).
				Resolve()
			require.NoError(t, err)

			assert.Equal(t, tt.wantToken, res.Token)
			assert.Equal(t, tt.wantSource, res.Source)
		})
	}
}

func TestResolver_NoToken(t *testing.T) {
	t.Setenv("BIDMATCH_TOKEN", "")

	_, err := NewResolver("bidmatch").
		WithEnv("BIDMATCH_TOKEN").
		WithHelpMessage("Run 'bidmatch login' first.").
		Resolve()

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoToken))
	assert.Contains(t, err.Error(), "bidmatch login")
}

func TestResolver_ProviderError(t *testing.T) {
	boom := errors.New("keyring locked")

	_, err := NewResolver("bidmatch").
		WithProvider(func() (string, string, error) { return "", "", boom }).
		Resolve()

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, ErrNoToken))
}

func TestResolver_StripsBearerPrefix(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "abc123", want: "abc123"},
		{name: "bearer prefix", input: "Bearer abc123", want: "abc123"},
		{name: "lowercase prefix", input: "  bearer   abc123 ", want: "abc123"},
		{name: "token named bearer", input: "bearer", want: "bearer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewResolver("bidmatch").WithFlagValue(tt.input).Resolve()
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Token)
		})
	}
}

func TestResult_Masked(t *testing.T) {
	assert.Equal(t, "********7890", (&Result{Token: "abcdef1234567890"}).Masked())
	assert.Equal(t, "***", (&Result{Token: "abc"}).Masked())
}
