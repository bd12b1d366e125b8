package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/model"
)

func TestFormatTokenStorage(t *testing.T) {
	tests := []struct {
		name     string
		input    model.TokenStorage
		expected string
	}{
		{
			name:     "keyring storage",
			input:    model.TokenStorageKeyring,
			expected: "system keyring",
		},
		{
			name:     "insecure storage",
			input:    model.TokenStorageInsecure,
			expected: "local database (plain text)",
		},
		{
			name:     "unknown storage",
			input:    model.TokenStorage("custom"),
			expected: "custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatTokenStorage(tt.input)
			if result != tt.expected {
				t.Errorf("formatTokenStorage(%v) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "empty path",
			input:   "",
			wantErr: true,
		},
		{
			name:    "absolute path",
			input:   "/tmp/test",
			wantErr: false,
		},
		{
			name:    "home path",
			input:   "~/test",
			wantErr: false,
		},
		{
			name:    "relative path",
			input:   "test/path",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := expandPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("expandPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}

			if !tt.wantErr && result == "" {
				t.Errorf("expandPath(%q) returned empty string", tt.input)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string", "roof", 10, "roof"},
		{"exact length", "roofing", 7, "roofing"},
		{"truncated", "general contractor", 10, "general..."},
		{"tiny limit", "roofing", 3, "roo"},
		{"multibyte", "façade façade", 8, "façad..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestCenterString(t *testing.T) {
	if got := centerString("ab", 6); got != "  ab  " {
		t.Errorf("centerString = %q", got)
	}

	if got := centerString("toolong", 3); got != "toolong" {
		t.Errorf("centerString = %q", got)
	}
}

func TestPromptConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer

		if got := promptConfirm(strings.NewReader(tt.input), &out, "Delete? [y/N]: "); got != tt.want {
			t.Errorf("promptConfirm(%q) = %v, want %v", tt.input, got, tt.want)
		}

		if out.String() != "Delete? [y/N]: " {
			t.Errorf("prompt written as %q", out.String())
		}
	}
}

func TestPrintInfoBox(t *testing.T) {
	var out bytes.Buffer

	printInfoBox(&out, "Profile", map[string]string{"Name": "Ada", "Email": "ada@example.com"}, []string{"Email", "Name", "Missing"})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), out.String())
	}

	if !strings.Contains(lines[3], "Email: ada@example.com") || !strings.Contains(lines[4], "Name: Ada") {
		t.Errorf("items out of order:\n%s", out.String())
	}
}

func TestCommandError_FieldLists(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		expected string
	}{
		{
			name:     "local validation",
			input:    &api.ValidationError{Fields: map[string]string{"zip": "must be 5 digits", "city": "cannot be blank"}},
			expected: "Please correct the highlighted fields.\n  city: cannot be blank\n  zip: must be 5 digits",
		},
		{
			name: "server field map",
			input: &api.APIError{
				Status:  422,
				Message: "Invalid state.",
				Fields:  map[string]string{"state": "Invalid state."},
			},
			expected: "Invalid state.\n  state: Invalid state.",
		},
		{
			name:     "plain rejection",
			input:    &api.APIError{Status: 401, Message: "Invalid email or password."},
			expected: "Invalid email or password.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := commandError(tt.input).Error()
			if result != tt.expected {
				t.Errorf("commandError() = %q, want %q", result, tt.expected)
			}
		})
	}
}
