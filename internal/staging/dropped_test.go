package staging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDropped(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "single quoted", in: "'/tmp/site photo.png' '/tmp/b.pdf' ", want: []string{"/tmp/site photo.png", "/tmp/b.pdf"}},
		{name: "backslash escaped", in: `/tmp/site\ photo.png /tmp/b.pdf`, want: []string{"/tmp/site photo.png", "/tmp/b.pdf"}},
		{name: "double quoted", in: `"/tmp/a b.png"`, want: []string{"/tmp/a b.png"}},
		{name: "file urls", in: "file:///tmp/a%20b.png\nfile:///tmp/c.png\n", want: []string{"/tmp/a b.png", "/tmp/c.png"}},
		{name: "empty quotes skipped", in: "'' /tmp/a", want: []string{"/tmp/a"}},
		{name: "blank", in: "   \n", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDropped(tt.in))
		})
	}
}
