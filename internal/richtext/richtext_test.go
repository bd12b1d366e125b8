package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	got := Sanitize(`<p onclick="steal()">Repaint <strong>office</strong></p><script>alert(1)</script>`)

	assert.Equal(t, `<p>Repaint <strong>office</strong></p>`, got)
}

func TestToMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "paragraph", in: "<p>Repaint office</p>", want: "Repaint office"},
		{name: "bold", in: "<p>Use <strong>low VOC</strong> paint</p>", want: "Use **low VOC** paint"},
		{name: "list", in: "<ul><li>walls</li><li>trim</li></ul>", want: "- walls\n- trim"},
		{name: "script dropped", in: "<p>ok</p><script>x()</script>", want: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMarkdown(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank("<p> </p>"))
	assert.True(t, IsBlank("<p>&nbsp;</p><br>"))
	assert.False(t, IsBlank("<p>x</p>"))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Tom & Jerry", PlainText("<p>Tom &amp; Jerry</p>"))
}

func TestFromPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "single", in: "Repaint office", want: "<p>Repaint office</p>"},
		{name: "paragraphs", in: "First\n\nSecond", want: "<p>First</p><p>Second</p>"},
		{name: "line break", in: "a\nb", want: "<p>a<br>b</p>"},
		{name: "escaped", in: "<b>&", want: "<p>&lt;b&gt;&amp;</p>"},
		{name: "blank", in: "  \n\n ", want: ""},
		{name: "crlf", in: "a\r\n\r\nb", want: "<p>a</p><p>b</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromPlainText(tt.in))
		})
	}
}
