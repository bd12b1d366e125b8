package staging

import (
	"net/url"
	"strings"
)

// ParseDropped splits the text a terminal pastes when files are dropped
// onto it. Terminals differ: some single-quote each path, some escape
// spaces with backslashes, some send file:// URLs one per line.
func ParseDropped(raw string) []string {
	var (
		paths []string
		cur   strings.Builder
		quote rune
		esc   bool
		have  bool
	)

	flush := func() {
		if have && cur.Len() > 0 {
			paths = append(paths, fromURL(cur.String()))
		}

		cur.Reset()
		have = false
	}

	for _, r := range raw {
		switch {
		case esc:
			cur.WriteRune(r)
			esc = false
		case r == '\\' && quote != '\'':
			esc, have = true, true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote, have = r, true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
			have = true
		}
	}

	flush()

	return paths
}

func fromURL(p string) string {
	if !strings.HasPrefix(p, "file://") {
		return p
	}

	u, err := url.Parse(p)
	if err != nil {
		return strings.TrimPrefix(p, "file://")
	}

	return u.Path
}
