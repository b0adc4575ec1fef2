package ui

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

// DefaultRenderWidth is the word-wrap width used when the terminal width is
// unknown.
const DefaultRenderWidth = 80

// frontMatterDelim opens and closes the YAML header of a rule file.
const frontMatterDelim = "---"

// SplitFrontMatter separates a leading YAML front matter block from the
// markdown body. Content without a well-formed block is returned unchanged
// with a nil map.
func SplitFrontMatter(content []byte) (map[string]any, []byte) {
	text := string(bytes.TrimPrefix(content, []byte("\ufeff")))
	first, rest, ok := strings.Cut(text, "\n")
	if !ok || strings.TrimRight(first, "\r") != frontMatterDelim {
		return nil, content
	}

	var header strings.Builder
	for {
		line, after, more := strings.Cut(rest, "\n")
		if strings.TrimRight(line, "\r") == frontMatterDelim {
			meta := map[string]any{}
			if err := yaml.Unmarshal([]byte(header.String()), &meta); err != nil {
				return nil, content
			}
			return meta, []byte(after)
		}
		if !more {
			return nil, content
		}
		header.WriteString(line)
		header.WriteByte('\n')
		rest = after
	}
}

// RenderRule renders a rule file for the terminal. Front matter is shown as
// a card above the markdown body, which glamour renders.
func RenderRule(name string, content []byte, theme *Theme, width int) (string, error) {
	if width <= 0 {
		width = DefaultRenderWidth
	}

	meta, body := SplitFrontMatter(content)

	opts := []glamour.TermRendererOption{
		glamourStyle(theme),
		glamour.WithWordWrap(width),
	}
	if theme.NoColor {
		opts = append(opts, glamour.WithColorProfile(termenv.Ascii))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(string(body))
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}

	var b strings.Builder
	b.WriteString(theme.Title().Render(name))
	b.WriteByte('\n')
	if len(meta) > 0 {
		b.WriteString(theme.Card().Render(formatMeta(meta, theme)))
		b.WriteByte('\n')
	}
	b.WriteString(out)
	return b.String(), nil
}

func glamourStyle(theme *Theme) glamour.TermRendererOption {
	switch {
	case theme.NoColor:
		return glamour.WithStandardStyle(styles.NoTTYStyle)
	case theme.Mode == "light":
		return glamour.WithStandardStyle(styles.LightStyle)
	case theme.Mode == "dark":
		return glamour.WithStandardStyle(styles.DarkStyle)
	}
	return glamour.WithAutoStyle()
}

func formatMeta(meta map[string]any, theme *Theme) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, theme.Muted().Render(k+":")+" "+fmt.Sprint(meta[k]))
	}
	return strings.Join(lines, "\n")
}
