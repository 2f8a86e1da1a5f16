package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/aymanbagabas/go-udiff"
	"github.com/charmbracelet/colorprofile"

	"github.com/cristalexdent/clinicadmin/internal/tui/theme"
)

// profileOf reports the color support of w. Anything that is not a
// terminal gets NoTTY.
func profileOf(w io.Writer) colorprofile.Profile {
	return colorprofile.Detect(w, os.Environ())
}

func isTerminal(w io.Writer) bool {
	return profileOf(w) != colorprofile.NoTTY
}

// syntaxHighlight colors source for the terminal. fileName picks the lexer;
// the source is returned unchanged when w is not a terminal.
func syntaxHighlight(w io.Writer, source, fileName string) string {
	var formatterName string
	switch profileOf(w) {
	case colorprofile.TrueColor:
		formatterName = "terminal16m"
	case colorprofile.ANSI256:
		formatterName = "terminal256"
	case colorprofile.ANSI:
		formatterName = "terminal16"
	default:
		return source
	}

	lexer := lexers.Match(fileName)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	formatter := formatters.Get(formatterName)
	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}
	return buf.String()
}

// unifiedDiff returns the unified diff of two texts, colored when color is
// set. It is empty when the texts are equal.
func unifiedDiff(oldLabel, newLabel, before, after string, color bool) string {
	diff := udiff.Unified(oldLabel, newLabel, before, after)
	if diff == "" || !color {
		return diff
	}
	s := theme.Current().S()
	lines := strings.SplitAfter(diff, "\n")
	var b strings.Builder
	for _, line := range lines {
		text := strings.TrimSuffix(line, "\n")
		nl := line[len(text):]
		switch {
		case strings.HasPrefix(text, "+++"), strings.HasPrefix(text, "---"):
			b.WriteString(s.Title.Render(text))
		case strings.HasPrefix(text, "@@"):
			b.WriteString(s.DiffHunk.Render(text))
		case strings.HasPrefix(text, "+"):
			b.WriteString(s.DiffInsert.Render(text))
		case strings.HasPrefix(text, "-"):
			b.WriteString(s.DiffDelete.Render(text))
		default:
			b.WriteString(text)
		}
		b.WriteString(nl)
	}
	return b.String()
}

func success(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if isTerminal(w) {
		msg = theme.Current().S().Success.Render(msg)
	}
	fmt.Fprintln(w, msg)
}

func muted(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if isTerminal(w) {
		msg = theme.Current().S().Muted.Render(msg)
	}
	fmt.Fprintln(w, msg)
}
