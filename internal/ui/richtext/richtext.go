// Package richtext renders the small HTML subset used in chat messages
// (headings, paragraphs, lists, bold and italics) as terminal text.
package richtext

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"golang.org/x/net/html"

	"github.com/abhisek/mathia/internal/ui/theme"
)

var (
	h2Style     = lipgloss.NewStyle().Bold(true).Foreground(theme.Primary)
	h3Style     = lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary)
	h4Style     = lipgloss.NewStyle().Bold(true).Foreground(theme.Text)
	strongStyle = lipgloss.NewStyle().Bold(true)
	emStyle     = lipgloss.NewStyle().Italic(true)
)

// list tracks an open <ul> or <ol>.
type list struct {
	ordered bool
	n       int
}

type renderer struct {
	styled bool
	out    strings.Builder

	bold    int
	italic  int
	heading string
	lists   []list

	// pendingBreaks is the number of newlines owed before the next text.
	pendingBreaks int
	atLineStart   bool

	// bulleted is set between a list bullet and its first text, so a
	// block opening inside the item stays on the bullet line.
	bulleted bool
}

// Render converts an HTML fragment to styled terminal text.
func Render(s string) string {
	return render(s, true)
}

// Plain converts an HTML fragment to unstyled text, for line-oriented
// output.
func Plain(s string) string {
	return render(s, false)
}

func render(s string, styled bool) string {
	r := &renderer{styled: styled, atLineStart: true}
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimRight(r.out.String(), "\n ")
		case html.TextToken:
			r.text(string(z.Text()))
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			r.start(string(name))
		case html.EndTagToken:
			name, _ := z.TagName()
			r.end(string(name))
		}
	}
}

func (r *renderer) block(breaks int) {
	if r.out.Len() == 0 || r.bulleted {
		return
	}
	if breaks > r.pendingBreaks {
		r.pendingBreaks = breaks
	}
}

func (r *renderer) start(tag string) {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		r.block(2)
		r.heading = tag
	case "p", "div", "details", "summary":
		r.block(2)
	case "br":
		r.out.WriteString("\n")
		r.pendingBreaks = 0
		r.atLineStart = true
	case "ul":
		r.block(1)
		r.lists = append(r.lists, list{})
	case "ol":
		r.block(1)
		r.lists = append(r.lists, list{ordered: true})
	case "li":
		r.bulleted = false
		r.block(1)
		r.flush()
		indent := strings.Repeat("  ", max(len(r.lists)-1, 0))
		bullet := "• "
		if n := len(r.lists); n > 0 && r.lists[n-1].ordered {
			r.lists[n-1].n++
			bullet = fmt.Sprintf("%d. ", r.lists[n-1].n)
		}
		r.out.WriteString(indent + bullet)
		r.atLineStart = true
		r.bulleted = true
	case "strong", "b":
		r.bold++
	case "em", "i":
		r.italic++
	}
}

func (r *renderer) end(tag string) {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		r.heading = ""
		r.block(1)
	case "p", "div", "details", "summary":
		r.block(1)
	case "ul", "ol":
		if len(r.lists) > 0 {
			r.lists = r.lists[:len(r.lists)-1]
		}
		r.block(1)
	case "strong", "b":
		if r.bold > 0 {
			r.bold--
		}
	case "em", "i":
		if r.italic > 0 {
			r.italic--
		}
	}
}

// flush writes the newlines owed by closed blocks.
func (r *renderer) flush() {
	if r.pendingBreaks > 0 {
		r.out.WriteString(strings.Repeat("\n", r.pendingBreaks))
		r.pendingBreaks = 0
		r.atLineStart = true
	}
}

func (r *renderer) text(s string) {
	s = collapseSpace(s)
	if r.atLineStart || r.pendingBreaks > 0 {
		s = strings.TrimLeft(s, " ")
	}
	if s == "" {
		return
	}
	r.flush()
	r.out.WriteString(r.style(s))
	r.atLineStart = false
	r.bulleted = false
}

func (r *renderer) style(s string) string {
	if !r.styled {
		return s
	}
	switch r.heading {
	case "h1", "h2":
		return h2Style.Render(s)
	case "h3":
		return h3Style.Render(s)
	case "h4", "h5", "h6":
		return h4Style.Render(s)
	}
	var st lipgloss.Style
	switch {
	case r.bold > 0 && r.italic > 0:
		st = strongStyle.Italic(true)
	case r.bold > 0:
		st = strongStyle
	case r.italic > 0:
		st = emStyle
	default:
		return s
	}
	return st.Render(s)
}

// collapseSpace folds runs of whitespace into single spaces, as a browser
// does.
func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, c := range s {
		if c == ' ' || c == '\n' || c == '\t' || c == '\r' {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(c)
	}
	return b.String()
}
