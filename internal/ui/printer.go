package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"rgsearch/internal/domain"
)

// Printer renders match records as highlighted text
type Printer struct {
	styles *Styles
	color  bool
}

// NewPrinter creates a printer; with color off the output is plain text
func NewPrinter(color bool) *Printer {
	return &Printer{styles: NewStyles(), color: color}
}

func (p *Printer) paint(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

// Render renders every record, separated by blank lines
func (p *Printer) Render(records []domain.MatchRecord) string {
	var b strings.Builder
	for i, r := range records {
		if i > 0 && len(r.Details) > 0 {
			b.WriteString("\n")
		}
		p.renderRecord(&b, r)
	}
	return b.String()
}

func (p *Printer) renderRecord(b *strings.Builder, r domain.MatchRecord) {
	b.WriteString(p.paint(p.styles.Path, r.File.Path))
	b.WriteString("\n")

	for _, group := range groupByLine(r.Details) {
		first := group[0]
		prefix := fmt.Sprintf("%d:%d:", first.Line, first.CharColumn())
		b.WriteString(p.paint(p.styles.LineNumber, prefix))
		b.WriteString(" ")
		b.WriteString(p.highlight(first.LineText, group))
		b.WriteString("\n")
	}
}

// highlight marks every location of one line
func (p *Printer) highlight(lineText string, details []domain.LocationDetail) string {
	line := strings.TrimRight(lineText, "\r\n")
	var b strings.Builder
	for _, seg := range segments(line, details) {
		if seg.match {
			b.WriteString(p.paint(p.styles.Match, seg.text))
		} else {
			b.WriteString(seg.text)
		}
	}
	return b.String()
}

// Summary renders the closing status line of a search
func (p *Printer) Summary(state string, files, matches, problems int) string {
	style := p.styles.Success
	switch {
	case state != "Completed":
		style = p.styles.Error
	case problems > 0:
		style = p.styles.Warning
	}
	text := fmt.Sprintf("%s: %d matches in %d files", state, matches, files)
	if problems > 0 {
		text += fmt.Sprintf(", %d problems (see log)", problems)
	}
	return p.paint(style, text)
}

type segment struct {
	text  string
	match bool
}

// segments splits line at the byte spans of details. Overlapping spans are
// merged and spans past the end of line are clipped.
func segments(line string, details []domain.LocationDetail) []segment {
	type span struct{ start, end int }
	spans := make([]span, 0, len(details))
	for _, d := range details {
		start := d.Column - 1
		end := start + d.MarkLength
		if start < 0 || start >= len(line) || end <= start {
			continue
		}
		if end > len(line) {
			end = len(line)
		}
		spans = append(spans, span{start, end})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var out []segment
	pos := 0
	for _, s := range spans {
		if s.end <= pos {
			continue
		}
		if s.start < pos {
			s.start = pos
		}
		if s.start > pos {
			out = append(out, segment{text: line[pos:s.start]})
		}
		out = append(out, segment{text: line[s.start:s.end], match: true})
		pos = s.end
	}
	if pos < len(line) {
		out = append(out, segment{text: line[pos:]})
	}
	return out
}

// groupByLine groups consecutive details reported for the same line
func groupByLine(details []domain.LocationDetail) [][]domain.LocationDetail {
	var groups [][]domain.LocationDetail
	for i, d := range details {
		if i > 0 && d.Line == details[i-1].Line {
			groups[len(groups)-1] = append(groups[len(groups)-1], d)
			continue
		}
		groups = append(groups, []domain.LocationDetail{d})
	}
	return groups
}
