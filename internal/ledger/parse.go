package ledger

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// DefaultBlockingTitle is the section heading that marks blocking work when
// no titles are configured, and the section created by InsertNew when the
// document has no blocking section yet.
const DefaultBlockingTitle = "Blockers"

// Parser parses ledger markdown documents. Blocking titles are matched
// against section headings case-insensitively.
type Parser struct {
	markdown goldmark.Markdown
	blocking map[string]bool
}

// NewParser creates a Parser. With no arguments the single blocking title is
// DefaultBlockingTitle.
func NewParser(blockingTitles ...string) *Parser {
	if len(blockingTitles) == 0 {
		blockingTitles = []string{DefaultBlockingTitle}
	}
	blocking := make(map[string]bool, len(blockingTitles))
	for _, t := range blockingTitles {
		blocking[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return &Parser{
		markdown: goldmark.New(goldmark.WithExtensions(extension.TaskList)),
		blocking: blocking,
	}
}

var (
	tagRe    = regexp.MustCompile(`^\[([^\[\]]+)\]\s*(.+)$`)
	sourceRe = regexp.MustCompile(`^(.*\S)\s*\(([^()]*)\)\s*$`)
)

// Parse reads a ledger document. A level-1 heading becomes the ledger title;
// every subsequent heading starts a section. Only top-level list items with a
// checkbox marker count as entries; nested bullets and plain bullets attach
// to the nearest entry as sub-notes. A document containing no checkbox
// markers at all yields a ParseError.
func (p *Parser) Parse(data []byte) (*Ledger, error) {
	doc := p.markdown.Parser().Parse(text.NewReader(data))

	led := &Ledger{}
	cur := -1 // index into led.Sections
	boxes := 0

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			title := extractText(n, data)
			if n.Level == 1 && led.Title == "" && len(led.Sections) == 0 {
				led.Title = title
				continue
			}
			led.Sections = append(led.Sections, Section{
				Title:    title,
				Blocking: p.blocking[strings.ToLower(title)],
			})
			cur = len(led.Sections) - 1
		case *ast.List:
			if cur == -1 {
				// Entries before any heading live in an unnamed section.
				led.Sections = append(led.Sections, Section{})
				cur = len(led.Sections) - 1
			}
			for item := n.FirstChild(); item != nil; item = item.NextSibling() {
				parseItem(item, data, &led.Sections[cur], &boxes)
			}
		}
	}

	if boxes == 0 {
		return nil, &ParseError{Reason: "no checklist status markers found"}
	}
	return led, nil
}

// parseItem handles one top-level list item: a checkbox item becomes an
// entry, anything else becomes a note on the preceding entry.
func parseItem(item ast.Node, source []byte, sec *Section, boxes *int) {
	var checked, hasBox bool
	var line string
	var notes []string
	seenLine := false

	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.TextBlock, *ast.Paragraph:
			ck, box, txt := inlineLine(child, source)
			if !seenLine {
				checked, hasBox, line = ck, box, txt
				seenLine = true
			} else if txt != "" {
				// Continuation paragraph inside the item.
				notes = append(notes, txt)
			}
		case *ast.List:
			for sub := c.FirstChild(); sub != nil; sub = sub.NextSibling() {
				if txt := subItemText(sub, source); txt != "" {
					notes = append(notes, txt)
				}
			}
		}
	}

	if !hasBox {
		// A plain bullet is a sub-note of the entry above it.
		if len(sec.Entries) > 0 {
			last := &sec.Entries[len(sec.Entries)-1]
			if line != "" {
				last.Notes = append(last.Notes, line)
			}
			last.Notes = append(last.Notes, notes...)
		}
		return
	}

	*boxes++
	entry := parseEntryText(line)
	entry.Done = checked
	entry.Notes = notes
	sec.Entries = append(sec.Entries, entry)
}

// subItemText extracts the text of a nested list item, stripping any checkbox
// marker. Nested items are always sub-notes, never entries of their own.
func subItemText(item ast.Node, source []byte) string {
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.(type) {
		case *ast.TextBlock, *ast.Paragraph:
			_, _, txt := inlineLine(child, source)
			return txt
		}
	}
	return ""
}

// inlineLine extracts the text of an inline block, reporting whether it
// starts with a task checkbox and the checkbox state.
func inlineLine(block ast.Node, source []byte) (checked, hasBox bool, line string) {
	var sb strings.Builder
	for c := block.FirstChild(); c != nil; c = c.NextSibling() {
		if box, ok := c.(*east.TaskCheckBox); ok {
			hasBox = true
			checked = box.IsChecked
			continue
		}
		writeText(&sb, c, source)
	}
	return checked, hasBox, strings.TrimSpace(sb.String())
}

// extractText returns the concatenated plain text of a node's inline content.
func extractText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		writeText(&sb, c, source)
	}
	return strings.TrimSpace(sb.String())
}

func writeText(sb *strings.Builder, n ast.Node, source []byte) {
	if t, ok := n.(*ast.Text); ok {
		sb.Write(t.Segment.Value(source))
		if t.SoftLineBreak() || t.HardLineBreak() {
			sb.WriteByte(' ')
		}
		return
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		writeText(sb, c, source)
	}
}

// parseEntryText splits a raw entry line into tag, description and source
// annotation.
func parseEntryText(line string) Entry {
	e := Entry{Description: strings.TrimSpace(line)}
	if m := tagRe.FindStringSubmatch(e.Description); m != nil {
		e.Tag = strings.TrimSpace(m[1])
		e.Category = ParseCategory(e.Tag)
		e.Description = strings.TrimSpace(m[2])
	}
	if m := sourceRe.FindStringSubmatch(e.Description); m != nil {
		e.Description = strings.TrimSpace(m[1])
		e.Source = strings.TrimSpace(m[2])
	}
	return e
}
