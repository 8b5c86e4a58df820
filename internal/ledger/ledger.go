// Package ledger models the markdown task checklist that drives the cadence
// loop. The ledger is the single source of truth for "what is next": an
// ordered list of sections, each an ordered list of checkbox entries. Entries
// are identified purely by document position; they are never reordered or
// deleted, only flipped pending->done or appended.
package ledger

import (
	"fmt"
	"os"

	"github.com/harrison/cadence/internal/filelock"
)

// Entry is a single checklist line: status, optional category tag, free-form
// description, optional source annotation and any sub-notes that follow it.
type Entry struct {
	Done        bool
	Tag         string   // raw bracketed tag text, empty if absent
	Category    Category // derived from Tag
	Description string
	Source      string   // trailing parenthetical annotation, empty if absent
	Notes       []string
}

// Section is a named grouping of entries. Blocking sections must be fully
// drained before any non-blocking section's entries become eligible.
type Section struct {
	Title    string
	Blocking bool
	Entries  []Entry
}

// Ledger is the parsed checklist document.
type Ledger struct {
	Title    string
	Sections []Section
}

// Position addresses an entry by its location in the document.
type Position struct {
	Section int
	Entry   int
}

// ParseError indicates a document that cannot serve as a ledger. It is fatal
// to a run: a ledger with no recognizable status markers means the driver is
// pointed at the wrong file.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ledger parse: %s", e.Reason)
}

// FindFirstPending returns the position of the first pending entry, scanning
// blocking sections in document order before non-blocking sections in
// document order. The second return value is false when every entry is done.
func (l *Ledger) FindFirstPending() (Position, bool) {
	for _, blocking := range []bool{true, false} {
		for si := range l.Sections {
			if l.Sections[si].Blocking != blocking {
				continue
			}
			for ei := range l.Sections[si].Entries {
				if !l.Sections[si].Entries[ei].Done {
					return Position{Section: si, Entry: ei}, true
				}
			}
		}
	}
	return Position{}, false
}

// EntryAt returns the entry at pos, or nil if pos is out of range.
func (l *Ledger) EntryAt(pos Position) *Entry {
	if pos.Section < 0 || pos.Section >= len(l.Sections) {
		return nil
	}
	sec := &l.Sections[pos.Section]
	if pos.Entry < 0 || pos.Entry >= len(sec.Entries) {
		return nil
	}
	return &sec.Entries[pos.Entry]
}

// SectionTitle returns the title of the section containing pos.
func (l *Ledger) SectionTitle(pos Position) string {
	if pos.Section < 0 || pos.Section >= len(l.Sections) {
		return ""
	}
	return l.Sections[pos.Section].Title
}

// MarkDone flips the entry at pos to done. Marking an already-done entry is a
// no-op, so the operation is idempotent. Out-of-range positions are ignored.
func (l *Ledger) MarkDone(pos Position) {
	if e := l.EntryAt(pos); e != nil {
		e.Done = true
	}
}

// InsertNew appends entries to the first blocking section, creating a
// "Blockers" section at the front of the document if none exists. Entries
// whose description duplicates an existing entry in the target section are
// skipped. Returns the number of entries actually added.
func (l *Ledger) InsertNew(entries []Entry) int {
	target := -1
	for si := range l.Sections {
		if l.Sections[si].Blocking {
			target = si
			break
		}
	}
	if target == -1 {
		l.Sections = append([]Section{{Title: DefaultBlockingTitle, Blocking: true}}, l.Sections...)
		target = 0
	}

	sec := &l.Sections[target]
	existing := make(map[string]bool, len(sec.Entries))
	for _, e := range sec.Entries {
		existing[e.Description] = true
	}

	added := 0
	for _, e := range entries {
		if existing[e.Description] {
			continue
		}
		if e.Category == CategoryOther && e.Tag != "" {
			e.Category = ParseCategory(e.Tag)
		}
		sec.Entries = append(sec.Entries, e)
		existing[e.Description] = true
		added++
	}
	return added
}

// Counts returns the number of completed and remaining entries across all
// sections.
func (l *Ledger) Counts() (completed, remaining int) {
	for _, sec := range l.Sections {
		for _, e := range sec.Entries {
			if e.Done {
				completed++
			} else {
				remaining++
			}
		}
	}
	return completed, remaining
}

// Load reads and parses the ledger document at path.
func Load(path string, p *Parser) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}
	led, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", path, err)
	}
	return led, nil
}

// Save renders the ledger and writes it to path atomically, so a reader (or
// the agent) never observes a partially written document.
func Save(l *Ledger, path string) error {
	if err := filelock.AtomicWrite(path, []byte(Render(l))); err != nil {
		return fmt.Errorf("write ledger %s: %w", path, err)
	}
	return nil
}
