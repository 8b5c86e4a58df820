package ledger

import (
	"fmt"
	"strings"
)

// Render regenerates the markdown document from the model. Document order is
// preserved; the only differences from the parsed source are normalized
// checkbox markers and bullet indentation.
func Render(l *Ledger) string {
	var sb strings.Builder

	if l.Title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", l.Title)
	}

	for _, sec := range l.Sections {
		if sec.Title != "" {
			fmt.Fprintf(&sb, "## %s\n\n", sec.Title)
		}
		for _, e := range sec.Entries {
			marker := "- [ ] "
			if e.Done {
				marker = "- [x] "
			}
			sb.WriteString(marker)
			if e.Tag != "" {
				fmt.Fprintf(&sb, "[%s] ", e.Tag)
			}
			sb.WriteString(e.Description)
			if e.Source != "" {
				fmt.Fprintf(&sb, " (%s)", e.Source)
			}
			sb.WriteByte('\n')
			for _, note := range e.Notes {
				fmt.Fprintf(&sb, "  - %s\n", note)
			}
		}
		if len(sec.Entries) > 0 {
			sb.WriteByte('\n')
		}
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}
