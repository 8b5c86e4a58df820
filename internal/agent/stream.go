package agent

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// maxRecordSize bounds a single stream record. Assistant records carry whole
// message turns, so the bound is generous.
const maxRecordSize = 4 * 1024 * 1024

// streamRecord is one self-describing line of the agent's output stream.
// Only two kinds are meaningful: "assistant" (incremental text) and "result"
// (the terminal answer). Everything else is ignored.
type streamRecord struct {
	Type    string            `json:"type"`
	Message *assistantMessage `json:"message,omitempty"`
	Result  string            `json:"result,omitempty"`
}

type assistantMessage struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// decodeStream consumes the stream until it closes and assembles a Session.
// Incremental text is normalized to \n line endings and mirrored to sink as
// it arrives (sink may be nil). Malformed lines are skipped; the first result
// record wins and later ones are ignored. A stream that closes without a
// result record yields a Session with HasResult=false, not an error.
func decodeStream(r io.Reader, sink io.Writer) (*Session, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxRecordSize)

	session := &Session{}
	var transcript strings.Builder

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec streamRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}

		switch rec.Type {
		case "assistant":
			if rec.Message == nil {
				continue
			}
			for _, block := range rec.Message.Content {
				if block.Type != "text" || block.Text == "" {
					continue
				}
				text := normalizeNewlines(block.Text)
				if !strings.HasSuffix(text, "\n") {
					text += "\n"
				}
				transcript.WriteString(text)
				if sink != nil {
					io.WriteString(sink, text)
				}
			}
		case "result":
			if !session.HasResult {
				session.Result = normalizeNewlines(rec.Result)
				session.HasResult = true
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read stream: %v", ErrInvocation, err)
	}

	session.Transcript = transcript.String()
	return session, nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
