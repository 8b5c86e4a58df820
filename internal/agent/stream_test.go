package agent

import (
	"context"
	"strings"
	"testing"
)

func TestDecodeStreamTextAndResult(t *testing.T) {
	input := `{"type":"system","subtype":"init"}
{"type":"assistant","message":{"content":[{"type":"text","text":"looking at the failing test"}]}}
{"type":"assistant","message":{"content":[{"type":"text","text":"patched note.rs\r\ncommitting"}]}}
{"type":"result","result":"done: tuplet ratios mapped"}
`
	var sink strings.Builder
	session, err := decodeStream(strings.NewReader(input), &sink)
	if err != nil {
		t.Fatalf("decodeStream failed: %v", err)
	}

	if !session.HasResult {
		t.Fatal("expected a terminal result")
	}
	if session.Result != "done: tuplet ratios mapped" {
		t.Errorf("unexpected result %q", session.Result)
	}

	want := "looking at the failing test\npatched note.rs\ncommitting\n"
	if session.Transcript != want {
		t.Errorf("unexpected transcript %q, want %q", session.Transcript, want)
	}
	if sink.String() != want {
		t.Errorf("sink should mirror the transcript, got %q", sink.String())
	}
}

func TestDecodeStreamNoResult(t *testing.T) {
	// Stream closes with zero terminal records: no result, but not an error.
	input := `{"type":"assistant","message":{"content":[{"type":"text","text":"partial work"}]}}
`
	session, err := decodeStream(strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("decodeStream failed: %v", err)
	}
	if session.HasResult {
		t.Error("expected no terminal result")
	}
	if session.Transcript != "partial work\n" {
		t.Errorf("unexpected transcript %q", session.Transcript)
	}
}

func TestDecodeStreamIgnoresUnknownAndMalformed(t *testing.T) {
	input := `{"type":"usage","tokens":123}
not json at all
{"type":"tool_use","name":"Bash"}
{"type":"result","result":"ok"}
`
	session, err := decodeStream(strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("decodeStream failed: %v", err)
	}
	if !session.HasResult || session.Result != "ok" {
		t.Errorf("expected result 'ok', got %+v", session)
	}
	if session.Transcript != "" {
		t.Errorf("unknown kinds must not contribute text, got %q", session.Transcript)
	}
}

func TestDecodeStreamFirstResultWins(t *testing.T) {
	input := `{"type":"result","result":"first"}
{"type":"result","result":"second"}
`
	session, err := decodeStream(strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("decodeStream failed: %v", err)
	}
	if session.Result != "first" {
		t.Errorf("expected the first result record to win, got %q", session.Result)
	}
}

func TestDecodeStreamEmpty(t *testing.T) {
	session, err := decodeStream(strings.NewReader(""), nil)
	if err != nil {
		t.Fatalf("decodeStream failed: %v", err)
	}
	if session.HasResult || session.Transcript != "" {
		t.Errorf("empty stream should yield an empty session, got %+v", session)
	}
}

func TestScriptedAgentPlaysSteps(t *testing.T) {
	called := false
	a := &ScriptedAgent{Steps: []ScriptedStep{
		{Result: "one"},
		{NoResult: true},
		{Result: "two", Do: func() { called = true }},
	}}

	s, err := a.Invoke(context.Background(), "p1")
	if err != nil || !s.HasResult || s.Result != "one" {
		t.Errorf("step 1: got %+v, %v", s, err)
	}
	s, _ = a.Invoke(context.Background(), "p2")
	if s.HasResult {
		t.Error("step 2 should have no result")
	}
	s, _ = a.Invoke(context.Background(), "p3")
	if !called || s.Result != "two" {
		t.Errorf("step 3 side effect not applied: %+v", s)
	}

	// Past the end of the script behaves like a no-result session.
	s, err = a.Invoke(context.Background(), "p4")
	if err != nil || s.HasResult {
		t.Errorf("past-end: got %+v, %v", s, err)
	}
	if a.Calls() != 4 {
		t.Errorf("expected 4 calls, got %d", a.Calls())
	}
}
