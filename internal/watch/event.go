package watch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind identifies an editor notification.
type Kind string

const (
	// KindActiveEditorChanged is sent when the focused document changes.
	KindActiveEditorChanged Kind = "activeEditorChanged"

	// KindRefresh asks for a new cycle for the last active document.
	KindRefresh Kind = "refresh"
)

// Event is one decoded notification.
type Event struct {
	Kind     Kind
	File     string
	Language string
}

// IsPython reports whether the event concerns a Python document. The
// language id wins when present; otherwise the file extension decides.
func (e Event) IsPython() bool {
	if e.Language != "" {
		return strings.EqualFold(e.Language, "python")
	}
	switch strings.ToLower(filepath.Ext(e.File)) {
	case ".py", ".pyi", ".pyw":
		return true
	}
	return false
}

// maxLineSize bounds one event line.
const maxLineSize = 1 << 20

// ParseEvent decodes a single JSON line.
func ParseEvent(line []byte) (Event, error) {
	if !gjson.ValidBytes(line) {
		return Event{}, fmt.Errorf("event is not valid JSON: %q", line)
	}
	doc := gjson.ParseBytes(line)
	if !doc.IsObject() {
		return Event{}, fmt.Errorf("event must be a JSON object: %q", line)
	}

	ev := Event{
		Kind:     Kind(doc.Get("event").String()),
		File:     doc.Get("file").String(),
		Language: doc.Get("language").String(),
	}
	switch ev.Kind {
	case KindActiveEditorChanged, KindRefresh:
		return ev, nil
	case "":
		return Event{}, fmt.Errorf("event has no \"event\" field: %q", line)
	default:
		return Event{}, fmt.Errorf("unknown event %q", ev.Kind)
	}
}

// ReadEvents decodes JSON lines from r and hands each event to handle until
// r is exhausted or ctx is done. Blank lines are skipped; malformed lines
// are passed to onError and do not stop the stream.
func ReadEvents(ctx context.Context, r io.Reader, handle func(Event), onError func(error)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		ev, err := ParseEvent(line)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			continue
		}
		handle(ev)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}
	return nil
}
