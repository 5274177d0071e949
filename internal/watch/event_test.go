package watch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Event
		wantErr string
	}{
		{
			name: "active editor",
			line: `{"event":"activeEditorChanged","file":"/ws/app/main.py","language":"python"}`,
			want: Event{Kind: KindActiveEditorChanged, File: "/ws/app/main.py", Language: "python"},
		},
		{
			name: "refresh",
			line: `{"event":"refresh"}`,
			want: Event{Kind: KindRefresh},
		},
		{name: "not json", line: `event=refresh`, wantErr: "not valid JSON"},
		{name: "not an object", line: `["refresh"]`, wantErr: "must be a JSON object"},
		{name: "missing kind", line: `{"file":"/x.py"}`, wantErr: "no \"event\" field"},
		{name: "unknown kind", line: `{"event":"closed"}`, wantErr: "unknown event"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEvent([]byte(tt.line))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvent_IsPython(t *testing.T) {
	tests := []struct {
		ev   Event
		want bool
	}{
		{Event{File: "/a.txt", Language: "python"}, true},
		{Event{File: "/a.py", Language: "Python"}, true},
		{Event{File: "/a.py", Language: "markdown"}, false},
		{Event{File: "/a.py"}, true},
		{Event{File: "/a.pyi"}, true},
		{Event{File: "/a.go"}, false},
		{Event{}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.ev.IsPython(), "%+v", tt.ev)
	}
}

func TestReadEvents(t *testing.T) {
	input := strings.Join([]string{
		`{"event":"activeEditorChanged","file":"/ws/a.py","language":"python"}`,
		``,
		`garbage`,
		`{"event":"refresh"}`,
	}, "\n")

	var events []Event
	var errs []error
	err := ReadEvents(context.Background(), strings.NewReader(input),
		func(ev Event) { events = append(events, ev) },
		func(err error) { errs = append(errs, err) })
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, KindActiveEditorChanged, events[0].Kind)
	assert.Equal(t, KindRefresh, events[1].Kind)
	assert.Len(t, errs, 1)
}

func TestReadEvents_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ReadEvents(ctx, strings.NewReader(`{"event":"refresh"}`+"\n"), func(Event) {
		t.Error("no event should be handled after cancellation")
	}, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}
