package cycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReport_Outcome(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		ns      []NamespaceReport
		want    Outcome
		summary string
	}{
		{"none", nil, OutcomeSkipped, "analysis settings: nothing to update"},
		{"all ok", []NamespaceReport{{Namespace: "a"}, {Namespace: "b"}}, OutcomeSuccess,
			"analysis settings updated successfully (2/2 namespaces)"},
		{"one failed", []NamespaceReport{{Namespace: "a"}, {Namespace: "b", Err: boom}}, OutcomePartial,
			"analysis settings partially updated (1/2 namespaces)"},
		{"all failed", []NamespaceReport{{Namespace: "a", Err: boom}}, OutcomeFailure,
			"analysis settings update failed (0/1 namespaces)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Report{Namespaces: tt.ns}
			assert.Equal(t, tt.want, r.Outcome())
			assert.Equal(t, tt.summary, r.Summary())
		})
	}
}

func TestReport_Changed(t *testing.T) {
	assert.False(t, (&Report{}).Changed())
	assert.True(t, (&Report{InterpreterChanged: true}).Changed())
	assert.True(t, (&Report{Namespaces: []NamespaceReport{{Changed: true}}}).Changed())
}
