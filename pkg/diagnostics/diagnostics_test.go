package diagnostics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorKeepsArrivalOrderAndDuplicates(t *testing.T) {
	c := NewCollector()
	c.Warn(CodeUnknownType, 3, 5, "Card", "could not infer type of property %q", "x")
	c.Error(CodeInvalidOutput, 0, 0, "", "broken")
	c.Warn(CodeUnknownType, 3, 5, "Card", "could not infer type of property %q", "x")

	ds := c.Diagnostics()
	require.Len(t, ds, 3)
	assert.Equal(t, SeverityWarning, ds[0].Severity)
	assert.Equal(t, SeverityError, ds[1].Severity)
	assert.Equal(t, ds[0], ds[2])
	assert.Equal(t, `could not infer type of property "x"`, ds[0].Message)
	assert.True(t, c.HasErrors())
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 2, Count(ds, SeverityWarning))
}

func TestCollectorReturnsCopy(t *testing.T) {
	c := NewCollector()
	assert.Nil(t, c.Diagnostics())
	assert.False(t, c.HasErrors())

	c.Warn(CodeUnsupportedConstruct, 1, 1, "A", "one")
	ds := c.Diagnostics()
	ds[0].Message = "mutated"

	assert.Equal(t, "one", c.Diagnostics()[0].Message)
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Severity: SeverityWarning, Message: "m", Line: 2, Column: 7, Component: "Card"}
	assert.Equal(t, "2:7: warning: m [Card]", d.String())

	d = Diagnostic{Severity: SeverityError, Message: "fatal"}
	assert.Equal(t, "error: fatal", d.String())
}

func TestSeverityJSON(t *testing.T) {
	data, err := json.Marshal(Diagnostic{Severity: SeverityError, Code: CodeParseError, Message: "x", Line: 1, Column: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"severity":"error","code":"parse-error","message":"x","line":1,"column":2}`, string(data))

	var d Diagnostic
	require.NoError(t, json.Unmarshal([]byte(`{"severity":"warning","message":"y"}`), &d))
	assert.Equal(t, SeverityWarning, d.Severity)

	assert.Error(t, json.Unmarshal([]byte(`{"severity":"fatal"}`), &d))
}
