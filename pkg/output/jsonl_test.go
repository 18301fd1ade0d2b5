package output_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/guiderails/pkg/output"
	"github.com/arthur-debert/guiderails/pkg/report"
)

func decodeLines(t *testing.T, raw string) []map[string]interface{} {
	t.Helper()
	var records []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		var rec map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}
	return records
}

func TestJSONLStream(t *testing.T) {
	var buf bytes.Buffer
	r := output.NewJSONL(&buf)

	passed := passedRun()
	passed.AddCapture("NAME", "World")
	r.ActionFinished(passed)
	r.ActionFinished(failedRun())

	rep := report.New("Demo", "demo.md", false)
	rep.Add(passed)
	rep.Add(failedRun())
	rep.Complete()
	rep.EndTime = rep.StartTime.Add(250 * time.Millisecond)
	require.NoError(t, r.Summary(rep))

	records := decodeLines(t, buf.String())
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "action", first["type"])
	assert.Equal(t, "step-1", first["step"])
	assert.Equal(t, "run", first["kind"])
	assert.Equal(t, "passed", first["status"])
	assert.Equal(t, float64(12), first["duration_ms"])
	captured, ok := first["captured"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "World", captured["NAME"])

	second := records[1]
	assert.Equal(t, "failed", second["status"])
	assert.Equal(t, "validation-mismatch", second["reason"])
	assert.Equal(t, "0", second["expected"])
	assert.Equal(t, "1", second["actual"])
	assert.Equal(t, float64(1), second["exit_code"])

	summary := records[2]
	assert.Equal(t, "summary", summary["type"])
	assert.Equal(t, "Demo", summary["title"])
	assert.Equal(t, float64(2), summary["total"])
	assert.Equal(t, float64(1), summary["passed"])
	assert.Equal(t, float64(1), summary["failed"])
	assert.Equal(t, false, summary["success"])
	assert.Equal(t, float64(250), summary["duration_ms"])
}

func TestJSONLOmitsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	r := output.NewJSONL(&buf)

	r.ActionFinished(passedRun())

	records := decodeLines(t, buf.String())
	require.Len(t, records, 1)
	_, hasReason := records[0]["reason"]
	assert.False(t, hasReason)
	_, hasExpected := records[0]["expected"]
	assert.False(t, hasExpected)
}

func TestJSONLStepEventsAreSilent(t *testing.T) {
	var buf bytes.Buffer
	r := output.NewJSONL(&buf)

	r.StepStarted(nil)
	r.ActionStarted(passedRun())

	assert.Empty(t, buf.String())
}
