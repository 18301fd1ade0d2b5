package output_test

import (
	"bytes"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/guiderails/pkg/output"
	"github.com/arthur-debert/guiderails/pkg/report"
)

func TestWriteJUnit(t *testing.T) {
	rep := report.New("Getting Started", "tutorial.md", false)
	rep.Add(passedRun())
	rep.Add(failedRun())

	skipped := passedRun()
	skipped.StepID = "verify"
	skipped.StepTitle = "Verify"
	skipped.Status = report.StatusSkipped
	skipped.Reason = report.ReasonHalted
	skipped.Message = "earlier action failed"
	rep.Add(skipped)
	rep.Complete()

	var buf bytes.Buffer
	require.NoError(t, output.WriteJUnit(rep, &buf))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))

	suites := doc.SelectElement("testsuites")
	require.NotNil(t, suites)
	assert.Equal(t, "Getting Started", suites.SelectAttrValue("name", ""))
	assert.Equal(t, "3", suites.SelectAttrValue("tests", ""))
	assert.Equal(t, "1", suites.SelectAttrValue("failures", ""))
	assert.Equal(t, "0", suites.SelectAttrValue("errors", ""))
	assert.Equal(t, "1", suites.SelectAttrValue("skipped", ""))

	stepSuites := suites.SelectElements("testsuite")
	require.Len(t, stepSuites, 2)

	first := stepSuites[0]
	assert.Equal(t, "Install", first.SelectAttrValue("name", ""))
	assert.Equal(t, "2", first.SelectAttrValue("tests", ""))
	assert.Equal(t, "1", first.SelectAttrValue("failures", ""))

	cases := first.SelectElements("testcase")
	require.Len(t, cases, 2)
	assert.Equal(t, "run: echo hi", cases[0].SelectAttrValue("name", ""))
	assert.Equal(t, "step-1", cases[0].SelectAttrValue("classname", ""))
	assert.Nil(t, cases[0].SelectElement("failure"))

	failure := cases[1].SelectElement("failure")
	require.NotNil(t, failure)
	assert.Equal(t, "exit code 1 != expected 0", failure.SelectAttrValue("message", ""))
	assert.Equal(t, "validation-mismatch", failure.SelectAttrValue("type", ""))
	assert.Contains(t, failure.Text(), "expected: 0")
	assert.Contains(t, failure.Text(), "actual: 1")

	second := stepSuites[1]
	assert.Equal(t, "Verify", second.SelectAttrValue("name", ""))
	skippedEl := second.SelectElements("testcase")[0].SelectElement("skipped")
	require.NotNil(t, skippedEl)
	assert.Equal(t, "earlier action failed", skippedEl.SelectAttrValue("message", ""))
}

func TestWriteJUnitErroredAction(t *testing.T) {
	rep := report.New("Demo", "demo.md", false)

	errored := passedRun()
	errored.Status = report.StatusErrored
	errored.Reason = report.ReasonTimeout
	errored.Message = "command timed out after 1 seconds"
	errored.Output = "partial output\n"
	rep.Add(errored)
	rep.Complete()

	var buf bytes.Buffer
	require.NoError(t, output.WriteJUnit(rep, &buf))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))

	tc := doc.FindElement("//testcase")
	require.NotNil(t, tc)

	errEl := tc.SelectElement("error")
	require.NotNil(t, errEl)
	assert.Equal(t, "timeout", errEl.SelectAttrValue("type", ""))

	sysOut := tc.SelectElement("system-out")
	require.NotNil(t, sysOut)
	assert.Contains(t, sysOut.Text(), "partial output")
}

func TestWriteJUnitEmptyReport(t *testing.T) {
	rep := report.New("Empty", "empty.md", false)
	rep.Complete()

	var buf bytes.Buffer
	require.NoError(t, output.WriteJUnit(rep, &buf))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))

	suites := doc.SelectElement("testsuites")
	require.NotNil(t, suites)
	assert.Equal(t, "0", suites.SelectAttrValue("tests", ""))
	assert.Empty(t, suites.SelectElements("testsuite"))
}
