package output

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/arthur-debert/guiderails/pkg/report"
)

// WriteJUnit renders the report as a JUnit XML document: one testsuite
// per step, one testcase per action. Failed validations map to
// <failure>, execution errors to <error> and skips to <skipped>.
func WriteJUnit(rep *report.Report, w io.Writer) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	suites := doc.CreateElement("testsuites")
	suites.CreateAttr("name", rep.Title)
	suites.CreateAttr("tests", strconv.Itoa(rep.Total))
	suites.CreateAttr("failures", strconv.Itoa(rep.Failed))
	suites.CreateAttr("errors", strconv.Itoa(rep.Errored))
	suites.CreateAttr("skipped", strconv.Itoa(rep.Skipped))
	suites.CreateAttr("time", junitSeconds(rep.Duration()))

	grouped := rep.ByStep()
	for _, stepID := range rep.StepIDs() {
		actions := grouped[stepID]
		suite := suites.CreateElement("testsuite")
		suite.CreateAttr("name", suiteName(stepID, actions))

		var failures, errors, skipped int
		var total time.Duration
		for _, ar := range actions {
			total += ar.Duration
			switch ar.Status {
			case report.StatusFailed:
				failures++
			case report.StatusErrored:
				errors++
			case report.StatusSkipped:
				skipped++
			}
		}
		suite.CreateAttr("tests", strconv.Itoa(len(actions)))
		suite.CreateAttr("failures", strconv.Itoa(failures))
		suite.CreateAttr("errors", strconv.Itoa(errors))
		suite.CreateAttr("skipped", strconv.Itoa(skipped))
		suite.CreateAttr("time", junitSeconds(total))

		for _, ar := range actions {
			writeTestcase(suite, ar)
		}
	}

	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}

func writeTestcase(suite *etree.Element, ar *report.ActionReport) {
	tc := suite.CreateElement("testcase")
	tc.CreateAttr("name", ar.Label)
	tc.CreateAttr("classname", ar.StepID)
	tc.CreateAttr("time", junitSeconds(ar.Duration))

	switch ar.Status {
	case report.StatusFailed:
		failure := tc.CreateElement("failure")
		failure.CreateAttr("message", ar.Message)
		failure.CreateAttr("type", string(ar.Reason))
		if ar.Expected != "" || ar.Actual != "" {
			failure.SetText(fmt.Sprintf("expected: %s\nactual: %s", ar.Expected, ar.Actual))
		}
	case report.StatusErrored:
		errEl := tc.CreateElement("error")
		errEl.CreateAttr("message", ar.Message)
		errEl.CreateAttr("type", string(ar.Reason))
	case report.StatusSkipped:
		skippedEl := tc.CreateElement("skipped")
		if ar.Message != "" {
			skippedEl.CreateAttr("message", ar.Message)
		}
	}

	if ar.Output != "" && (ar.Status == report.StatusFailed || ar.Status == report.StatusErrored) {
		sysOut := tc.CreateElement("system-out")
		sysOut.SetText(ar.Output)
	}
}

func suiteName(stepID string, actions []*report.ActionReport) string {
	if len(actions) > 0 && actions[0].StepTitle != "" {
		return actions[0].StepTitle
	}
	return stepID
}

func junitSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
