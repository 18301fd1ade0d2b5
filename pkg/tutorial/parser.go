package tutorial

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/arthur-debert/guiderails/pkg/errors"
	"github.com/arthur-debert/guiderails/pkg/logging"
)

// Fences with no language tag default to bash; tutorials are shell-first.
const defaultLanguage = "bash"

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParseFile reads and parses a tutorial from the filesystem.
func ParseFile(path string) (*Tutorial, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotFound, "cannot read tutorial %s", path)
	}
	return Parse(string(data), path)
}

// Parse turns annotated Markdown into a Tutorial. A heading annotated
// with gr-step opens a step; fenced code blocks annotated gr-run or
// gr-file become that step's actions in source order. Untagged blocks
// and prose are inert. Any malformed annotation, bad attribute value,
// or tagged block before the first step rejects the whole document, so
// a broken tutorial never partially executes.
func Parse(content, source string) (*Tutorial, error) {
	logger := logging.GetLogger("tutorial.parser")
	logger.Debug().Str("source", source).Msg("Parsing tutorial")

	t := &Tutorial{Source: source}

	var (
		current   *Step
		prose     []string
		inFence   bool
		fenceLang string
		fenceAttr AttrSet
		fenceTag  bool
		fenceLine int
		fenceBody []string
		attrLine  int
	)

	closeStep := func() {
		if current != nil {
			current.Content = strings.TrimSpace(strings.Join(prose, "\n"))
		}
		prose = nil
	}

	lines := strings.Split(content, "\n")
	for n, raw := range lines {
		lineNum := n + 1
		trimmed := strings.TrimSpace(raw)

		if lineNum == attrLine {
			continue
		}

		if strings.HasPrefix(trimmed, "```") {
			if !inFence {
				lang, attrs, tagged, err := parseFenceInfo(strings.TrimSpace(trimmed[3:]))
				if err != nil {
					return nil, errors.WithLine(err, lineNum)
				}
				if tagged && current == nil {
					return nil, errors.Newf(errors.ErrOrphanAction,
						"code block at line %d is annotated but appears before any step heading", lineNum).
						WithLine(lineNum)
				}
				inFence = true
				fenceLang, fenceAttr, fenceTag = lang, attrs, tagged
				fenceLine = lineNum
				fenceBody = nil
				continue
			}

			inFence = false
			if fenceTag {
				action, err := buildAction(fenceAttr, fenceLang, strings.Join(fenceBody, "\n"), fenceLine)
				if err != nil {
					return nil, errors.WithLine(err, fenceLine)
				}
				current.Actions = append(current.Actions, action)
			}
			continue
		}

		if inFence {
			fenceBody = append(fenceBody, raw)
			continue
		}

		if strings.HasPrefix(trimmed, "#") {
			text, attrs, annotated, err := splitHeading(trimmed)
			if err != nil {
				return nil, errors.WithLine(err, lineNum)
			}
			// Extended Markdown syntax also allows the annotation on
			// the line after the heading. That line is consumed so it
			// never leaks into the step's prose.
			if !annotated && n+1 < len(lines) {
				if next := strings.TrimSpace(lines[n+1]); strings.HasPrefix(next, "{.") {
					parsed, perr := ParseAttrs(next)
					if perr != nil {
						return nil, errors.WithLine(perr, lineNum+1)
					}
					attrs, annotated = parsed, true
					attrLine = lineNum + 1
				}
			}
			if annotated && attrs.HasClass(ClassStep) {
				closeStep()
				current = &Step{Title: text, ID: attrs.ID, Line: lineNum}
				t.Steps = append(t.Steps, current)
			} else if t.Title == "" && strings.HasPrefix(trimmed, "# ") {
				t.Title = text
			}
			continue
		}

		if current != nil {
			prose = append(prose, raw)
		}
	}

	if inFence && fenceTag {
		return nil, errors.Newf(errors.ErrDocumentParse,
			"code block opened at line %d is never closed", fenceLine).WithLine(fenceLine)
	}
	closeStep()

	for i, s := range t.Steps {
		if s.ID == "" {
			s.ID = fmt.Sprintf("step-%d", i+1)
		}
	}
	if t.Title == "" {
		t.Title = "Untitled Tutorial"
	}

	logger.Debug().
		Str("title", t.Title).
		Int("steps", len(t.Steps)).
		Int("actions", len(t.Actions())).
		Msg("Parsed tutorial")
	return t, nil
}

// splitHeading separates heading text from a trailing {.class ...}
// annotation. Detection keys on "{." so prose like ${NAME} in a heading
// is left alone.
func splitHeading(line string) (string, AttrSet, bool, error) {
	var attrs AttrSet
	annotated := false

	if idx := strings.Index(line, "{."); idx >= 0 {
		parsed, err := ParseAttrs(line[idx:])
		if err != nil {
			return "", AttrSet{}, false, err
		}
		attrs = parsed
		annotated = true
		line = line[:idx]
	}

	return strings.TrimSpace(strings.TrimLeft(line, "#")), attrs, annotated, nil
}

// parseFenceInfo decodes a fence info string of the form "lang {attrs}"
// with either part optional.
func parseFenceInfo(info string) (string, AttrSet, bool, error) {
	lang := defaultLanguage
	if info == "" {
		return lang, AttrSet{}, false, nil
	}

	idx := strings.Index(info, "{")
	if idx < 0 {
		return strings.Fields(info)[0], AttrSet{}, false, nil
	}
	if head := strings.TrimSpace(info[:idx]); head != "" {
		lang = strings.Fields(head)[0]
	}

	attrs, err := ParseAttrs(info[idx:])
	if err != nil {
		return lang, AttrSet{}, false, err
	}
	tagged := attrs.HasClass(ClassRun) || attrs.HasClass(ClassFile)
	return lang, attrs, tagged, nil
}

func buildAction(attrs AttrSet, lang, body string, line int) (Action, error) {
	isRun := attrs.HasClass(ClassRun)
	isFile := attrs.HasClass(ClassFile)
	if isRun && isFile {
		return nil, errors.New(errors.ErrMalformedAttributes,
			"block cannot carry both gr-run and gr-file")
	}
	if isRun {
		return buildRunAction(attrs, lang, body, line)
	}
	return buildFileAction(attrs, body, line)
}

func buildRunAction(attrs AttrSet, lang, body string, line int) (Action, error) {
	a := &RunAction{
		Command:     strings.TrimSpace(body),
		Language:    lang,
		Mode:        ModeExit,
		Expected:    "0",
		TimeoutSecs: 30,
		Line:        line,
	}

	if v, ok := attrs.Get("mode"); ok {
		switch m := ValidationMode(v); m {
		case ModeExit, ModeContains, ModeRegex, ModeExact:
			a.Mode = m
		default:
			return nil, errors.Newf(errors.ErrDocumentParse,
				"invalid validation mode %q, want exit, contains, regex or exact", v)
		}
	}
	// expected is a long-form alias; exp wins when both are set.
	if v, ok := attrs.Get("exp"); ok {
		a.Expected = v
	} else if v, ok := attrs.Get("expected"); ok {
		a.Expected = v
	}
	if a.Mode == ModeExit {
		if _, err := strconv.Atoi(a.Expected); err != nil {
			return nil, errors.Newf(errors.ErrDocumentParse,
				"exit mode expects an integer exit code, got %q", a.Expected)
		}
	}
	if v, ok := attrs.Get("timeout"); ok {
		secs, err := strconv.Atoi(v)
		if err != nil || secs < 0 {
			return nil, errors.Newf(errors.ErrDocumentParse,
				"timeout must be a non-negative integer, got %q", v)
		}
		a.TimeoutSecs = secs
	}
	if v, ok := attrs.Get("workdir"); ok {
		if v == "" {
			return nil, errors.New(errors.ErrDocumentParse, "workdir cannot be empty")
		}
		a.Workdir = v
	}
	if v, ok := attrs.Get("continue-on-error"); ok {
		b, err := parseBoolAttr("continue-on-error", v)
		if err != nil {
			return nil, err
		}
		a.ContinueOnError = b
	}
	if v, ok := attrs.Get("out-var"); ok {
		if !identPattern.MatchString(v) {
			return nil, errors.Newf(errors.ErrDocumentParse, "out-var %q is not a valid identifier", v)
		}
		a.OutVar = v
	}
	if v, ok := attrs.Get("code-var"); ok {
		if !identPattern.MatchString(v) {
			return nil, errors.Newf(errors.ErrDocumentParse, "code-var %q is not a valid identifier", v)
		}
		a.CodeVar = v
	}
	if v, ok := attrs.Get("out-file"); ok {
		if v == "" {
			return nil, errors.New(errors.ErrDocumentParse, "out-file cannot be empty")
		}
		a.OutFile = v
	}

	return a, nil
}

func buildFileAction(attrs AttrSet, body string, line int) (Action, error) {
	a := &FileAction{
		Mode:     WriteModeWrite,
		Template: TemplateNone,
		Content:  body,
		Line:     line,
	}

	path, ok := attrs.Get("path")
	if !ok || path == "" {
		return nil, errors.New(errors.ErrDocumentParse, "gr-file block requires a path attribute")
	}
	a.Path = path

	if v, ok := attrs.Get("mode"); ok {
		switch m := WriteMode(v); m {
		case WriteModeWrite, WriteModeAppend:
			a.Mode = m
		default:
			return nil, errors.Newf(errors.ErrDocumentParse,
				"invalid file mode %q, want write or append", v)
		}
	}
	if v, ok := attrs.Get("exec"); ok {
		b, err := parseBoolAttr("exec", v)
		if err != nil {
			return nil, err
		}
		a.Executable = b
	}
	if v, ok := attrs.Get("template"); ok {
		switch m := TemplateMode(v); m {
		case TemplateNone, TemplateShell:
			a.Template = m
		default:
			return nil, errors.Newf(errors.ErrDocumentParse,
				"invalid template mode %q, want none or shell", v)
		}
	}
	if v, ok := attrs.Get("once"); ok {
		b, err := parseBoolAttr("once", v)
		if err != nil {
			return nil, err
		}
		a.Once = b
	}

	return a, nil
}

func parseBoolAttr(key, v string) (bool, error) {
	switch v {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, errors.Newf(errors.ErrDocumentParse, "%s must be true or false, got %q", key, v)
}
