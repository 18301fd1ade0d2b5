package render

import (
	"bytes"
	"strconv"
	"strings"
	"text/template"

	"github.com/arthur-debert/guiderails/pkg/errors"
	"github.com/arthur-debert/guiderails/pkg/tutorial"
)

// defaultTemplate is the built-in Markdown layout. Custom templates get
// the same Source as their data and the same function map.
var defaultTemplate = "# {{ .Title }}\n" +
	"{{ if .Description }}\n{{ .Description }}\n{{ end }}" +
	"{{ range .Steps }}\n" +
	"## {{ .Name }} {{ .Annotation }}\n" +
	"{{ if .Description }}\n{{ .Description }}\n{{ end }}" +
	"{{ range .Files }}\n" +
	"```{{ .Annotation }}\n" +
	"{{ body .Content }}" +
	"```\n" +
	"{{ end }}" +
	"{{ if .Command }}\n" +
	"```bash {{ .RunAnnotation }}\n" +
	"{{ body .Command }}" +
	"```\n" +
	"{{ end }}" +
	"{{ end }}"

var templateFuncs = template.FuncMap{
	"body": func(s string) string {
		if s == "" || strings.HasSuffix(s, "\n") {
			return s
		}
		return s + "\n"
	},
}

// Markdown renders the source as annotated Markdown. An empty tmplText
// selects the default template.
func Markdown(src *Source, tmplText string) (string, error) {
	if tmplText == "" {
		tmplText = defaultTemplate
	}
	tmpl, err := template.New("tutorial").Funcs(templateFuncs).Parse(tmplText)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrRender, "invalid render template")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, src); err != nil {
		return "", errors.Wrap(err, errors.ErrRender, "template execution failed")
	}
	return buf.String(), nil
}

// Annotation returns the step heading annotation, e.g. "{.gr-step #build}".
func (s StepSource) Annotation() string {
	b := newAnnotation(tutorial.ClassStep)
	if s.ID != "" {
		b.parts = append(b.parts, "#"+s.ID)
	}
	return b.String()
}

// RunAnnotation returns the command fence annotation with every
// non-default attribute spelled out.
func (s StepSource) RunAnnotation() string {
	b := newAnnotation(tutorial.ClassRun)
	if s.Mode != "" && s.Mode != string(tutorial.ModeExit) {
		b.attr("mode", s.Mode)
	}
	if s.Expected != "" {
		b.attr("exp", string(s.Expected))
	}
	if s.Timeout != nil {
		b.attr("timeout", strconv.Itoa(*s.Timeout))
	}
	if s.Workdir != "" {
		b.attr("workdir", s.Workdir)
	}
	if s.ContinueOnError {
		b.attr("continue-on-error", "true")
	}
	if s.OutVar != "" {
		b.attr("out-var", s.OutVar)
	}
	if s.CodeVar != "" {
		b.attr("code-var", s.CodeVar)
	}
	if s.OutFile != "" {
		b.attr("out-file", s.OutFile)
	}
	return b.String()
}

// Annotation returns the file fence annotation.
func (f FileSource) Annotation() string {
	b := newAnnotation(tutorial.ClassFile)
	b.attr("path", f.Path)
	if f.Mode != "" && f.Mode != string(tutorial.WriteModeWrite) {
		b.attr("mode", f.Mode)
	}
	if f.Exec {
		b.attr("exec", "true")
	}
	if f.Template != "" && f.Template != string(tutorial.TemplateNone) {
		b.attr("template", f.Template)
	}
	if f.Once {
		b.attr("once", "true")
	}
	return b.String()
}

type annotation struct {
	parts []string
}

func newAnnotation(class string) *annotation {
	return &annotation{parts: []string{"." + class}}
}

func (b *annotation) attr(key, value string) {
	b.parts = append(b.parts, key+"="+quoteAttrValue(value))
}

func (b *annotation) String() string {
	return "{" + strings.Join(b.parts, " ") + "}"
}

// quoteAttrValue emits the value as a bare token when the attribute
// grammar allows it, and as an escaped double-quoted string otherwise.
func quoteAttrValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\"{}") {
		return v
	}
	escaped := strings.ReplaceAll(v, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}
