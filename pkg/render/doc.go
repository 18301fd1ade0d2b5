// Package render turns YAML tutorial sources into annotated Markdown,
// generates CI workflows that execute a tutorial, and scaffolds new
// tutorial projects. The Markdown it emits carries the same gr-step /
// gr-run / gr-file annotations the parser consumes, so rendered output
// is itself executable.
package render
