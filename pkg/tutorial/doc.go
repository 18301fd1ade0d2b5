// Package tutorial defines the tutorial document model and the Markdown
// parser that produces it. A Tutorial is an ordered list of Steps, each
// holding the Actions (run commands, file writes) declared by annotated
// fenced code blocks in the source document.
package tutorial
