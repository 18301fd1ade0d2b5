// Package filesystem provides the filesystem seam for guiderails.
//
// The executor materializes tutorial files through the FS interface so
// tests can observe writes without touching the host filesystem.
package filesystem
