package executor

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/guiderails/pkg/errors"
	"github.com/arthur-debert/guiderails/pkg/report"
	"github.com/arthur-debert/guiderails/pkg/sandbox"
	"github.com/arthur-debert/guiderails/pkg/tutorial"
	"github.com/arthur-debert/guiderails/pkg/vars"
)

func (e *Executor) executeFile(step *tutorial.Step, a *tutorial.FileAction) *report.ActionReport {
	start := time.Now()
	ar := e.newActionReport(step, a)
	ar.Status = report.StatusRunning
	e.observer.ActionStarted(ar)

	e.logger.Debug().
		Str("path", a.Path).
		Str("mode", string(a.Mode)).
		Bool("once", a.Once).
		Msg("Materializing file")

	finish := func() *report.ActionReport {
		ar.Duration = time.Since(start)
		e.observer.ActionFinished(ar)
		return ar
	}

	resolved, err := sandbox.Resolve(a.Path, e.workDir, e.allowUnsafePaths)
	if err != nil {
		ar.Status = report.StatusErrored
		ar.Reason = reasonForError(err)
		ar.Message = err.Error()
		e.logger.Error().Err(err).Str("path", a.Path).Msg("File action rejected")
		return finish()
	}

	if a.Once {
		if _, err := e.fs.Stat(resolved); err == nil {
			ar.Status = report.StatusSkipped
			ar.Reason = report.ReasonExists
			ar.Message = fmt.Sprintf("file already exists, skipping (once=true): %s", a.Path)
			return finish()
		}
	}

	content := a.Content
	if a.Template == tutorial.TemplateShell {
		content = vars.Substitute(content, e.vars)
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	if dir := filepath.Dir(resolved); dir != "" {
		if err := e.fs.MkdirAll(dir, 0o755); err != nil {
			ar.Status = report.StatusErrored
			ar.Reason = report.ReasonFilesystem
			ar.Message = errors.Wrapf(err, errors.ErrFilesystem, "cannot create directory %s", dir).Error()
			e.logger.Error().Err(err).Str("path", resolved).Msg("File action failed")
			return finish()
		}
	}

	if a.Mode == tutorial.WriteModeAppend {
		err = e.fs.AppendFile(resolved, []byte(content), 0o644)
	} else {
		err = e.fs.WriteFile(resolved, []byte(content), 0o644)
	}
	if err != nil {
		ar.Status = report.StatusErrored
		ar.Reason = report.ReasonFilesystem
		ar.Message = errors.Wrapf(err, errors.ErrFilesystem, "cannot write %s", a.Path).Error()
		e.logger.Error().Err(err).Str("path", resolved).Msg("File action failed")
		return finish()
	}

	if a.Executable {
		info, err := e.fs.Stat(resolved)
		if err == nil {
			err = e.fs.Chmod(resolved, info.Mode()|0o111)
		}
		if err != nil {
			ar.Status = report.StatusErrored
			ar.Reason = report.ReasonFilesystem
			ar.Message = errors.Wrapf(err, errors.ErrFilesystem, "cannot make %s executable", a.Path).Error()
			e.logger.Error().Err(err).Str("path", resolved).Msg("File action failed")
			return finish()
		}
	}

	ar.Status = report.StatusPassed
	ar.Message = fmt.Sprintf("wrote %d bytes to %s", len(content), a.Path)
	e.logger.Info().
		Str("path", a.Path).
		Int("bytes", len(content)).
		Dur("duration", time.Since(start)).
		Msg("File materialized")
	return finish()
}

// writeOutFile captures a command's stdout to a sandboxed path.
func (e *Executor) writeOutFile(path, stdout string) error {
	resolved, err := sandbox.Resolve(path, e.workDir, e.allowUnsafePaths)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(resolved); dir != "" {
		if err := e.fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, errors.ErrFilesystem, "cannot create directory %s", dir)
		}
	}
	if err := e.fs.WriteFile(resolved, []byte(stdout), 0o644); err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "cannot write output file %s", path)
	}
	return nil
}

func reasonForError(err error) report.Reason {
	switch errors.GetErrorCode(err) {
	case errors.ErrPathEscape:
		return report.ReasonPathEscape
	case errors.ErrTimeout:
		return report.ReasonTimeout
	default:
		return report.ReasonFilesystem
	}
}
