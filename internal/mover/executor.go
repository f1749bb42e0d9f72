// Package mover decides whether a note should move and performs the move.
//
// The Executor runs a fixed sequence against the vault store: destination
// check, collision check, no-op check, optional template, rename, optional
// companion folder move, optional subfolder creation. Failures before the
// rename leave the vault untouched. Failures after it are reported but never
// roll the rename back.
package mover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/notemover/internal/apperr"
	"github.com/starford/notemover/internal/models"
	"github.com/starford/notemover/internal/storage"
)

// Options are the global move switches.
type Options struct {
	// AutoCreateFolders creates <destination>/<note name> after a move.
	AutoCreateFolders bool `yaml:"auto_create_folders" json:"auto_create_folders"`
	// CreateNonExistentFolders creates a missing destination instead of failing.
	CreateNonExistentFolders bool `yaml:"create_non_existant_folders" json:"create_non_existant_folders"`
	// MoveFolderNote also moves a sibling folder named like the note.
	MoveFolderNote bool `yaml:"move_folder_note" json:"move_folder_note"`
	// ShowAlerts routes outcomes to user notices instead of the log only.
	ShowAlerts bool `yaml:"show_alerts" json:"show_alerts"`
}

// TemplateProvider appends a template to a note before it is moved.
type TemplateProvider interface {
	Append(ctx context.Context, file models.NoteFile, ref string) error
}

// Executor performs single moves. It holds no per-move state.
type Executor struct {
	store     storage.Provider
	opts      Options
	reporter  Reporter
	templates TemplateProvider
}

// NewExecutor creates an executor. templates may be nil.
func NewExecutor(store storage.Provider, opts Options, reporter Reporter, templates TemplateProvider) *Executor {
	if reporter == nil {
		reporter = ReporterFunc(func(Report) {})
	}
	return &Executor{store: store, opts: opts, reporter: reporter, templates: templates}
}

// Options returns the executor's switches.
func (e *Executor) Options() Options {
	return e.opts
}

// Move relocates file into destination under basename. Expected failures
// come back as outcomes, never as panics or errors.
func (e *Executor) Move(ctx context.Context, destination, basename string, file models.NoteFile, templateRef string) (res Result) {
	dest := storage.NormalizePath(destination)
	current := storage.NormalizePath(file.Path)
	res = Result{From: current, Destination: dest}

	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("mover: panic during move: %v: %w", p, apperr.ErrStoreOperation)
			res.Outcome = FailedStoreOperation
			res.Err = errors.Join(res.Err, err)
			e.emit(SeverityNotice, slog.LevelError, current, FailedStoreOperation,
				fmt.Sprintf("Error: moving %q failed unexpectedly: %v", basename, p))
		}
	}()

	if !storage.ExistsAs(e.store, dest, models.KindDir) {
		if !e.opts.CreateNonExistentFolders {
			res.Outcome = FailedDestinationMissing
			res.Err = fmt.Errorf("mover: %s: %w", dest, apperr.ErrDestinationMissing)
			e.emit(e.alert(), slog.LevelError, current, res.Outcome,
				fmt.Sprintf("Error: The destination folder %q does not exist.", dest))
			return res
		}
		if err := e.store.CreateDir(dest); err != nil {
			res.Outcome = FailedStoreOperation
			res.Err = fmt.Errorf("mover: create %s: %w: %w", dest, apperr.ErrStoreOperation, err)
			e.emit(e.alert(), slog.LevelError, current, res.Outcome,
				fmt.Sprintf("Error: could not create the destination folder %q: %v", dest, err))
			return res
		}
		e.emit(SeverityLog, slog.LevelInfo, current, OutcomeNone,
			fmt.Sprintf("Created the destination folder %q.", dest))
	}

	newPath := storage.JoinPath(dest, basename)
	res.To = newPath

	if newPath != current && storage.ExistsAs(e.store, newPath, models.KindFile) {
		res.Outcome = FailedNameCollision
		res.Err = fmt.Errorf("mover: %s: %w", newPath, apperr.ErrNameCollision)
		e.emit(e.alert(), slog.LevelError, current, res.Outcome,
			fmt.Sprintf("Error: A file with the same name %q exists at the destination folder.", basename))
		return res
	}

	if newPath == current {
		res.Outcome = SkippedNoOp
		return res
	}

	if templateRef != "" {
		e.applyTemplate(ctx, file, templateRef)
	}

	if err := e.store.Rename(current, newPath); err != nil {
		res.Outcome = FailedStoreOperation
		res.Err = fmt.Errorf("mover: rename %s: %w: %w", current, apperr.ErrStoreOperation, err)
		e.emit(e.alert(), slog.LevelError, current, res.Outcome,
			fmt.Sprintf("Error: could not move the note %q to %q: %v", basename, dest, err))
		return res
	}
	res.Outcome = Moved
	e.emit(e.alert(), slog.LevelInfo, newPath, Moved,
		fmt.Sprintf("Moved the note %q to %q.", basename, dest))

	stem := storage.StripMarkdownExt(basename)
	var errs []error
	if e.opts.MoveFolderNote {
		if err := e.moveCompanion(file, dest, stem, &res); err != nil {
			errs = append(errs, err)
		}
	}
	if e.opts.AutoCreateFolders {
		if err := e.createSubfolder(dest, stem, newPath, &res); err != nil {
			errs = append(errs, err)
		}
	}
	res.Err = errors.Join(errs...)
	return res
}

func (e *Executor) applyTemplate(ctx context.Context, file models.NoteFile, ref string) {
	if e.templates == nil {
		e.emit(SeverityLog, slog.LevelWarn, file.Path, OutcomeNone,
			fmt.Sprintf("Template %q skipped: no template provider configured.", ref))
		return
	}
	if err := e.templates.Append(ctx, file, ref); err != nil {
		e.emit(SeverityLog, slog.LevelWarn, file.Path, OutcomeNone,
			fmt.Sprintf("Template %q could not be applied to %q: %v", ref, file.Name, err))
	}
}

// moveCompanion moves <parent>/<stem>/ next to the note. The note has already
// moved; nothing here undoes that.
func (e *Executor) moveCompanion(file models.NoteFile, dest, stem string, res *Result) error {
	folderPath := storage.JoinPath(file.Parent, stem)
	if !storage.ExistsAs(e.store, folderPath, models.KindDir) {
		return nil
	}
	newFolderPath := storage.JoinPath(dest, stem)
	if storage.ExistsAs(e.store, newFolderPath, models.KindDir) {
		res.Companion = FailedFolderCollision
		e.emit(SeverityNotice, slog.LevelError, folderPath, FailedFolderCollision,
			fmt.Sprintf("Folder %q already exists in destination.", stem))
		return fmt.Errorf("mover: %s: %w", newFolderPath, apperr.ErrFolderCollision)
	}
	if err := e.store.Rename(folderPath, newFolderPath); err != nil {
		res.Companion = FailedStoreOperation
		e.emit(SeverityNotice, slog.LevelError, folderPath, FailedStoreOperation,
			fmt.Sprintf("Error: could not move folder %q to %q: %v", stem, dest, err))
		return fmt.Errorf("mover: rename %s: %w: %w", folderPath, apperr.ErrStoreOperation, err)
	}
	res.Companion = Moved
	e.emit(e.alert(), slog.LevelInfo, newFolderPath, Moved,
		fmt.Sprintf("Moved folder %q to %q.", stem, dest))
	return nil
}

// createSubfolder makes <dest>/<stem>/. An existing folder is informational.
func (e *Executor) createSubfolder(dest, stem, notePath string, res *Result) error {
	target := storage.JoinPath(dest, stem)
	if storage.ExistsAs(e.store, target, models.KindDir) {
		if e.opts.ShowAlerts {
			e.emit(SeverityNotice, slog.LevelInfo, target, OutcomeNone,
				fmt.Sprintf("Folder %s already exists.", target))
		} else {
			e.emit(SeverityLog, slog.LevelError, target, OutcomeNone,
				fmt.Sprintf("Folder %s already exists.", target))
		}
		return nil
	}
	if err := e.store.CreateDir(target); err != nil {
		e.emit(e.alert(), slog.LevelError, notePath, FailedStoreOperation,
			fmt.Sprintf("Error: could not create folder %q: %v", target, err))
		return fmt.Errorf("mover: create %s: %w: %w", target, apperr.ErrStoreOperation, err)
	}
	res.SubfolderCreated = true
	e.emit(SeverityLog, slog.LevelInfo, target, OutcomeNone,
		fmt.Sprintf("Created folder %q.", target))
	return nil
}

func (e *Executor) alert() Severity {
	if e.opts.ShowAlerts {
		return SeverityNotice
	}
	return SeverityLog
}

func (e *Executor) emit(sev Severity, level slog.Level, path string, outcome Outcome, msg string) {
	e.reporter.Report(Report{
		Severity: sev,
		Level:    level,
		Message:  msg,
		Path:     path,
		Outcome:  outcome,
	})
}
