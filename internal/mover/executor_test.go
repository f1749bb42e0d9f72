package mover

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/notemover/internal/apperr"
	"github.com/starford/notemover/internal/models"
	"github.com/starford/notemover/internal/storage"
)

var inboxNote = models.NewNoteFile("Inbox/note.md")

func TestMove_Moved(t *testing.T) {
	store := newVault(t, "Inbox/note.md", "Projects/")
	rep := &captured{}
	ex := NewExecutor(store, Options{ShowAlerts: true}, rep, nil)

	res := ex.Move(context.Background(), "Projects", "note.md", inboxNote, "")

	assert.Equal(t, Moved, res.Outcome)
	assert.Equal(t, "Projects/note.md", res.To)
	assert.NoError(t, res.Err)
	assert.True(t, storage.ExistsAs(store, "Projects/note.md", models.KindFile))
	assert.False(t, storage.ExistsAs(store, "Inbox/note.md", models.KindFile))
	require.Len(t, rep.bySeverity(SeverityNotice), 1)
	assert.Contains(t, rep.reports[0].Message, "Moved the note")
}

func TestMove_Idempotent(t *testing.T) {
	store := newVault(t, "Inbox/note.md", "Projects/")
	rep := &captured{}
	ex := NewExecutor(store, Options{ShowAlerts: true}, rep, nil)
	ctx := context.Background()

	first := ex.Move(ctx, "Projects", "note.md", inboxNote, "")
	require.Equal(t, Moved, first.Outcome)
	n := len(rep.reports)

	second := ex.Move(ctx, "Projects", "note.md", models.NewNoteFile(first.To), "")
	assert.Equal(t, SkippedNoOp, second.Outcome)
	assert.Len(t, rep.reports, n, "no-op must not report")
}

func TestMove_NoOpRegardlessOfOptions(t *testing.T) {
	store := newVault(t, "Projects/note.md")
	rep := &captured{}
	tmpl := &fakeTemplates{store: store}
	opts := Options{AutoCreateFolders: true, CreateNonExistentFolders: true, MoveFolderNote: true, ShowAlerts: true}
	ex := NewExecutor(store, opts, rep, tmpl)

	res := ex.Move(context.Background(), "/Projects/", "note.md", models.NewNoteFile("Projects/note.md"), "tpl")

	assert.Equal(t, SkippedNoOp, res.Outcome)
	assert.Empty(t, rep.reports)
	assert.Empty(t, tmpl.calls)
	assert.Zero(t, store.renames)
	assert.False(t, storage.ExistsAs(store, "Projects/note", models.KindDir))
}

func TestMove_DestinationMissing(t *testing.T) {
	for _, alerts := range []bool{false, true} {
		store := newVault(t, "Inbox/note.md")
		rep := &captured{}
		ex := NewExecutor(store, Options{ShowAlerts: alerts}, rep, nil)

		res := ex.Move(context.Background(), "Projects", "note.md", inboxNote, "")

		assert.Equal(t, FailedDestinationMissing, res.Outcome)
		assert.ErrorIs(t, res.Err, apperr.ErrDestinationMissing)
		assert.Zero(t, store.renames, "no rename attempted")
		require.Len(t, rep.reports, 1)
		want := SeverityLog
		if alerts {
			want = SeverityNotice
		}
		assert.Equal(t, want, rep.reports[0].Severity)
		assert.Equal(t, slog.LevelError, rep.reports[0].Level)
	}
}

func TestMove_CreatesMissingDestination(t *testing.T) {
	store := newVault(t, "Inbox/note.md")
	ex := NewExecutor(store, Options{CreateNonExistentFolders: true}, &captured{}, nil)

	res := ex.Move(context.Background(), "Projects/2026", "note.md", inboxNote, "")

	assert.Equal(t, Moved, res.Outcome)
	assert.True(t, storage.ExistsAs(store, "Projects/2026/note.md", models.KindFile))
}

func TestMove_CreateDestinationFails(t *testing.T) {
	store := newVault(t, "Inbox/note.md")
	store.createErr = errors.New("invalid characters")
	rep := &captured{}
	ex := NewExecutor(store, Options{CreateNonExistentFolders: true}, rep, nil)

	res := ex.Move(context.Background(), "Pro:jects", "note.md", inboxNote, "")

	assert.Equal(t, FailedStoreOperation, res.Outcome)
	assert.ErrorIs(t, res.Err, apperr.ErrStoreOperation)
	assert.Zero(t, store.renames)
	require.Len(t, rep.reports, 1)
}

func TestMove_NameCollision(t *testing.T) {
	store := newVault(t, "Inbox/note.md", "Projects/note.md")
	rep := &captured{}
	ex := NewExecutor(store, Options{}, rep, nil)

	res := ex.Move(context.Background(), "Projects", "note.md", inboxNote, "")

	assert.Equal(t, FailedNameCollision, res.Outcome)
	assert.ErrorIs(t, res.Err, apperr.ErrNameCollision)
	assert.Zero(t, store.renames, "rename must never be invoked on collision")
	assert.True(t, storage.ExistsAs(store, "Inbox/note.md", models.KindFile))
	require.Len(t, rep.reports, 1)
	assert.Equal(t, SeverityLog, rep.reports[0].Severity)
}

func TestMove_RenameFails(t *testing.T) {
	store := newVault(t, "Inbox/note.md", "Projects/")
	store.renameErr = errors.New("file vanished")
	ex := NewExecutor(store, Options{MoveFolderNote: true, AutoCreateFolders: true}, &captured{}, nil)

	res := ex.Move(context.Background(), "Projects", "note.md", inboxNote, "")

	assert.Equal(t, FailedStoreOperation, res.Outcome)
	assert.ErrorIs(t, res.Err, apperr.ErrStoreOperation)
	assert.False(t, res.SubfolderCreated, "later steps must not run")
	assert.False(t, storage.ExistsAs(store, "Projects/note", models.KindDir))
}

func TestMove_CompanionFolder(t *testing.T) {
	store := newVault(t, "Inbox/note.md", "Inbox/note/image.png", "Projects/")
	rep := &captured{}
	ex := NewExecutor(store, Options{MoveFolderNote: true}, rep, nil)

	res := ex.Move(context.Background(), "Projects", "note.md", inboxNote, "")

	assert.Equal(t, Moved, res.Outcome)
	assert.Equal(t, Moved, res.Companion)
	assert.True(t, storage.ExistsAs(store, "Projects/note", models.KindDir))
	assert.True(t, storage.ExistsAs(store, "Projects/note/image.png", models.KindFile))
	assert.False(t, storage.ExistsAs(store, "Inbox/note", models.KindDir))
}

func TestMove_CompanionAbsent(t *testing.T) {
	store := newVault(t, "Inbox/note.md", "Projects/")
	ex := NewExecutor(store, Options{MoveFolderNote: true}, &captured{}, nil)

	res := ex.Move(context.Background(), "Projects", "note.md", inboxNote, "")

	assert.Equal(t, Moved, res.Outcome)
	assert.Equal(t, OutcomeNone, res.Companion)
	assert.Equal(t, 1, store.renames)
}

func TestMove_CompanionCollisionKeepsFileMove(t *testing.T) {
	store := newVault(t, "Inbox/note.md", "Inbox/note/a.png", "Projects/note/")
	rep := &captured{}
	ex := NewExecutor(store, Options{MoveFolderNote: true}, rep, nil)

	res := ex.Move(context.Background(), "Projects", "note.md", inboxNote, "")

	assert.Equal(t, Moved, res.Outcome)
	assert.Equal(t, FailedFolderCollision, res.Companion)
	assert.ErrorIs(t, res.Err, apperr.ErrFolderCollision)
	assert.True(t, storage.ExistsAs(store, "Projects/note.md", models.KindFile))
	assert.True(t, storage.ExistsAs(store, "Inbox/note/a.png", models.KindFile))
	assert.NotEmpty(t, rep.bySeverity(SeverityNotice), "collision is always surfaced")
}

func TestMove_AutoCreateSubfolder(t *testing.T) {
	store := newVault(t, "Inbox/note.md", "Projects/")
	ex := NewExecutor(store, Options{AutoCreateFolders: true}, &captured{}, nil)

	res := ex.Move(context.Background(), "Projects", "note.md", inboxNote, "")

	assert.Equal(t, Moved, res.Outcome)
	assert.True(t, res.SubfolderCreated)
	assert.True(t, storage.ExistsAs(store, "Projects/note", models.KindDir))
}

func TestMove_AutoCreateSubfolderExists(t *testing.T) {
	for _, alerts := range []bool{false, true} {
		store := newVault(t, "Inbox/note.md", "Projects/note/")
		rep := &captured{}
		ex := NewExecutor(store, Options{AutoCreateFolders: true, ShowAlerts: alerts}, rep, nil)

		res := ex.Move(context.Background(), "Projects", "note.md", inboxNote, "")

		assert.Equal(t, Moved, res.Outcome)
		assert.False(t, res.SubfolderCreated)
		assert.NoError(t, res.Err, "an existing folder is not a failure")
		last := rep.reports[len(rep.reports)-1]
		assert.Contains(t, last.Message, "already exists")
		if alerts {
			assert.Equal(t, SeverityNotice, last.Severity)
		} else {
			assert.Equal(t, SeverityLog, last.Severity)
			assert.Equal(t, slog.LevelError, last.Level)
		}
	}
}

func TestMove_TemplateAppliedBeforeRename(t *testing.T) {
	store := newVault(t, "Inbox/note.md", "Projects/")
	tmpl := &fakeTemplates{store: store}
	ex := NewExecutor(store, Options{}, &captured{}, tmpl)

	res := ex.Move(context.Background(), "Projects", "note.md", inboxNote, "project")

	assert.Equal(t, Moved, res.Outcome)
	assert.Equal(t, []string{"project"}, tmpl.calls)
	assert.True(t, tmpl.sawFile, "template must run while the note is still at its old path")
}

func TestMove_TemplateFailureDoesNotAbort(t *testing.T) {
	store := newVault(t, "Inbox/note.md", "Projects/")
	tmpl := &fakeTemplates{store: store, err: errors.New("template missing")}
	rep := &captured{}
	ex := NewExecutor(store, Options{}, rep, tmpl)

	res := ex.Move(context.Background(), "Projects", "note.md", inboxNote, "missing")

	assert.Equal(t, Moved, res.Outcome)
	assert.NoError(t, res.Err)
	assert.Equal(t, slog.LevelWarn, rep.reports[0].Level)
}

func TestMove_ToVaultRoot(t *testing.T) {
	store := newVault(t, "Inbox/note.md")
	ex := NewExecutor(store, Options{}, nil, nil)

	res := ex.Move(context.Background(), "/", "note.md", inboxNote, "")

	assert.Equal(t, Moved, res.Outcome)
	assert.Equal(t, "note.md", res.To)
}

func TestMove_PanicBecomesFailure(t *testing.T) {
	store := newVault(t, "Inbox/note.md", "Projects/")
	store.panicOn = "Projects"
	rep := &captured{}
	ex := NewExecutor(store, Options{}, rep, nil)

	res := ex.Move(context.Background(), "Projects", "note.md", inboxNote, "")

	assert.Equal(t, FailedStoreOperation, res.Outcome)
	assert.ErrorIs(t, res.Err, apperr.ErrStoreOperation)
	require.NotEmpty(t, rep.reports)
}
