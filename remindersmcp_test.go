package remindersmcp

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/localrivet/remindersmcp/internal/errortypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeRemindctl = `#!/bin/sh
case "$1" in
  list)
    printf '[{"id":"7","title":"Water plants","isCompleted":false,"priority":1,"list":"%s"}]\n' "$2"
    ;;
  add)
    echo "Created \"$2\""
    ;;
  complete)
    if [ "$2" = "missing" ]; then
      echo "reminder missing not found" >&2
      exit 1
    fi
    echo "Completed $2"
    ;;
  *)
    echo "$@"
    ;;
esac
`

func newTestServer(t *testing.T, withJournal bool) *Server {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake remindctl is a shell script")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "remindctl")
	require.NoError(t, os.WriteFile(script, []byte(fakeRemindctl), 0755))

	cfg := DefaultConfig()
	cfg.Remindctl.Path = script
	if withJournal {
		cfg.Journal.SQLitePath = filepath.Join(dir, "calls.db")
	}

	srv, err := NewServer(ServerOptions{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { srv.Stop() })
	return srv
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "remindctl", cfg.Remindctl.Path)
	assert.Equal(t, 6371, cfg.Server.Port)
	assert.Empty(t, cfg.Journal.SQLitePath)
}

func TestNewServerRejectsUnknownTransport(t *testing.T) {
	_, err := NewServer(ServerOptions{
		Config:    DefaultConfig(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Transport: "smoke-signals",
	})
	require.Error(t, err)
	assert.Equal(t, errortypes.ErrorTypeConfig, errortypes.TypeOf(err))
}

func TestServerDirectCalls(t *testing.T) {
	srv := newTestServer(t, false)
	ctx := context.Background()

	items, err := srv.ListReminders(ctx, "Delegated")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Water plants", items[0].Title)
	assert.Equal(t, "Delegated", items[0].List)

	out, err := srv.CreateReminder(ctx, "Call the plumber", "Active", "", "")
	require.NoError(t, err)
	assert.Equal(t, `Reminder created: Created "Call the plumber"`, out)

	out, err = srv.CompleteReminder(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "Reminder completed: Completed 7", out)

	out, err = srv.EditReminder(ctx, "7", "", "", "bring towels")
	require.NoError(t, err)
	assert.Equal(t, "Reminder updated: edit 7 --notes bring towels", out)

	out, err = srv.DeleteReminder(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "Reminder deleted: delete 7 --force", out)
}

func TestServerDirectCallErrors(t *testing.T) {
	srv := newTestServer(t, false)
	ctx := context.Background()

	_, err := srv.CompleteReminder(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errortypes.IsExternalToolError(err))
	assert.Equal(t, "reminder missing not found", err.Error())

	_, err = srv.ListReminders(ctx, "Someday")
	require.Error(t, err)
	assert.True(t, errortypes.IsInvalidArguments(err))

	_, err = srv.CreateReminder(ctx, "", "Active", "", "")
	require.Error(t, err)
	assert.True(t, errortypes.IsInvalidArguments(err))
}

func TestServerJournalsCalls(t *testing.T) {
	srv := newTestServer(t, true)
	ctx := context.Background()

	_, err := srv.CompleteReminder(ctx, "7")
	require.NoError(t, err)
	_, err = srv.CompleteReminder(ctx, "missing")
	require.Error(t, err)

	require.NotNil(t, srv.Components().Journal)
	entries, err := srv.Components().Journal.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "reminders_complete", entries[0].Tool)
	assert.Equal(t, []string{"complete", "missing"}, entries[0].Argv)
	assert.Equal(t, "error", entries[0].Status)
	assert.Equal(t, "success", entries[1].Status)
}

func TestServerTools(t *testing.T) {
	srv := newTestServer(t, false)

	descriptors := srv.Tools()
	require.Len(t, descriptors, 5)
	assert.Equal(t, "reminders_list", descriptors[0].Name)
}
