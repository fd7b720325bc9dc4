package log

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
)

// useTempLogDir isolates the package globals and the log directory.
func useTempLogDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	originalLoggingEnabled := loggingEnabled
	SetBaseDir(dir)
	loggingEnabled = true
	t.Cleanup(func() {
		loggingEnabled = originalLoggingEnabled
		currentSession = nil
		SetBaseDir("")
	})
	return dir
}

func TestLogSession(t *testing.T) {
	useTempLogDir(t)

	if err := StartSession("search", []string{"heat", "--series"}, "/vault"); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	if currentSession == nil {
		t.Fatal("StartSession() should have created a session")
	}

	want := []string{"search", "heat", "--series"}
	if diff := cmp.Diff(want, currentSession.Metadata.CommandArgs); diff != "" {
		t.Errorf("CommandArgs mismatch (-want +got):\n%s", diff)
	}
	if currentSession.Metadata.Vault != "/vault" {
		t.Errorf("Vault = %q", currentSession.Metadata.Vault)
	}
	if !Active() {
		t.Error("Active() = false during a session")
	}
}

func TestLogOperations(t *testing.T) {
	useTempLogDir(t)
	_ = StartSession("search", nil, "")

	LogCreateNote("/vault/Movies/Heat.md", []byte("heat"), nil)
	LogOverwriteNote("/vault/Movies/Ronin.md", "/backup/1_Ronin.md", []byte("ronin"), nil)
	LogSavePoster("/vault/Posters/Heat.jpg", "", nil, errors.New("HTTP error! Status: 404"))

	ops := currentSession.Operations
	if len(ops) != 3 {
		t.Fatalf("operations = %d, want 3", len(ops))
	}

	want := []OperationLog{
		{Type: OpCreateNote, Path: "/vault/Movies/Heat.md", Checksum: checksum([]byte("heat")), Success: true},
		{Type: OpOverwriteNote, Path: "/vault/Movies/Ronin.md", BackupPath: "/backup/1_Ronin.md", Checksum: checksum([]byte("ronin")), Success: true},
		{Type: OpSavePoster, Path: "/vault/Posters/Heat.jpg", Error: "HTTP error! Status: 404"},
	}
	ignore := cmpopts.IgnoreFields(OperationLog{}, "ID", "Timestamp")
	if diff := cmp.Diff(want, ops, ignore); diff != "" {
		t.Errorf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestEndSessionWritesFile(t *testing.T) {
	dir := useTempLogDir(t)
	_ = StartSession("search", []string{"heat"}, "/vault")
	LogCreateNote("/vault/Movies/Heat.md", []byte("x"), nil)
	LogCreateNote("/vault/Movies/Ronin.md", nil, errors.New("boom"))

	if err := EndSession(); err != nil {
		t.Fatalf("EndSession() failed: %v", err)
	}
	if currentSession != nil {
		t.Error("EndSession() should clear the session")
	}

	files, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	if len(files) != 1 {
		t.Fatalf("log files = %v, want 1", files)
	}
	session, err := ReadSession(files[0])
	if err != nil {
		t.Fatalf("ReadSession() failed: %v", err)
	}
	if session.Metadata.TotalOps != 2 || session.Metadata.SuccessfulOps != 1 || session.Metadata.FailedOps != 1 {
		t.Errorf("stats = %+v", session.Metadata)
	}
}

func TestEndSessionDropsEmptySessions(t *testing.T) {
	dir := useTempLogDir(t)
	_ = StartSession("search", nil, "")
	if err := EndSession(); err != nil {
		t.Fatalf("EndSession() failed: %v", err)
	}
	files, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	if len(files) != 0 {
		t.Errorf("empty session written: %v", files)
	}
}

func TestSessionSerialization(t *testing.T) {
	useTempLogDir(t)

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	session := &LogSession{
		Metadata: SessionMetadata{
			CommandArgs:   []string{"search", "heat"},
			WorkingDir:    "/tmp",
			Timestamp:     ts,
			SessionID:     "20240501_120000_000",
			TotalOps:      1,
			SuccessfulOps: 1,
		},
		Operations: []OperationLog{
			{ID: "20240501_120000_000_0", Timestamp: ts, Type: OpCreateNote, Path: "/vault/Heat.md", Success: true},
		},
	}

	path, err := WriteSession(session)
	if err != nil {
		t.Fatalf("WriteSession() failed: %v", err)
	}
	got, err := ReadSession(path)
	if err != nil {
		t.Fatalf("ReadSession() failed: %v", err)
	}
	if diff := cmp.Diff(session, got); diff != "" {
		t.Errorf("Session mismatch (-want +got):\n%s", diff)
	}
}

func TestLoggingDisabled(t *testing.T) {
	useTempLogDir(t)
	loggingEnabled = false

	if err := StartSession("search", nil, ""); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	if currentSession != nil {
		t.Error("Session should not be created when logging is disabled")
	}

	LogCreateNote("a.md", nil, nil)
	if currentSession != nil {
		t.Error("Operations should not create session when logging disabled")
	}
	if backup, err := Backup("a.md"); backup != "" || err != nil {
		t.Errorf("Backup() = %q, %v; want no-op", backup, err)
	}
}

func TestBackup(t *testing.T) {
	dir := useTempLogDir(t)
	_ = StartSession("search", nil, "")

	note := filepath.Join(t.TempDir(), "Heat.md")
	if err := os.WriteFile(note, []byte("old content"), 0644); err != nil {
		t.Fatal(err)
	}

	backup, err := Backup(note)
	if err != nil {
		t.Fatalf("Backup() failed: %v", err)
	}
	if filepath.Dir(filepath.Dir(backup)) != filepath.Join(dir, "backups") {
		t.Errorf("backup stored at %s", backup)
	}
	data, _ := os.ReadFile(backup)
	if string(data) != "old content" {
		t.Errorf("backup content = %q", data)
	}

	missing, err := Backup(filepath.Join(t.TempDir(), "nope.md"))
	if missing != "" || err != nil {
		t.Errorf("Backup(missing) = %q, %v", missing, err)
	}
}

func TestInitializeCleansOldLogs(t *testing.T) {
	dir := useTempLogDir(t)

	old := filepath.Join(dir, "20200101_000000_000.json")
	fresh := filepath.Join(dir, "20990101_000000_000.json")
	oldBackups := filepath.Join(dir, "backups", "20200101_000000_000")
	for _, f := range []string{old, fresh} {
		if err := os.WriteFile(f, []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	_ = os.MkdirAll(oldBackups, 0755)
	past := time.Now().AddDate(0, 0, -40)
	_ = os.Chtimes(old, past, past)

	if err := Initialize(true, 30); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("old log should be removed")
	}
	if _, err := os.Stat(oldBackups); !os.IsNotExist(err) {
		t.Error("old backups should be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("recent log should be kept")
	}

	if err := Initialize(false, 30); err != nil {
		t.Fatalf("Initialize(false) failed: %v", err)
	}
	if loggingEnabled {
		t.Error("Logging should be disabled after Initialize(false, 30)")
	}
}

func TestEndSessionWithNilSession(t *testing.T) {
	useTempLogDir(t)
	currentSession = nil
	if err := EndSession(); err != nil {
		t.Errorf("EndSession() with nil session error = %v", err)
	}
}

func TestOperationIDsAreUnique(t *testing.T) {
	useTempLogDir(t)
	if err := StartSession("search", nil, ""); err != nil {
		t.Fatal(err)
	}
	LogCreateNote("/vault/Movies/Heat.md", []byte("a"), nil)
	LogSavePoster("/vault/Posters/Heat.jpg", "", []byte("b"), nil)

	ops := currentSession.Operations
	if ops[0].ID == ops[1].ID {
		t.Errorf("duplicate operation id %q", ops[0].ID)
	}
	for _, op := range ops {
		if _, err := uuid.Parse(op.ID); err != nil {
			t.Errorf("operation id %q: %v", op.ID, err)
		}
	}
}
