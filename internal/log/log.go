package log

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type OperationType string

const (
	OpCreateNote    OperationType = "create_note"
	OpOverwriteNote OperationType = "overwrite_note"
	OpSavePoster    OperationType = "save_poster"
)

type OperationLog struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	Type       OperationType `json:"type"`
	Path       string        `json:"path"`
	BackupPath string        `json:"backup_path,omitempty"` // prior content of an overwritten file
	Checksum   string        `json:"checksum,omitempty"`    // sha256 of what was written
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
}

type SessionMetadata struct {
	CommandArgs   []string  `json:"command_args"`
	WorkingDir    string    `json:"working_dir"`
	Vault         string    `json:"vault,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	SessionID     string    `json:"session_id"`
	TotalOps      int       `json:"total_operations"`
	SuccessfulOps int       `json:"successful_operations"`
	FailedOps     int       `json:"failed_operations"`
	Undone        bool      `json:"undone,omitempty"`
}

type LogSession struct {
	Metadata   SessionMetadata `json:"metadata"`
	Operations []OperationLog  `json:"operations"`
}

// Global singleton session manager
var (
	currentSession  *LogSession
	sessionMutex    sync.Mutex
	loggingEnabled  = true
	baseDirOverride string
)

// SetBaseDir points the log directory somewhere other than
// ~/.moviegrabber/logs. An empty dir restores the default.
func SetBaseDir(dir string) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()
	baseDirOverride = dir
}

// LogDir returns the directory session files are written to.
func LogDir() (string, error) {
	if baseDirOverride != "" {
		return baseDirOverride, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".moviegrabber", "logs"), nil
}

// StartSession initializes a new logging session
func StartSession(command string, args []string, vault string) error {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	if !loggingEnabled {
		return nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	now := time.Now()
	sessionID := fmt.Sprintf("%s_%03d", now.Format("20060102_150405"), now.Nanosecond()/1000000)

	currentSession = &LogSession{
		Metadata: SessionMetadata{
			CommandArgs: append([]string{command}, args...),
			WorkingDir:  wd,
			Vault:       vault,
			Timestamp:   now,
			SessionID:   sessionID,
		},
		Operations: []OperationLog{},
	}

	return nil
}

// EndSession saves the current session to disk. Sessions without any
// operation are dropped.
func EndSession() error {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	if !loggingEnabled || currentSession == nil {
		return nil
	}

	defer func() { currentSession = nil }()
	if len(currentSession.Operations) == 0 {
		return nil
	}

	updateStats()
	_, err := WriteSession(currentSession)
	return err
}

// Active reports whether operations are currently being recorded.
func Active() bool {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()
	return loggingEnabled && currentSession != nil
}

// LogCreateNote logs the creation of a note
func LogCreateNote(path string, content []byte, err error) {
	LogOperation(OpCreateNote, path, "", content, err)
}

// LogOverwriteNote logs an overwrite; backup holds the prior content
func LogOverwriteNote(path, backup string, content []byte, err error) {
	LogOperation(OpOverwriteNote, path, backup, content, err)
}

// LogSavePoster logs a downloaded poster
func LogSavePoster(path, backup string, content []byte, err error) {
	LogOperation(OpSavePoster, path, backup, content, err)
}

// LogOperation logs a generic operation to the current session
func LogOperation(opType OperationType, path, backup string, content []byte, err error) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	if !loggingEnabled || currentSession == nil {
		return
	}

	op := OperationLog{
		ID:         uuid.NewString(),
		Timestamp:  time.Now(),
		Type:       opType,
		Path:       path,
		BackupPath: backup,
		Success:    err == nil,
	}
	if err != nil {
		op.Error = err.Error()
	} else if content != nil {
		op.Checksum = checksum(content)
	}

	currentSession.Operations = append(currentSession.Operations, op)
}

// Backup copies the file at path into the session's backup directory and
// returns the copy's location. Nothing is copied, and "" is returned, when
// logging is off or path does not exist.
func Backup(path string) (string, error) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	if !loggingEnabled || currentSession == nil {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s for backup: %w", path, err)
	}

	logDir, err := LogDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(logDir, "backups", currentSession.Metadata.SessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	target := filepath.Join(dir, fmt.Sprintf("%d_%s", len(currentSession.Operations), filepath.Base(path)))
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return target, nil
}

// updateStats updates the session statistics
func updateStats() {
	if currentSession == nil {
		return
	}

	successful := 0
	failed := 0
	for _, op := range currentSession.Operations {
		if op.Success {
			successful++
		} else {
			failed++
		}
	}

	currentSession.Metadata.TotalOps = len(currentSession.Operations)
	currentSession.Metadata.SuccessfulOps = successful
	currentSession.Metadata.FailedOps = failed
}

// Initialize sets up the logging system with the given configuration
func Initialize(enabled bool, retentionDays int) error {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	loggingEnabled = enabled
	if enabled && retentionDays > 0 {
		return cleanupOldLogsUnsafe(retentionDays)
	}
	return nil
}

func sessionPath(session *LogSession) (string, error) {
	logDir, err := LogDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	return filepath.Join(logDir, session.Metadata.SessionID+".json"), nil
}

// WriteSession writes session to its file in the log directory and returns
// the path.
func WriteSession(session *LogSession) (string, error) {
	if session == nil {
		return "", nil
	}

	logPath, err := sessionPath(session)
	if err != nil {
		return "", fmt.Errorf("failed to get log path: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(logPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write log file: %w", err)
	}
	return logPath, nil
}

func ReadSession(logPath string) (*LogSession, error) {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	var session LogSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// sessionFiles returns the session files, newest first.
func sessionFiles() ([]string, error) {
	logDir, err := LogDir()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(logDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}
	// Names start with the timestamp.
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}

func ReadSessions(limit int) ([]*LogSession, error) {
	files, err := sessionFiles()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}

	sessions := make([]*LogSession, 0, len(files))
	for _, file := range files {
		session, err := ReadSession(file)
		if err != nil {
			// Skip corrupted files
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// cleanupOldLogsUnsafe performs cleanup without acquiring mutex (assumes caller holds it)
func cleanupOldLogsUnsafe(retentionDays int) error {
	files, err := sessionFiles()
	if err != nil {
		return err
	}
	logDir, err := LogDir()
	if err != nil {
		return err
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	var firstErr error
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		id := strings.TrimSuffix(filepath.Base(file), ".json")
		if err := os.Remove(file); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to remove old log file %s: %w", file, err)
			}
			continue
		}
		_ = os.RemoveAll(filepath.Join(logDir, "backups", id))
	}
	return firstErr
}

func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
