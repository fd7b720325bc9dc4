package log

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type UndoResult struct {
	Operation OperationLog
	Success   bool
	Error     error
}

// UndoOperation reverts a single operation. Files edited since they were
// written are left alone.
func UndoOperation(op OperationLog) UndoResult {
	result := UndoResult{Operation: op}

	if op.Path == "" {
		result.Error = fmt.Errorf("cannot undo %s: path missing", op.Type)
		return result
	}

	switch op.Type {
	case OpCreateNote, OpSavePoster, OpOverwriteNote:
	default:
		result.Error = fmt.Errorf("unknown operation type: %s", op.Type)
		return result
	}

	data, err := os.ReadFile(op.Path)
	if os.IsNotExist(err) {
		if op.BackupPath == "" {
			// Already removed
			result.Success = true
			return result
		}
	} else if err != nil {
		result.Error = fmt.Errorf("failed to read %s: %w", op.Path, err)
		return result
	} else if op.Checksum != "" && checksum(data) != op.Checksum {
		result.Error = fmt.Errorf("cannot undo %s: %s was modified afterwards", op.Type, op.Path)
		return result
	}

	if op.BackupPath != "" {
		if err := restore(op.BackupPath, op.Path); err != nil {
			result.Error = err
			return result
		}
		result.Success = true
		return result
	}

	if op.Type == OpOverwriteNote {
		result.Error = fmt.Errorf("cannot undo overwrite of %s: no backup recorded", op.Path)
		return result
	}

	if err := os.Remove(op.Path); err != nil {
		result.Error = fmt.Errorf("failed to remove %s: %w", op.Path, err)
		return result
	}
	result.Success = true
	return result
}

func restore(backup, path string) error {
	data, err := os.ReadFile(backup)
	if err != nil {
		return fmt.Errorf("failed to read backup %s: %w", backup, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to recreate directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to restore %s: %w", path, err)
	}
	return nil
}

func UndoSession(session *LogSession) (successful int, failed int, errs []error) {
	// Process operations in reverse order
	for i := len(session.Operations) - 1; i >= 0; i-- {
		op := session.Operations[i]

		// Only undo successful operations
		if !op.Success {
			continue
		}

		result := UndoOperation(op)
		if result.Success {
			successful++
		} else {
			failed++
			if result.Error != nil {
				errs = append(errs, result.Error)
			}
		}
	}

	return successful, failed, errs
}

// ErrNoSessions is returned when there is nothing to undo.
var ErrNoSessions = errors.New("no sessions found")

// FindLatestSession returns the newest session that has not been undone.
func FindLatestSession() (*LogSession, string, error) {
	files, err := sessionFiles()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read sessions: %w", err)
	}
	for _, file := range files {
		session, err := ReadSession(file)
		if err != nil || session.Metadata.Undone {
			continue
		}
		return session, file, nil
	}
	return nil, "", ErrNoSessions
}

// MarkUndone flags the session stored at path as undone.
func MarkUndone(session *LogSession, path string) error {
	session.Metadata.Undone = true
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to update log file: %w", err)
	}
	return nil
}

type SessionSummary struct {
	Session      *LogSession
	FilePath     string
	RelativeTime string
	Icon         string
}

func GetSessionSummaries() ([]SessionSummary, error) {
	files, err := sessionFiles()
	if err != nil {
		return nil, err
	}

	summaries := make([]SessionSummary, 0, len(files))
	for _, file := range files {
		session, err := ReadSession(file)
		if err != nil {
			continue
		}

		summaries = append(summaries, SessionSummary{
			Session:      session,
			FilePath:     file,
			RelativeTime: formatRelativeTime(session.Metadata.Timestamp),
			Icon:         getCommandIcon(session.Metadata.CommandArgs),
		})
	}

	return summaries, nil
}

func formatRelativeTime(t time.Time) string {
	duration := time.Since(t)
	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		mins := int(duration.Minutes())
		return fmt.Sprintf("%d minute%s ago", mins, plural(mins))
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func getCommandIcon(args []string) string {
	if len(args) == 0 {
		return "❓"
	}

	for _, arg := range args[1:] {
		if arg == "--series" || arg == "-s" {
			return "📺"
		}
	}
	switch args[0] {
	case "search":
		return "🎬"
	case "undo":
		return "↩️"
	default:
		return "📝"
	}
}
