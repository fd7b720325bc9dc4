package cmd

import (
	"os"

	"github.com/Digital-Shane/moviegrabber/internal/flow"
	"github.com/Digital-Shane/moviegrabber/internal/log"
	"github.com/Digital-Shane/moviegrabber/internal/note"
	"github.com/hashicorp/go-hclog"
)

// logJournal records flow writes in the operation log using absolute paths.
type logJournal struct {
	store  *note.FS
	logger hclog.Logger
}

var _ flow.Journal = (*logJournal)(nil)

func newLogJournal(store *note.FS, logger hclog.Logger) *logJournal {
	return &logJournal{store: store, logger: logger}
}

func (j *logJournal) abs(path string) string {
	abs, err := j.store.Abs(path)
	if err != nil {
		j.logger.Debug("journal path outside vault", "path", path, "error", err)
		return path
	}
	return abs
}

func (j *logJournal) Backup(path string) (string, error) {
	return log.Backup(j.abs(path))
}

func (j *logJournal) Created(path, content string, err error) {
	log.LogCreateNote(j.abs(path), []byte(content), err)
}

func (j *logJournal) Overwritten(path, backup, content string, err error) {
	log.LogOverwriteNote(j.abs(path), backup, []byte(content), err)
}

func (j *logJournal) PosterSaved(path, backup string, err error) {
	abs := j.abs(path)
	var data []byte
	if err == nil {
		data, _ = os.ReadFile(abs)
	}
	log.LogSavePoster(abs, backup, data, err)
}
