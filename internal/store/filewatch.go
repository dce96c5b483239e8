package store

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tartampluch/go-dialer/internal/config"
)

// watchFile wakes every watcher when the database file or its WAL is
// written, so writes made by other processes reach the live views.
// Writes made through this store notify directly and are also seen here;
// the extra re-query is cheap and the watchers coalesce it.
func (s *SQLite) watchFile(path string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrFileWatch, err)
	}
	// The WAL file comes and goes; watching the directory sees its creation.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("%s: %w", config.ErrFileWatch, err)
	}

	db := filepath.Base(path)
	wal := db + config.SQLiteWALSuffix
	s.fileWatcher = fw

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		var debounce *time.Timer
		defer func() {
			if debounce != nil {
				debounce.Stop()
			}
		}()

		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if name := filepath.Base(ev.Name); name != db && name != wal {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if debounce == nil {
					debounce = time.AfterFunc(config.FileWatchDebounce, func() {
						s.log.Debug(config.MsgExternalWrite, config.LogKeyFile, path)
						s.changed()
					})
				} else {
					debounce.Reset(config.FileWatchDebounce)
				}

			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				s.log.Warn(config.MsgFileWatchError, config.LogKeyError, err)
			}
		}
	}()
	return nil
}
