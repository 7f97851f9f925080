package curves

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/TheCacophonyProject/battery-runtime/battery"
	"github.com/google/go-cmp/cmp"
	"github.com/rjeczalik/notify"
	"github.com/sirupsen/logrus"
)

// Store holds the current reference curve table. Tables are immutable, so a reload swaps in a
// new table and estimates already running keep the table they started with.
type Store struct {
	table atomic.Pointer[Table]
}

// NewStore returns a store holding t.
func NewStore(t *Table) *Store {
	s := &Store{}
	s.table.Store(t)
	return s
}

// Table returns the current table.
func (s *Store) Table() *Table {
	return s.table.Load()
}

// Swap replaces the current table and returns the previous one.
func (s *Store) Swap(t *Table) *Table {
	return s.table.Swap(t)
}

// Curve implements battery.CurveProvider using the current table.
func (s *Store) Curve(chemistry battery.Chemistry, currentLimitMA float64) ([]battery.CurvePoint, error) {
	return s.Table().Curve(chemistry, currentLimitMA)
}

// Reload loads path and swaps it in if it parses. Returns true if the table changed.
func (s *Store) Reload(path string, log logrus.FieldLogger) (bool, error) {
	t, err := Load(path)
	if err != nil {
		return false, err
	}
	old := s.Table()
	if old != nil && old.Checksum() == t.Checksum() && cmp.Equal(old.Rows(), t.Rows()) {
		log.Info("No changes detected in reference curves.")
		return false, nil
	}
	if old != nil {
		log.Debug("Reference curve key diff:", cmp.Diff(old.Keys(), t.Keys()))
		log.Infof("Reference curves changed, checksum %s -> %s", old.ChecksumString(), t.ChecksumString())
	}
	s.Swap(t)
	return true, nil
}

// Watch reloads the curve file at path whenever it is written or replaced, until ctx is done.
// A file that fails to load is logged and the current table is kept.
func (s *Store) Watch(ctx context.Context, path string, log logrus.FieldLogger) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	// Watch the directory so editors that replace the file by renaming are picked up.
	fsEvents := make(chan notify.EventInfo, 1)
	if err := notify.Watch(filepath.Dir(abs), fsEvents, notify.Write, notify.Create, notify.Rename); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	defer notify.Stop(fsEvents)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ei := <-fsEvents:
			if filepath.Clean(ei.Path()) != abs {
				continue
			}
			log.Debugf("Reference curve file event: %s", ei.Event())
			if _, err := s.Reload(abs, log); err != nil {
				log.Error("error reloading reference curves:", err)
			}
		}
	}
}
