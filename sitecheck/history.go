package sitecheck

import (
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/sitecheck/sitecheck/internal/history"
)

// HistoryStore records completed runs in SQLite.
type HistoryStore = history.Store

// HistoryRun is one recorded run.
type HistoryRun = history.Run

// OpenHistory opens (or creates) the run history database at path.
func OpenHistory(path string) (*HistoryStore, error) {
	return history.Open(path)
}
