package history

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/dalfonso89/currency-converter/internal/apperrors"
	"github.com/dalfonso89/currency-converter/internal/logger"
	"github.com/dalfonso89/currency-converter/internal/models"
)

// DefaultLimit is the number of conversions kept when no limit is configured.
const DefaultLimit = 10

// Store keeps the most recent conversions in memory and mirrors them to a
// JSON file.
type Store struct {
	path   string
	limit  int
	logger *logger.Logger

	mu      sync.Mutex
	records []models.ConversionRecord

	// persistMu orders writes so the newest snapshot always lands last
	persistMu sync.Mutex
}

// NewStore creates an empty store backed by path. Call Load to read the
// existing file.
func NewStore(path string, limit int, logger *logger.Logger) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		path:    path,
		limit:   limit,
		logger:  logger,
		records: []models.ConversionRecord{},
	}
}

// Load replaces the in-memory history with the file contents. A missing or
// malformed file yields an empty history.
func (store *Store) Load() {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.records = []models.ConversionRecord{}

	data, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			store.logger.Debugf("No history file at %s, starting empty", store.path)
		} else {
			store.logger.Warnf("Could not read history file %s: %v", store.path, err)
		}
		return
	}

	var document models.HistoryDocument
	if err := json.Unmarshal(data, &document); err != nil {
		store.logger.Warnf("History file %s is malformed, starting empty: %v", store.path, err)
		return
	}

	if document.Conversions != nil {
		store.records = document.Conversions
	}
	store.trim()
	store.logger.Debugf("Loaded %d conversions from %s", len(store.records), store.path)
}

// Append adds record to the history, evicting the oldest entries beyond the limit.
func (store *Store) Append(record models.ConversionRecord) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.records = append(store.records, record)
	store.trim()
}

// Persist writes the full history to disk. The file is replaced atomically,
// so on failure the previous content stays intact.
func (store *Store) Persist() error {
	store.persistMu.Lock()
	defer store.persistMu.Unlock()

	store.mu.Lock()
	data, err := json.MarshalIndent(models.HistoryDocument{Conversions: store.records}, "", "  ")
	store.mu.Unlock()
	if err != nil {
		return apperrors.New(apperrors.ErrorTypePersistenceUnavailable, "could not encode history", err)
	}

	if err := writeFileAtomic(store.path, data); err != nil {
		return apperrors.New(apperrors.ErrorTypePersistenceUnavailable, "could not save history", err)
	}
	return nil
}

// Records returns a copy of the history, oldest first.
func (store *Store) Records() []models.ConversionRecord {
	store.mu.Lock()
	defer store.mu.Unlock()

	records := make([]models.ConversionRecord, len(store.records))
	copy(records, store.records)
	return records
}

// Recent returns a copy of the history, most recent first.
func (store *Store) Recent() []models.ConversionRecord {
	store.mu.Lock()
	defer store.mu.Unlock()

	records := make([]models.ConversionRecord, 0, len(store.records))
	for i := len(store.records) - 1; i >= 0; i-- {
		records = append(records, store.records[i])
	}
	return records
}

// Len returns the number of stored conversions.
func (store *Store) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.records)
}

// Path returns the backing file path.
func (store *Store) Path() string {
	return store.path
}

// trim must be called with mu held.
func (store *Store) trim() {
	if excess := len(store.records) - store.limit; excess > 0 {
		kept := make([]models.ConversionRecord, store.limit)
		copy(kept, store.records[excess:])
		store.records = kept
	}
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
