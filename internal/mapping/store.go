package mapping

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"apsconnect/pkg/logging"
)

const formatVersion = "1.0"

// Entry is one origin-to-target mapping.
type Entry struct {
	TargetID    string `json:"target_id"`
	ElementType string `json:"element_type,omitempty"`

	// Extra carries caller-provided metadata, e.g. the origin system's
	// numeric element ID or category.
	Extra map[string]string `json:"extra,omitempty"`

	CreatedDate time.Time `json:"created_date"`
	LastUpdated time.Time `json:"last_updated"`
}

// Metadata describes the mapping file as a whole.
type Metadata struct {
	Version       string    `json:"version"`
	CreatedDate   time.Time `json:"created_date"`
	LastUpdated   time.Time `json:"last_updated"`
	TotalMappings int       `json:"total_mappings"`
}

// Statistics summarizes the store contents for status output.
type Statistics struct {
	TotalMappings int            `json:"total_mappings"`
	ElementTypes  map[string]int `json:"element_types"`
	FilePath      string         `json:"file_path"`
	LastUpdated   time.Time      `json:"last_updated"`
}

type fileFormat struct {
	Mappings map[string]Entry `json:"mappings"`
	Metadata Metadata         `json:"metadata"`
}

// Store is the JSON-file-backed mapping store. All methods are safe for
// concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
	data fileFormat
	now  func() time.Time
}

// NewStore opens the mapping file at path, creating an empty store if the
// file does not exist. A malformed file is an error rather than a silent
// reset so existing mappings are never thrown away.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path: path,
		now:  time.Now,
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		now := s.now()
		s.data = fileFormat{
			Mappings: map[string]Entry{},
			Metadata: Metadata{
				Version:     formatVersion,
				CreatedDate: now,
				LastUpdated: now,
			},
		}
		logging.Debug("Mapping", "no mapping file at %s, starting empty", path)
	case err != nil:
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, &s.data); err != nil {
			return nil, fmt.Errorf("malformed mapping file %s: %w", path, err)
		}
		if s.data.Mappings == nil {
			s.data.Mappings = map[string]Entry{}
		}
		logging.Debug("Mapping", "loaded %d mappings from %s", len(s.data.Mappings), path)
	}

	return s, nil
}

// ValidateOriginGUID checks that a string is an origin element identifier:
// either a plain UUID, or a UUID with the 8-hex-digit suffix some origin
// systems append to their unique IDs.
func ValidateOriginGUID(guid string) error {
	candidate := guid
	if len(guid) == 45 && guid[36] == '-' {
		candidate = guid[:36]
	}
	if _, err := uuid.Parse(candidate); err != nil {
		return fmt.Errorf("invalid origin GUID %q: %w", guid, err)
	}
	return nil
}

// Add inserts or updates the mapping for an origin GUID. Updating an
// existing entry preserves its creation date.
func (s *Store) Add(originGUID, targetID, elementType string, extra map[string]string) error {
	if err := ValidateOriginGUID(originGUID); err != nil {
		return err
	}
	if targetID == "" {
		return fmt.Errorf("target ID must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry := Entry{
		TargetID:    targetID,
		ElementType: elementType,
		Extra:       extra,
		CreatedDate: now,
		LastUpdated: now,
	}
	if prev, ok := s.data.Mappings[originGUID]; ok {
		entry.CreatedDate = prev.CreatedDate
	}
	s.data.Mappings[originGUID] = entry

	return s.save()
}

// TargetID resolves an origin GUID to its target ID.
func (s *Store) TargetID(originGUID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.data.Mappings[originGUID]
	if !ok {
		return "", false
	}
	return entry.TargetID, true
}

// OriginGUID resolves a target ID back to its origin GUID. When several
// GUIDs map to the same target the lexicographically smallest wins, so
// repeated lookups are deterministic.
func (s *Store) OriginGUID(targetID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found []string
	for guid, entry := range s.data.Mappings {
		if entry.TargetID == targetID {
			found = append(found, guid)
		}
	}
	if len(found) == 0 {
		return "", false
	}
	sort.Strings(found)
	return found[0], true
}

// Info returns the full entry for an origin GUID.
func (s *Store) Info(originGUID string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.data.Mappings[originGUID]
	return entry, ok
}

// All returns a copy of every mapping.
func (s *Store) All() map[string]Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]Entry, len(s.data.Mappings))
	for guid, entry := range s.data.Mappings {
		out[guid] = entry
	}
	return out
}

// Remove deletes the mapping for an origin GUID. Removing an absent GUID
// reports false without touching the file.
func (s *Store) Remove(originGUID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Mappings[originGUID]; !ok {
		return false, nil
	}
	delete(s.data.Mappings, originGUID)
	return true, s.save()
}

// Clear removes every mapping.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Mappings = map[string]Entry{}
	return s.save()
}

// Stats summarizes the store.
func (s *Store) Stats() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	types := map[string]int{}
	for _, entry := range s.data.Mappings {
		name := entry.ElementType
		if name == "" {
			name = "Unknown"
		}
		types[name]++
	}

	return Statistics{
		TotalMappings: len(s.data.Mappings),
		ElementTypes:  types,
		FilePath:      s.path,
		LastUpdated:   s.data.Metadata.LastUpdated,
	}
}

// ExportCSV writes all mappings to a CSV file. An empty path defaults to
// the mapping file's path with a .csv extension. Returns the path written.
func (s *Store) ExportCSV(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if path == "" {
		path = strings.TrimSuffix(s.path, filepath.Ext(s.path)) + ".csv"
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"origin_guid", "target_id", "element_type", "created_date", "last_updated"}); err != nil {
		return "", err
	}

	guids := make([]string, 0, len(s.data.Mappings))
	for guid := range s.data.Mappings {
		guids = append(guids, guid)
	}
	sort.Strings(guids)

	for _, guid := range guids {
		entry := s.data.Mappings[guid]
		record := []string{
			guid,
			entry.TargetID,
			entry.ElementType,
			entry.CreatedDate.Format(time.RFC3339),
			entry.LastUpdated.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}

// save flushes the store to disk. Caller holds the mutex.
func (s *Store) save() error {
	s.data.Metadata.LastUpdated = s.now()
	s.data.Metadata.TotalMappings = len(s.data.Mappings)
	if s.data.Metadata.Version == "" {
		s.data.Metadata.Version = formatVersion
	}

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode mapping file: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create mapping directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write mapping file %s: %w", s.path, err)
	}
	return nil
}
