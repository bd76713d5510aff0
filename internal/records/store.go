package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// ErrInvalidGuild is returned for guild ids that cannot name a file.
var ErrInvalidGuild = errors.New("invalid guild id")

// Store persists Records as <dir>/<guild>_loot_records.json.
//
// A Store is safe for concurrent use. All access to one guild goes through
// that guild's mutex, so concurrent Updates never lose writes.
type Store struct {
	dir string
	log zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a Store rooted at dir. The directory is created on the
// first write.
func NewStore(dir string, logger zerolog.Logger) *Store {
	return &Store{dir: dir, log: logger, locks: make(map[string]*sync.Mutex)}
}

// Path returns the file that holds a guild's records.
func (s *Store) Path(guild string) string {
	return filepath.Join(s.dir, guild+"_loot_records.json")
}

func (s *Store) lock(guild string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[guild]
	if !ok {
		l = &sync.Mutex{}
		s.locks[guild] = l
	}
	return l
}

func validGuild(guild string) error {
	if guild == "" || guild == "." || guild == ".." || strings.ContainsAny(guild, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidGuild, guild)
	}
	return nil
}

// Load returns a snapshot of a guild's records. A guild without a file has
// empty records.
func (s *Store) Load(guild string) (Records, error) {
	if err := validGuild(guild); err != nil {
		return nil, err
	}
	l := s.lock(guild)
	l.Lock()
	defer l.Unlock()

	return s.read(guild)
}

// Update runs fn on a guild's records and saves them if fn succeeds.
// The whole cycle holds the guild lock.
func (s *Store) Update(guild string, fn func(Records) error) error {
	if err := validGuild(guild); err != nil {
		return err
	}
	l := s.lock(guild)
	l.Lock()
	defer l.Unlock()

	recs, err := s.read(guild)
	if err != nil {
		return err
	}
	if err := fn(recs); err != nil {
		return err
	}
	return s.write(guild, recs)
}

// read loads a guild file. Corrupt files are logged and treated as empty
// so one bad write cannot lock a guild out of the contest.
func (s *Store) read(guild string) (Records, error) {
	path := s.Path(guild)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Records{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	recs := Records{}
	if err := json.Unmarshal(data, &recs); err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("corrupt records file, starting empty")
		return Records{}, nil
	}
	for key, p := range recs {
		if p == nil {
			delete(recs, key)
		}
	}
	return recs, nil
}

// write replaces a guild file atomically.
func (s *Store) write(guild string, recs Records) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create records directory: %w", err)
	}

	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, guild+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path(guild)); err != nil {
		return fmt.Errorf("failed to replace records: %w", err)
	}

	s.log.Debug().Str("guild", guild).Int("players", len(recs)).Msg("records saved")
	return nil
}
