// Package memstore keeps birthdays and guild configs in memory, optionally
// flushing a JSON snapshot to disk after every write.
//
// File layout (one JSON document):
//
//	{"birthdays": {"<user>": "YYYY-MM-DD"}, "guilds": {"<guild>": "<target>"}}
package memstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"birthday_notification_bot/internal/domain/birthday"
	"birthday_notification_bot/internal/domain/guild"
)

const snapshotDateLayout = "2006-01-02"

// Snapshot is the serialisable state of a Store.
type Snapshot struct {
	Birthdays map[string]string `json:"birthdays"`
	Guilds    map[string]string `json:"guilds"`
}

// Store implements birthday.Repository and guild.Repository.
type Store struct {
	path string // empty for a volatile store

	mu        sync.RWMutex
	birthdays map[string]time.Time
	guilds    map[string]string
}

// New returns an empty volatile store.
func New() *Store {
	return &Store{
		birthdays: make(map[string]time.Time),
		guilds:    make(map[string]string),
	}
}

// Open loads path if it exists. A missing file is an empty store; an
// unreadable or corrupt file is an error, never silently empty state.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("storage path is required for file driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	s := New()
	s.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("corrupt storage file %s: %w", path, err)
	}
	if err := s.Restore(snap); err != nil {
		return nil, fmt.Errorf("corrupt storage file %s: %w", path, err)
	}
	return s, nil
}

// Snapshot copies the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Birthdays: make(map[string]string, len(s.birthdays)),
		Guilds:    make(map[string]string, len(s.guilds)),
	}
	for id, d := range s.birthdays {
		snap.Birthdays[id] = d.Format(snapshotDateLayout)
	}
	for id, target := range s.guilds {
		snap.Guilds[id] = target
	}
	return snap
}

// Restore replaces the whole in-memory state with snap. Nothing is changed
// when snap contains an invalid entry.
func (s *Store) Restore(snap Snapshot) error {
	birthdays := make(map[string]time.Time, len(snap.Birthdays))
	for id, raw := range snap.Birthdays {
		d, err := time.Parse(snapshotDateLayout, raw)
		if err != nil {
			return fmt.Errorf("invalid birthday for user %s: %w", id, err)
		}
		birthdays[id] = d
	}
	guilds := make(map[string]string, len(snap.Guilds))
	for id, target := range snap.Guilds {
		if _, err := guild.NewConfig(id, target); err != nil {
			return fmt.Errorf("invalid config for guild %s: %w", id, err)
		}
		guilds[id] = target
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.birthdays = birthdays
	s.guilds = guilds
	return nil
}

// flushLocked writes the snapshot to a temp file and renames it over path,
// so readers never observe a partial write.
func (s *Store) flushLocked() error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.snapshotLocked(), "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write storage snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace storage snapshot: %w", err)
	}
	return nil
}

// --- birthday.Repository ---

func (s *Store) Upsert(_ context.Context, b *birthday.Birthday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.birthdays[b.UserID]
	s.birthdays[b.UserID] = b.Date
	if err := s.flushLocked(); err != nil {
		if had {
			s.birthdays[b.UserID] = prev
		} else {
			delete(s.birthdays, b.UserID)
		}
		return err
	}
	return nil
}

func (s *Store) Get(_ context.Context, userID string) (*birthday.Birthday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.birthdays[userID]
	if !ok {
		return nil, birthday.ErrNotFound
	}
	return birthday.New(userID, d.Year(), d.Month(), d.Day()), nil
}

func (s *Store) ListMatching(_ context.Context, month time.Month, day int) ([]*birthday.Birthday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*birthday.Birthday, 0)
	for id, d := range s.birthdays {
		if d.Month() == month && d.Day() == day {
			out = append(out, birthday.New(id, d.Year(), d.Month(), d.Day()))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// Guilds exposes the guild.Repository half of the store; its Get method
// would otherwise collide with the birthday lookup.
func (s *Store) Guilds() *GuildStore {
	return &GuildStore{s: s}
}

// GuildStore implements guild.Repository on top of a Store.
type GuildStore struct {
	s *Store
}

func (g *GuildStore) SetTarget(_ context.Context, guildID, targetID string) error {
	if _, err := guild.NewConfig(guildID, targetID); err != nil {
		return err
	}
	s := g.s
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.guilds[guildID]
	s.guilds[guildID] = targetID
	if err := s.flushLocked(); err != nil {
		if had {
			s.guilds[guildID] = prev
		} else {
			delete(s.guilds, guildID)
		}
		return err
	}
	return nil
}

func (g *GuildStore) ClearTarget(_ context.Context, guildID string) error {
	s := g.s
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.guilds[guildID]
	if !had {
		return nil
	}
	delete(s.guilds, guildID)
	if err := s.flushLocked(); err != nil {
		s.guilds[guildID] = prev
		return err
	}
	return nil
}

func (g *GuildStore) Get(_ context.Context, guildID string) (*guild.Config, error) {
	g.s.mu.RLock()
	defer g.s.mu.RUnlock()
	target, ok := g.s.guilds[guildID]
	if !ok {
		return nil, guild.ErrNotConfigured
	}
	return guild.NewConfig(guildID, target)
}

func (g *GuildStore) ListGuildIDs(_ context.Context) ([]string, error) {
	g.s.mu.RLock()
	defer g.s.mu.RUnlock()
	ids := make([]string, 0, len(g.s.guilds))
	for id := range g.s.guilds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
