package discord

import (
	"context"
	"sort"
	"sync"

	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
)

// GuildTracker remembers which guilds the gateway reported as joined. It is
// the guild source for the daily sweep.
type GuildTracker struct {
	mu     sync.RWMutex
	guilds map[snowflake.ID]struct{}
}

func NewGuildTracker() *GuildTracker {
	return &GuildTracker{guilds: make(map[snowflake.ID]struct{})}
}

func (t *GuildTracker) Add(id snowflake.ID) {
	t.mu.Lock()
	t.guilds[id] = struct{}{}
	t.mu.Unlock()
}

func (t *GuildTracker) Remove(id snowflake.ID) {
	t.mu.Lock()
	delete(t.guilds, id)
	t.mu.Unlock()
}

func (t *GuildTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.guilds)
}

// GuildIDs implements app.GuildLister.
func (t *GuildTracker) GuildIDs(_ context.Context) ([]string, error) {
	t.mu.RLock()
	ids := make([]snowflake.ID, 0, len(t.guilds))
	for id := range t.guilds {
		ids = append(ids, id)
	}
	t.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out, nil
}

func (t *GuildTracker) onGuildReady(event *events.GuildReady) { t.Add(event.GuildID) }
func (t *GuildTracker) onGuildJoin(event *events.GuildJoin)   { t.Add(event.GuildID) }
func (t *GuildTracker) onGuildLeave(event *events.GuildLeave) { t.Remove(event.GuildID) }
