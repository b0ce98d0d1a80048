package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"birthday_notification_bot/internal/domain/birthday"
	"birthday_notification_bot/internal/domain/guild"
	"birthday_notification_bot/internal/infra/logger"
)

var testLogger = logger.Discard()

type fakeBirthdayRepo struct {
	mu        sync.Mutex
	records   map[string]*birthday.Birthday
	upserts   int
	listErr   error
	upsertErr error
}

func newFakeBirthdayRepo(records ...*birthday.Birthday) *fakeBirthdayRepo {
	r := &fakeBirthdayRepo{records: make(map[string]*birthday.Birthday)}
	for _, rec := range records {
		r.records[rec.UserID] = rec
	}
	return r
}

func (r *fakeBirthdayRepo) Upsert(_ context.Context, b *birthday.Birthday) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserts++
	cp := *b
	r.records[b.UserID] = &cp
	return nil
}

func (r *fakeBirthdayRepo) Get(_ context.Context, userID string) (*birthday.Birthday, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID]
	if !ok {
		return nil, birthday.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeBirthdayRepo) ListMatching(_ context.Context, month time.Month, day int) ([]*birthday.Birthday, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*birthday.Birthday
	for _, rec := range r.records {
		if rec.Date.Month() == month && rec.Date.Day() == day {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

type fakeGuildRepo struct {
	mu      sync.Mutex
	targets map[string]string
	writes  int
	getErr  map[string]error
}

func newFakeGuildRepo() *fakeGuildRepo {
	return &fakeGuildRepo{targets: make(map[string]string), getErr: make(map[string]error)}
}

func (r *fakeGuildRepo) SetTarget(_ context.Context, guildID, targetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	r.targets[guildID] = targetID
	return nil
}

func (r *fakeGuildRepo) ClearTarget(_ context.Context, guildID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	delete(r.targets, guildID)
	return nil
}

func (r *fakeGuildRepo) Get(_ context.Context, guildID string) (*guild.Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.getErr[guildID]; err != nil {
		return nil, err
	}
	target, ok := r.targets[guildID]
	if !ok {
		return nil, guild.ErrNotConfigured
	}
	return guild.NewConfig(guildID, target)
}

func (r *fakeGuildRepo) ListGuildIDs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.targets))
	for id := range r.targets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type dispatchCall struct {
	GuildID  string
	TargetID string
	UserID   string
}

// fakeDispatcher records calls and returns errs[userID] for that user.
type fakeDispatcher struct {
	mu    sync.Mutex
	calls []dispatchCall
	errs  map[string]error
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{errs: make(map[string]error)}
}

func (d *fakeDispatcher) Announce(_ context.Context, guildID, targetID, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, dispatchCall{GuildID: guildID, TargetID: targetID, UserID: userID})
	return d.errs[userID]
}

func (d *fakeDispatcher) Calls() []dispatchCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]dispatchCall, len(d.calls))
	copy(out, d.calls)
	return out
}
