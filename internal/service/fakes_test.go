package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ugobe007/pythh-sub016/internal/model"
	"github.com/ugobe007/pythh-sub016/internal/repository"
	"github.com/ugobe007/pythh-sub016/internal/urlnorm"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeStartups 内存版 StartupRepository，domain 唯一
type fakeStartups struct {
	mu        sync.Mutex
	rows      map[string]*model.Startup
	insertErr error
	listErr   error
	calls     []string
	updates   map[string]repository.EnrichmentUpdate
}

func newFakeStartups(rows ...*model.Startup) *fakeStartups {
	f := &fakeStartups{rows: map[string]*model.Startup{}, updates: map[string]repository.EnrichmentUpdate{}}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeStartups) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeStartups) first(match func(*model.Startup) bool) (*model.Startup, error) {
	for _, r := range f.rows {
		if r.Status != model.StartupRejected && match(r) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStartups) FindByLinkedInSlug(_ context.Context, slug string) (*model.Startup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("linkedin")
	return f.first(func(s *model.Startup) bool { return s.LinkedInSlug != nil && strings.Contains(*s.LinkedInSlug, slug) })
}

func (f *fakeStartups) FindByCrunchbaseSlug(_ context.Context, slug string) (*model.Startup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("crunchbase")
	return f.first(func(s *model.Startup) bool { return s.CrunchbaseSlug != nil && strings.Contains(*s.CrunchbaseSlug, slug) })
}

func (f *fakeStartups) FindByDomain(_ context.Context, domain string) (*model.Startup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("domain")
	return f.first(func(s *model.Startup) bool { return s.Domain == domain })
}

func (f *fakeStartups) FindByLegacyWebsite(_ context.Context, domain string) (*model.Startup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("legacy")
	variants := urlnorm.LegacyWebsites(domain)
	return f.first(func(s *model.Startup) bool {
		for _, v := range variants {
			if s.Website == v {
				return true
			}
		}
		return strings.Contains(s.Website, domain)
	})
}

func (f *fakeStartups) InsertIfAbsent(_ context.Context, s *model.Startup) (*model.Startup, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("insert")
	if f.insertErr != nil {
		return nil, false, f.insertErr
	}
	for _, r := range f.rows {
		if r.Domain == s.Domain {
			cp := *r
			return &cp, false, nil
		}
	}
	cp := *s
	f.rows[s.ID] = &cp
	return s, true, nil
}

func (f *fakeStartups) GetByID(_ context.Context, id string) (*model.Startup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get")
	r, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStartups) ApplyEnrichment(_ context.Context, id string, upd repository.EnrichmentUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	f.updates[id] = upd
	return nil
}

func (f *fakeStartups) ListLeaderboard(_ context.Context, _ repository.LeaderboardFilter, page, pageSize int) ([]model.Startup, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Startup
	for _, r := range f.rows {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStartups) ListUnenriched(_ context.Context, createdBefore time.Time, maxSweeps, limit int) ([]model.Startup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Startup
	for _, r := range f.rows {
		if r.Status != model.StartupRejected && r.EnrichedAt == nil && r.CreatedAt.Before(createdBefore) && r.EnrichSweeps < maxSweeps {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStartups) MarkSwept(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.EnrichSweeps++
	return nil
}

type fakeEnricher struct {
	res   *model.EnrichResult
	err   error
	calls int
}

func (f *fakeEnricher) Enrich(context.Context, *model.EnrichRequest) (*model.EnrichResult, error) {
	f.calls++
	return f.res, f.err
}

type fakeTrigger struct {
	got []model.MatchGenRequest
	err error
}

func (f *fakeTrigger) TriggerMatches(_ context.Context, req *model.MatchGenRequest) error {
	f.got = append(f.got, *req)
	return f.err
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []*model.Job
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, job *model.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakePublisher) kinds() []model.JobKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.JobKind
	for _, j := range f.jobs {
		out = append(out, j.Kind)
	}
	return out
}

// fakeMatches 内存版 MatchRepository
type fakeMatches struct {
	rows      []model.MatchRow
	unlocked  map[string]bool
	remaining int
	unlockErr error
}

func (f *fakeMatches) ListByStartup(_ context.Context, startupID string, _ int) ([]model.MatchRow, error) {
	var out []model.MatchRow
	for _, r := range f.rows {
		if r.Match.StartupID == startupID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeMatches) GetRow(_ context.Context, startupID, investorID string) (*model.MatchRow, error) {
	for _, r := range f.rows {
		if r.Match.StartupID == startupID && r.Match.InvestorID == investorID {
			cp := r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMatches) RankedTable(ctx context.Context, startupID string, limit, _ int, _ time.Time) ([]model.RankedTableRow, error) {
	rows, _ := f.ListByStartup(ctx, startupID, limit)
	out := make([]model.RankedTableRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.RankedTableRow{MatchRow: r, IsLocked: !f.unlocked[r.Match.InvestorID], RemainingUnlocks: f.remaining})
	}
	return out, nil
}

func (f *fakeMatches) IsUnlocked(_ context.Context, _, investorID string) (bool, error) {
	return f.unlocked[investorID], nil
}

func (f *fakeMatches) Unlock(_ context.Context, _, investorID string, _ int, _ time.Time) (int, error) {
	if f.unlockErr != nil {
		return 0, f.unlockErr
	}
	if f.unlocked == nil {
		f.unlocked = map[string]bool{}
	}
	f.unlocked[investorID] = true
	f.remaining--
	return f.remaining, nil
}

var errStoreDown = errors.New("store unavailable")
