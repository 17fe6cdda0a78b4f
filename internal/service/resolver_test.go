package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugobe007/pythh-sub016/internal/config"
	"github.com/ugobe007/pythh-sub016/internal/model"
)

func resolverCfg() config.ResolverConfig {
	return config.ResolverConfig{
		FallbackGodScore:   45,
		DefaultSector:      "Technology",
		LegacyWebsiteMatch: true,
		CacheSize:          16,
		CacheTTL:           time.Minute,
	}
}

func newResolver(repo *fakeStartups, enr *fakeEnricher, pub *fakePublisher) *ResolverService {
	return NewResolverService(repo, enr, pub, resolverCfg(), quietLogger())
}

func strp(s string) *string { return &s }

func TestResolveExactDomainBeatsLegacy(t *testing.T) {
	exact := &model.Startup{ID: "exact", Domain: "acme.io", Status: model.StartupApproved}
	legacy := &model.Startup{ID: "legacy", Domain: "old-acme", Website: "https://acme.io", Status: model.StartupApproved}
	repo := newFakeStartups(exact, legacy)
	r := newResolver(repo, &fakeEnricher{}, &fakePublisher{})

	res, err := r.Resolve(context.Background(), "https://www.acme.io/pricing", ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, "exact", res.Startup.ID)
	assert.Equal(t, ConfidenceExactDomain, res.Confidence)
	assert.NotContains(t, repo.calls, "legacy")
}

func TestResolveLegacyFallback(t *testing.T) {
	legacy := &model.Startup{ID: "legacy", Domain: "old-acme", Website: "http://www.acme.io/", Status: model.StartupApproved}
	repo := newFakeStartups(legacy)
	r := newResolver(repo, &fakeEnricher{}, &fakePublisher{})

	res, err := r.Resolve(context.Background(), "acme.io", ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, "legacy", res.Startup.ID)
	assert.Equal(t, ConfidenceContainsDomain, res.Confidence)
	assert.Equal(t, []string{"domain", "legacy"}, repo.calls)
}

func TestResolveLegacyDisabled(t *testing.T) {
	legacy := &model.Startup{ID: "legacy", Domain: "old-acme", Website: "https://acme.io", Status: model.StartupApproved}
	repo := newFakeStartups(legacy)
	cfg := resolverCfg()
	cfg.LegacyWebsiteMatch = false
	r := NewResolverService(repo, &fakeEnricher{}, &fakePublisher{}, cfg, quietLogger())

	res, err := r.Resolve(context.Background(), "acme.io", ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, ConfidenceCreated, res.Confidence)
	assert.NotContains(t, repo.calls, "legacy")
	assert.Nil(t, res.Startup.Stage, "临时记录阶段未知")
	assert.Empty(t, res.Startup.StageName())
}

func TestResolveSocialSlugs(t *testing.T) {
	li := &model.Startup{ID: "li", Domain: "acme.io", LinkedInSlug: strp("acme-robotics"), Status: model.StartupApproved}
	cb := &model.Startup{ID: "cb", Domain: "beta.io", CrunchbaseSlug: strp("beta-labs"), Status: model.StartupApproved}
	repo := newFakeStartups(li, cb)
	r := newResolver(repo, &fakeEnricher{}, &fakePublisher{})
	ctx := context.Background()

	res, err := r.Resolve(ctx, "https://www.linkedin.com/company/acme-robotics/about", ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, "li", res.Startup.ID)
	assert.Equal(t, ConfidenceLinkedIn, res.Confidence)

	res, err = r.Resolve(ctx, "crunchbase.com/organization/beta-labs", ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, "cb", res.Startup.ID)
	assert.Equal(t, ConfidenceCrunchbase, res.Confidence)
}

func TestResolveSocialCreatesPseudoDomain(t *testing.T) {
	repo := newFakeStartups()
	pub := &fakePublisher{}
	r := newResolver(repo, &fakeEnricher{}, pub)

	res, err := r.Resolve(context.Background(), "linkedin.com/company/gamma-ai", ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, ConfidenceCreated, res.Confidence)
	assert.Equal(t, "linkedin:gamma-ai", res.Startup.Domain)
	assert.Equal(t, "Gamma Ai", res.Startup.Name)
	require.NotNil(t, res.Startup.LinkedInSlug)
	assert.Equal(t, "gamma-ai", *res.Startup.LinkedInSlug)

	_, err = r.Resolve(context.Background(), "https://linkedin.com/feed", ResolveOptions{})
	assert.ErrorIs(t, err, ErrUnresolvable)
}

func TestResolveInvalidInput(t *testing.T) {
	repo := newFakeStartups()
	r := newResolver(repo, &fakeEnricher{}, &fakePublisher{})
	for _, in := range []string{"", "not a url", "localhost"} {
		_, err := r.Resolve(context.Background(), in, ResolveOptions{})
		assert.ErrorIs(t, err, ErrUnresolvable, in)
	}
	assert.Empty(t, repo.calls)
}

func TestResolveSameDomainTwiceReturnsSameID(t *testing.T) {
	repo := newFakeStartups()
	pub := &fakePublisher{}
	r := newResolver(repo, &fakeEnricher{}, pub)
	ctx := context.Background()

	first, err := r.Resolve(ctx, "https://newco.dev", ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, ConfidenceCreated, first.Confidence)
	assert.Equal(t, "Newco", first.Startup.Name)
	assert.Equal(t, 45.0, first.Startup.GodTotal)
	assert.Equal(t, []string{"Technology"}, first.Startup.SectorList())
	assert.Equal(t, model.StartupApproved, first.Startup.Status)

	second, err := r.Resolve(ctx, "www.NEWCO.dev/", ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, first.Startup.ID, second.Startup.ID)
	assert.Equal(t, ConfidenceExactDomain, second.Confidence)
	assert.Len(t, repo.rows, 1)

	// 异步模式：富化 + 匹配生成各一次
	assert.Equal(t, []model.JobKind{model.JobEnrich, model.JobGenerateMatches}, pub.kinds())
	assert.Equal(t, "https://newco.dev", pub.jobs[0].URL)
	assert.Equal(t, PriorityHigh, pub.jobs[1].Priority)
}

func TestResolveUsesCacheThenRevalidates(t *testing.T) {
	repo := newFakeStartups()
	r := newResolver(repo, &fakeEnricher{}, &fakePublisher{})
	ctx := context.Background()

	created, err := r.Resolve(ctx, "cached.io", ResolveOptions{})
	require.NoError(t, err)

	repo.calls = nil
	res, err := r.Resolve(ctx, "cached.io", ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, created.Startup.ID, res.Startup.ID)
	assert.Equal(t, []string{"get"}, repo.calls)

	// 缓存指向的记录被拒绝后重新走索引查找
	repo.rows[created.Startup.ID].Status = model.StartupRejected
	repo.calls = nil
	_, err = r.Resolve(ctx, "cached.io", ResolveOptions{})
	assert.ErrorIs(t, err, ErrUnresolvable)
	assert.Equal(t, []string{"get", "domain", "legacy", "insert"}, repo.calls)
}

func TestResolveSyncEnrichmentFailureFallsBack(t *testing.T) {
	repo := newFakeStartups()
	enr := &fakeEnricher{err: errors.New("timeout")}
	pub := &fakePublisher{}
	r := newResolver(repo, enr, pub)

	res, err := r.Resolve(context.Background(), "slowco.io", ResolveOptions{WaitForEnrichment: true})
	require.NoError(t, err)
	assert.Equal(t, 1, enr.calls)
	assert.Equal(t, 45.0, res.Startup.GodTotal)
	assert.Nil(t, res.Startup.EnrichedAt)
	// 同步模式不再投递富化任务，只触发匹配生成
	assert.Equal(t, []model.JobKind{model.JobGenerateMatches}, pub.kinds())
}

func TestResolveSyncEnrichmentSuccess(t *testing.T) {
	repo := newFakeStartups()
	yes := true
	funding := 3_500_000.0
	enr := &fakeEnricher{res: &model.EnrichResult{
		GodScore: &model.GodScore{Total: 74, Team: 80},
		Inference: &model.Inference{
			Sectors: []string{"Fintech", "Payments"}, Stage: "Seed",
			HasRevenue: &yes, FundingAmount: &funding, TeamSignals: []string{"ex-Stripe"},
		},
	}}
	r := newResolver(repo, enr, &fakePublisher{})

	res, err := r.Resolve(context.Background(), "payco.io", ResolveOptions{WaitForEnrichment: true})
	require.NoError(t, err)
	st := res.Startup
	assert.Equal(t, 74.0, st.GodTotal)
	assert.Equal(t, 80.0, st.GodTeam)
	assert.Equal(t, []string{"Fintech", "Payments"}, st.SectorList())
	assert.Equal(t, "seed", st.StageName())
	assert.Equal(t, []string{"Has Revenue", "Raised $3.5M", "Strong Team"}, st.SignalLabels())
	assert.NotNil(t, st.EnrichedAt)
}

func TestResolvePersistenceFailureIsFatal(t *testing.T) {
	repo := newFakeStartups()
	repo.insertErr = errStoreDown
	pub := &fakePublisher{}
	r := newResolver(repo, &fakeEnricher{}, pub)

	res, err := r.Resolve(context.Background(), "down.io", ResolveOptions{})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Empty(t, pub.jobs)
}

func TestResolvePublishFailureIsLoggedOnly(t *testing.T) {
	repo := newFakeStartups()
	r := newResolver(repo, &fakeEnricher{}, &fakePublisher{err: errors.New("queue full")})
	res, err := r.Resolve(context.Background(), "busy.io", ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, ConfidenceCreated, res.Confidence)
}
