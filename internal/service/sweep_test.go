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

func TestEnrichmentSweepPublishesStaleProvisionals(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	enriched := now.Add(-2 * time.Hour)
	repo := newFakeStartups(
		&model.Startup{ID: "old", Domain: "old.io", Website: "https://old.io", CreatedAt: now.Add(-2 * time.Hour)},
		&model.Startup{ID: "older", Domain: "linkedin:older", Website: "https://linkedin.com/company/older", CreatedAt: now.Add(-3 * time.Hour)},
		&model.Startup{ID: "fresh", Domain: "fresh.io", CreatedAt: now.Add(-time.Minute)},
		&model.Startup{ID: "done", Domain: "done.io", CreatedAt: now.Add(-5 * time.Hour), EnrichedAt: &enriched},
		&model.Startup{ID: "gone", Domain: "gone.io", CreatedAt: now.Add(-5 * time.Hour), Status: model.StartupRejected},
	)
	pub := &fakePublisher{}
	svc := NewEnrichmentSweepService(repo, pub, config.QueueConfig{SweepGrace: 15 * time.Minute, SweepBatch: 10}, quietLogger())
	svc.now = func() time.Time { return now }

	n, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, pub.jobs, 2)
	assert.Equal(t, "older", pub.jobs[0].StartupID)
	assert.Equal(t, "https://linkedin.com/company/older", pub.jobs[0].URL)
	assert.Equal(t, "old", pub.jobs[1].StartupID)
	for _, j := range pub.jobs {
		assert.Equal(t, model.JobEnrich, j.Kind)
	}
}

func TestEnrichmentSweepErrors(t *testing.T) {
	now := time.Now()
	repo := newFakeStartups(&model.Startup{ID: "a", Domain: "a.io", CreatedAt: now.Add(-time.Hour)})
	pub := &fakePublisher{err: errors.New("queue full")}
	svc := NewEnrichmentSweepService(repo, pub, config.QueueConfig{}, quietLogger())

	n, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, repo.rows["a"].EnrichSweeps)

	repo.listErr = errStoreDown
	_, err = svc.Run(context.Background())
	assert.ErrorIs(t, err, errStoreDown)
}

func TestEnrichmentSweepStopsAtMax(t *testing.T) {
	now := time.Now()
	repo := newFakeStartups(
		&model.Startup{ID: "a", Domain: "a.io", CreatedAt: now.Add(-time.Hour)},
		&model.Startup{ID: "b", Domain: "b.io", CreatedAt: now.Add(-2 * time.Hour), EnrichSweeps: 2},
	)
	pub := &fakePublisher{}
	svc := NewEnrichmentSweepService(repo, pub, config.QueueConfig{SweepMax: 2}, quietLogger())

	var published []int
	for i := 0; i < 3; i++ {
		n, err := svc.Run(context.Background())
		require.NoError(t, err)
		published = append(published, n)
	}
	assert.Equal(t, []int{1, 1, 0}, published)
	require.Len(t, pub.jobs, 2)
	for _, j := range pub.jobs {
		assert.Equal(t, "a", j.StartupID)
	}
	assert.Equal(t, 2, repo.rows["a"].EnrichSweeps)
	assert.Equal(t, 2, repo.rows["b"].EnrichSweeps)
}

func TestEnrichmentSweepStartDisabled(t *testing.T) {
	svc := NewEnrichmentSweepService(newFakeStartups(), &fakePublisher{}, config.QueueConfig{}, quietLogger())
	done := make(chan struct{})
	go func() {
		svc.Start(context.Background(), 0)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start 在 interval=0 时应立即返回")
	}
}
