package importer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajharbinger/card-recommender/internal/repository"
)

func TestParseSources(t *testing.T) {
	sources := ParseSources([]string{
		"https://a.example/cards|Bank A",
		" https://b.example/cards ",
		"",
		"|Orphan issuer",
	})

	assert.Equal(t, []Source{
		{URL: "https://a.example/cards", Issuer: "Bank A"},
		{URL: "https://b.example/cards"},
	}, sources)
}

func TestPipeline_RunOnce(t *testing.T) {
	svc, mem := newTestService(&fakeFetcher{pages: map[string]string{pageURL: catalogPage}})
	pipeline := NewPipeline(svc)

	config := DefaultPipelineConfig()
	config.Sources = []Source{
		{URL: pageURL, Issuer: "Example Bank"},
		{URL: "https://bank.example/missing", Issuer: "Example Bank"},
	}

	assert.Nil(t, pipeline.LastCycle())
	stats := pipeline.RunOnce(context.Background(), config)

	assert.Equal(t, 2, stats.Sources)
	assert.Equal(t, 1, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 2, stats.Stored)
	assert.Equal(t, 2, stats.Rejected)
	assert.Contains(t, stats.Summary(), "stored=2")
	assert.Same(t, stats, pipeline.LastCycle())

	cards, err := mem.List(context.Background(), repository.CatalogQuery{})
	require.NoError(t, err)
	assert.Len(t, cards, 2)
}

func TestPipeline_StartStop(t *testing.T) {
	svc, _ := newTestService(&fakeFetcher{pages: map[string]string{pageURL: catalogPage}})
	pipeline := NewPipeline(svc)

	assert.Error(t, pipeline.Start(PipelineConfig{Interval: time.Minute}))
	assert.Error(t, pipeline.Stop())

	config := PipelineConfig{
		Sources:       []Source{{URL: pageURL, Issuer: "Example Bank"}},
		Interval:      10 * time.Millisecond,
		MaxConcurrent: 1,
	}
	require.NoError(t, pipeline.Start(config))
	assert.True(t, pipeline.IsRunning())
	assert.Error(t, pipeline.Start(config))

	assert.Eventually(t, func() bool {
		last := pipeline.LastCycle()
		return last != nil && last.Succeeded == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, pipeline.Stop())
	assert.False(t, pipeline.IsRunning())
}
