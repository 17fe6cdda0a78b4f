package model

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestGodScoreAcceptsNumberOrObject(t *testing.T) {
	var res EnrichResult
	require.NoError(t, json.Unmarshal([]byte(`{"godScore": 62.5}`), &res))
	require.NotNil(t, res.GodScore)
	assert.Equal(t, 62.5, res.GodScore.Total)
	assert.Nil(t, res.Inference)

	res = EnrichResult{}
	require.NoError(t, json.Unmarshal([]byte(`{"godScore":{"total":71,"team":80,"vision":55},"inference":{"has_revenue":true}}`), &res))
	assert.Equal(t, GodScore{Total: 71, Team: 80, Vision: 55}, *res.GodScore)
	require.NotNil(t, res.Inference.HasRevenue)
	assert.True(t, *res.Inference.HasRevenue)
	assert.Nil(t, res.Inference.HasDemo)
}

func TestStageIndex(t *testing.T) {
	cases := map[string]int{
		"Pre-Seed": 0,
		"pre_seed": 0,
		"seed":     1,
		"SEED":     1,
		"Series A": 2,
		"series_b": 3,
		"seriesc":  4,
		"growth":   -1,
		"":         -1,
	}
	for in, want := range cases {
		assert.Equal(t, want, StageIndex(in), in)
	}
}

func TestStartupJSONColumns(t *testing.T) {
	s := Startup{Sectors: EncodeStrings([]string{"Fintech", "AI"}), Stage: StageOf("Series-A")}
	assert.Equal(t, []string{"Fintech", "AI"}, s.SectorList())
	assert.Equal(t, "series a", s.StageName())
	assert.Nil(t, s.SignalLabels())

	nine := 9
	s.Stage = &nine
	assert.Equal(t, "", s.StageName())

	s.Stage = nil
	assert.Equal(t, "", s.StageName())
	assert.Nil(t, StageOf("growth"))
	require.NotNil(t, StageOf("Pre-Seed"))
	assert.Equal(t, 0, *StageOf("Pre-Seed"))
	assert.JSONEq(t, `[]`, string(EncodeStrings(nil)))
}

func TestInstantColumnsAreZoned(t *testing.T) {
	cache := &sync.Map{}
	cases := []struct {
		model  any
		fields []string
	}{
		{&SignalEvent{}, []string{"CreatedAt"}},
		{&MatchUnlock{}, []string{"UnlockedAt"}},
		{&Startup{}, []string{"CreatedAt", "EnrichedAt"}},
	}
	for _, c := range cases {
		s, err := schema.Parse(c.model, cache, schema.NamingStrategy{})
		require.NoError(t, err)
		for _, name := range c.fields {
			f := s.LookUpField(name)
			require.NotNil(t, f, name)
			assert.Equal(t, schema.DataType("timestamptz"), f.DataType, "%s.%s", s.Name, name)
		}
	}
}
