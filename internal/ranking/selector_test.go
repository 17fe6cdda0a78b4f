package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugobe007/pythh-sub016/internal/model"
)

func seedFintech() StartupContext {
	return StartupContext{Stage: "seed", Sectors: []string{"fintech"}}
}

func anchorFixture() []Candidate {
	return []Candidate{
		{InvestorID: "A", RawScore: 95, Sectors: []string{"ai"}},
		{InvestorID: "B", RawScore: 70, Stages: []string{"seed"}},
		{InvestorID: "C", RawScore: 60, Sectors: []string{"fintech"}},
		{InvestorID: "D", RawScore: 72},
		{InvestorID: "E", RawScore: 50},
	}
}

func ids(rows []RankedMatch) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.InvestorID)
	}
	return out
}

func TestSelectTopAnchorOrder(t *testing.T) {
	got := SelectTop(anchorFixture(), seedFintech())
	require.Len(t, got, 5)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, ids(got))

	wantAnchors := []Anchor{AnchorPrestige, AnchorStageFit, AnchorPortfolio, AnchorVelocity, AnchorBackfill}
	wantConf := []Confidence{ConfidenceHigh, ConfidenceHigh, ConfidenceMed, ConfidenceHigh, ConfidenceMed}
	for i, r := range got {
		assert.Equal(t, i+1, r.Rank)
		assert.Equal(t, wantAnchors[i], r.Anchor, r.InvestorID)
		assert.Equal(t, wantConf[i], r.Confidence, r.InvestorID)
	}
}

func TestSelectTopDeterministicAndUnique(t *testing.T) {
	in := append(anchorFixture(),
		Candidate{InvestorID: "A", RawScore: 40},
		Candidate{InvestorID: "F", RawScore: 72},
		Candidate{InvestorID: "G", RawScore: 10},
	)
	first := SelectTop(in, seedFintech())
	for i := 0; i < 20; i++ {
		assert.Equal(t, ids(first), ids(SelectTop(in, seedFintech())))
	}
	seen := map[string]bool{}
	for _, r := range first {
		assert.False(t, seen[r.InvestorID], "duplicate %s", r.InvestorID)
		seen[r.InvestorID] = true
	}
	// D 与 F 同分，investor_id 升序决定先后
	assert.Equal(t, []string{"A", "B", "C", "D", "F"}, ids(first))
}

func TestSelectTopShortAndEmpty(t *testing.T) {
	assert.Empty(t, SelectTop(nil, seedFintech()))
	assert.NotNil(t, SelectTop(nil, seedFintech()))

	got := SelectTop([]Candidate{{InvestorID: "X", RawScore: 30}, {InvestorID: "Y", RawScore: 20}}, seedFintech())
	assert.Equal(t, []string{"X", "Y"}, ids(got))
	assert.Equal(t, AnchorPrestige, got[0].Anchor)
	assert.Equal(t, AnchorBackfill, got[1].Anchor)
}

func TestSelectTopSkipsUnsatisfiedAnchors(t *testing.T) {
	in := []Candidate{
		{InvestorID: "A", RawScore: 90},
		{InvestorID: "B", RawScore: 40, Stages: []string{"Seed"}},
		{InvestorID: "C", RawScore: 30},
	}
	got := SelectTop(in, seedFintech())
	assert.Equal(t, []string{"A", "B", "C"}, ids(got))
	assert.Equal(t, AnchorStageFit, got[1].Anchor)
	assert.Equal(t, AnchorBackfill, got[2].Anchor)
}

func TestSelectTopUsesCompositeWhenBreakdownPresent(t *testing.T) {
	in := []Candidate{
		{InvestorID: "raw", RawScore: 80},
		{InvestorID: "composite", RawScore: 10, Breakdown: &model.Breakdown{
			SectorFit: 1, StageFit: 1, PortfolioAdjacency: 1, BehaviorSignal: 1, Timing: 1, Confidence: "high",
		}},
	}
	got := SelectTop(in, seedFintech())
	assert.Equal(t, "composite", got[0].InvestorID)
	assert.Equal(t, 100.0, got[0].Score)
}

func TestCompositeScore(t *testing.T) {
	b := model.Breakdown{SectorFit: 0.5, StageFit: 1, PortfolioAdjacency: 0, BehaviorSignal: 0.4, Timing: 0.6}
	// 0.15 + 0.2 + 0 + 0.06 + 0.09 = 0.5
	assert.InDelta(t, 50, CompositeScore(b), 1e-9)

	b.Confidence = "low"
	assert.InDelta(t, 42.5, CompositeScore(b), 1e-9)
	b.Confidence = "HIGH"
	assert.InDelta(t, 55, CompositeScore(b), 1e-9)

	over := model.Breakdown{SectorFit: 3, StageFit: 3, PortfolioAdjacency: 3, BehaviorSignal: 3, Timing: 3, Confidence: "high"}
	assert.Equal(t, 100.0, CompositeScore(over))
	neg := model.Breakdown{SectorFit: -1}
	assert.Equal(t, 0.0, CompositeScore(neg))
}

func TestStageFit(t *testing.T) {
	assert.Equal(t, StageFitStrong, StageFit([]string{"Series A"}, "series a"))
	assert.Equal(t, StageFitGood, StageFit([]string{"pre-seed"}, "seed"))
	assert.Equal(t, StageFitGood, StageFit([]string{"series b"}, "series a"))
	assert.Equal(t, StageFitWeak, StageFit([]string{"series c"}, "seed"))
	assert.Equal(t, StageFitWeak, StageFit([]string{"growth"}, "seed"))
	assert.Equal(t, StageFitWeak, StageFit(nil, "seed"))
	assert.Equal(t, StageFitWeak, StageFit([]string{"seed"}, ""))
}

func TestSectorFitPct(t *testing.T) {
	assert.Equal(t, 50.0, SectorFitPct([]string{"FinTech", "Biotech"}, []string{"fintech infrastructure"}))
	assert.Equal(t, 100.0, SectorFitPct([]string{"ai"}, []string{"AI", "saas"}))
	assert.Equal(t, 0.0, SectorFitPct(nil, []string{"ai"}))
	assert.Equal(t, 0.0, SectorFitPct([]string{"ai", ""}, nil))
}

func TestWhyBullets(t *testing.T) {
	c := Candidate{
		InvestorID:   "X",
		RawScore:     82,
		Sectors:      []string{"Fintech", "Payments", "AI"},
		Stages:       []string{"seed", "series a"},
		CheckSizeMin: 500_000,
		CheckSizeMax: 2_000_000,
		Momentum:     model.MomentumStrong,
	}
	got := WhyBullets(c, StartupContext{Stage: "seed", Sectors: []string{"fintech", "payments"}})
	assert.Equal(t, []string{"Active in Fintech, Payments", "Writes Seed checks", "Typical check $500K–$2M"}, got)

	bare := Candidate{InvestorID: "Y", RawScore: 65, Momentum: model.MomentumStrong}
	assert.Empty(t, WhyBullets(bare, seedFintech()))

	hot := Candidate{InvestorID: "Z", RawScore: 75, Stages: []string{"Series B"}, Momentum: model.MomentumEmerging}
	assert.Equal(t, []string{"Stage focus: Series B", "Deployment momentum is building"}, WhyBullets(hot, seedFintech()))

	noBucket := Candidate{InvestorID: "W", RawScore: 91}
	assert.Equal(t, []string{"High match score (91)"}, WhyBullets(noBucket, seedFintech()))
}

func TestCandidateFromRow(t *testing.T) {
	mom := model.MomentumCooling
	row := model.MatchRow{
		Match: model.Match{InvestorID: "inv-1", MatchScore: 77, MomentumBucket: &mom},
		Investor: model.Investor{
			ID: "inv-1", Name: "Jane", Firm: "Acme Ventures",
			Sectors: model.EncodeStrings([]string{"AI"}), Stages: model.EncodeStrings([]string{"Seed"}),
			CheckSizeMin: 100_000,
		},
	}
	c := CandidateFromRow(row)
	assert.Equal(t, "inv-1", c.InvestorID)
	assert.Equal(t, "Jane", c.Name)
	assert.Equal(t, []string{"AI"}, c.Sectors)
	assert.Equal(t, []string{"Seed"}, c.Stages)
	assert.Equal(t, model.MomentumCooling, c.Momentum)
	assert.Nil(t, c.Breakdown)
	assert.Equal(t, 77.0, c.EffectiveScore())
}

func TestSelectTopUnknownStageSkipsStageFit(t *testing.T) {
	sc := ContextFromStartup(&model.Startup{Sectors: model.EncodeStrings([]string{"fintech"})})
	assert.Empty(t, sc.Stage)

	in := []Candidate{
		{InvestorID: "A", RawScore: 90, Stages: []string{"seed"}},
		{InvestorID: "B", RawScore: 40, Stages: []string{"preseed"}},
		{InvestorID: "C", RawScore: 60, Stages: []string{"series b"}},
	}
	got := SelectTop(in, sc)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"A", "C", "B"}, ids(got))
	assert.Equal(t, []Anchor{AnchorPrestige, AnchorBackfill, AnchorBackfill},
		[]Anchor{got[0].Anchor, got[1].Anchor, got[2].Anchor})
	for _, r := range got {
		for _, b := range r.Why {
			assert.NotContains(t, b, "Writes", r.InvestorID)
		}
	}
	assert.Equal(t, StageFitWeak, StageFit([]string{"preseed"}, sc.Stage))
}
