// Command simulation runs the reference end-to-end scenarios against an
// in-process engine and prints a colored pass/fail report.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"source-intel-be/internal/pkg/logger"
	"source-intel-be/internal/repository/memory"
	"source-intel-be/pkg/synthesis"

	"github.com/fatih/color"
)

type scenario struct {
	name string
	run  func(ctx context.Context) error
}

func main() {
	color.Cyan("🚀 Source selection scenarios\n")

	ctx := context.Background()
	scenarios := []scenario{
		{"1. Developer query over reddit + github", scenarioDeveloperQuery},
		{"2. Empty query is rejected", scenarioEmptyQuery},
		{"3. Context switch within a session", scenarioContextSwitch},
		{"4. Invalid source is excluded", scenarioInvalidSource},
		{"5. Improving quality trend", scenarioImprovingTrend},
	}

	failed := 0
	for _, sc := range scenarios {
		color.Yellow("\n%s", sc.name)
		if err := sc.run(ctx); err != nil {
			failed++
			color.Red("  FAIL: %v", err)
			continue
		}
		color.Green("  PASS")
	}

	if failed > 0 {
		color.Red("\n%d of %d scenarios failed", failed, len(scenarios))
		os.Exit(1)
	}
	color.Green("\nAll %d scenarios passed", len(scenarios))
}

func newEngine(sources ...synthesis.Source) (*synthesis.Engine, *memory.SessionRepository, error) {
	reg, err := synthesis.NewRegistry(sources...)
	if err != nil {
		return nil, nil, err
	}
	store := memory.NewSessionRepository(time.Minute)
	engine, err := synthesis.NewEngine(synthesis.DefaultOptions(), reg, store, logger.NewNopLogger())
	return engine, store, err
}

func scenarioSources() []synthesis.Source {
	return []synthesis.Source{
		{
			ID: "reddit", BaseQuality: 0.7, AuthorityScore: 0.6,
			SocialProof: synthesis.SocialProof{EngagementRate: 0.85, ViralPotential: 0.9, AuthenticityScore: 0.8, SocialValidation: 0.85},
		},
		{
			ID: "github", BaseQuality: 0.8, AuthorityScore: 0.95,
			SocialProof: synthesis.SocialProof{EngagementRate: 0.7, ViralPotential: 0.6, AuthenticityScore: 0.95, SocialValidation: 0.8},
		},
	}
}

func scenarioDeveloperQuery(ctx context.Context) error {
	engine, _, err := newEngine(scenarioSources()...)
	if err != nil {
		return err
	}

	target := 0.75
	d, err := engine.SelectSources(ctx, synthesis.SelectRequest{
		Query:         "What are common developer complaints about CI pipelines?",
		SessionID:     "sim-1",
		TargetQuality: &target,
		MaxSources:    3,
	})
	if err != nil {
		return err
	}
	fmt.Printf("  context=%s confidence=%.2f selected=%v quality=%.3f\n", d.Context, d.Confidence, d.SelectedSources, d.SynthesisQuality)
	for id, score := range d.PerSourceScores {
		fmt.Printf("  %-8s %.6f\n", id, score)
	}

	if d.Context != synthesis.ContextDeveloperInsights && d.Context != synthesis.ContextTechnicalTrends {
		return fmt.Errorf("unexpected context %s", d.Context)
	}
	if len(d.SelectedSources) == 0 || d.SelectedSources[0] != "github" {
		return fmt.Errorf("expected github first, got %v", d.SelectedSources)
	}
	return nil
}

func scenarioEmptyQuery(_ context.Context) error {
	engine, _, err := newEngine(scenarioSources()...)
	if err != nil {
		return err
	}
	if _, err := engine.ClassifyQuery(""); !errors.Is(err, synthesis.ErrInvalidInput) {
		return fmt.Errorf("expected invalid input, got %v", err)
	}
	fmt.Println("  empty query rejected")
	return nil
}

func scenarioContextSwitch(ctx context.Context) error {
	engine, _, err := newEngine(synthesis.DefaultCatalog()...)
	if err != nil {
		return err
	}

	first, err := engine.SelectSources(ctx, synthesis.SelectRequest{Query: "What pain points do users hit in onboarding?", SessionID: "sim-3"})
	if err != nil {
		return err
	}
	second, err := engine.SelectSources(ctx, synthesis.SelectRequest{Query: "What are the latest trends in Kubernetes?", SessionID: "sim-3"})
	if err != nil {
		return err
	}
	fmt.Printf("  %s → %s switched=%t tension=%.2f\n", first.Context, second.Context, second.ContextSwitched, second.TransitionTension)

	a, err := engine.SessionAnalytics(ctx, "sim-3")
	if err != nil {
		return err
	}
	if first.Context != synthesis.ContextPainPointDiscovery || second.Context != synthesis.ContextTechnicalTrends {
		return fmt.Errorf("unexpected contexts %s, %s", first.Context, second.Context)
	}
	if !second.ContextSwitched || a.ContextSwitches != 1 {
		return fmt.Errorf("expected one switch, got switched=%t count=%d", second.ContextSwitched, a.ContextSwitches)
	}
	return nil
}

func scenarioInvalidSource(ctx context.Context) error {
	bad := synthesis.Source{
		ID: "rogue", BaseQuality: 0.7, AuthorityScore: 1.5,
		SocialProof: synthesis.SocialProof{EngagementRate: 0.5, ViralPotential: 0.5, AuthenticityScore: 0.5, SocialValidation: 0.5},
	}

	engine, _, err := newEngine(append(scenarioSources(), bad)...)
	if err != nil {
		return err
	}
	d, err := engine.SelectSources(ctx, synthesis.SelectRequest{Query: "developer tooling", SessionID: "sim-4a"})
	if err != nil {
		return err
	}
	if len(d.ExcludedSources) != 1 || d.ExcludedSources[0].SourceID != "rogue" {
		return fmt.Errorf("expected rogue excluded, got %+v", d.ExcludedSources)
	}
	fmt.Printf("  excluded %s: %s %s\n", d.ExcludedSources[0].SourceID, d.ExcludedSources[0].Field, d.ExcludedSources[0].Reason)

	alone, _, err := newEngine(bad)
	if err != nil {
		return err
	}
	_, err = alone.SelectSources(ctx, synthesis.SelectRequest{Query: "developer tooling", SessionID: "sim-4b"})
	if !errors.Is(err, synthesis.ErrNoViableSources) {
		return fmt.Errorf("expected no viable sources, got %v", err)
	}
	fmt.Printf("  sole invalid source: %v\n", err)
	return nil
}

func scenarioImprovingTrend(ctx context.Context) error {
	engine, store, err := newEngine(scenarioSources()...)
	if err != nil {
		return err
	}

	now := time.Now()
	session := synthesis.NewSession("sim-5", now)
	for i, q := range []float64{0.4, 0.45, 0.9, 0.92, 0.95} {
		session.History = append(session.History, synthesis.Decision{
			SessionID:        "sim-5",
			Context:          synthesis.ContextTechnicalTrends,
			SynthesisQuality: q,
			CreatedAt:        now.Add(time.Duration(i) * time.Second),
		})
	}
	if err := store.Save(ctx, session); err != nil {
		return err
	}

	a, err := engine.SessionAnalytics(ctx, "sim-5")
	if err != nil {
		return err
	}
	fmt.Printf("  trend=%s average=%.3f best=%s\n", a.QualityTrend, a.AverageQuality, a.BestContext)
	if a.QualityTrend != synthesis.TrendImproving {
		return fmt.Errorf("expected improving, got %s", a.QualityTrend)
	}
	return nil
}
