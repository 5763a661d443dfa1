package compile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"okrlens/internal/core"
)

type mockGenerator struct {
	response string
	err      error
	prompts  []string
}

func (m *mockGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.response, m.err
}

type mockStore struct {
	inserted []core.EvaluationRecord
	err      error
}

func (m *mockStore) Insert(_ context.Context, record core.EvaluationRecord) error {
	if m.err != nil {
		return m.err
	}
	m.inserted = append(m.inserted, record)
	return nil
}

func sampleRecord() core.EvaluationRecord {
	return core.EvaluationRecord{
		InputURL: "https://example.com/post",
		ParsedOKR: &core.OKR{
			Objective:  "Scale engineering teams",
			KeyResults: []string{"Hire 5 engineers", "Ship onboarding guide"},
		},
		Metadata: &core.Metadata{
			Title:           "Scaling Teams",
			MetaDescription: "A 45-character description about scaling.",
		},
		DuplicateStatus:    core.DuplicatePass,
		VerificationStatus: "```json\n{\"relevance\": 35, \"credibility\": 20, \"completeness\": 15}\n```",
		TrendScore:         40,
		DiscrepancyReport:  "no major discrepancies",
	}
}

func TestCompileParsesGeneratorJSON(t *testing.T) {
	gen := &mockGenerator{response: `{
		"content_summary": "A report about scaling.",
		"content_exists": true,
		"ai_scores": {"relevance": 35, "credibility": 20, "completeness": 15, "total": 70},
		"recommendations": ["a", "b", "c"],
		"detailed_feedback": "Solid content."
	}`}
	store := &mockStore{}
	compiler := NewCompiler(gen, store)

	out := compiler.Compile(context.Background(), sampleRecord())

	if out.CompiledResult == nil {
		t.Fatal("expected compiled result")
	}
	if out.CompiledResult.ContentSummary != "A report about scaling." {
		t.Errorf("unexpected summary %q", out.CompiledResult.ContentSummary)
	}
	if out.Scores.Relevance != 35 || out.Scores.Credibility != 20 || out.Scores.Completeness != 15 {
		t.Errorf("scores not extracted from verification: %+v", out.Scores)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected one persisted evaluation, got %d", len(store.inserted))
	}
	if store.inserted[0].CompiledResult == nil {
		t.Error("persisted record should include the compiled report")
	}
	if out.Timestamp.IsZero() {
		t.Error("expected timestamp to be stamped")
	}
}

func TestCompileStripsFencedReport(t *testing.T) {
	gen := &mockGenerator{response: "```json\n{\"content_summary\": \"fenced\", \"content_exists\": true, \"ai_scores\": {\"total\": 70}, \"recommendations\": [], \"detailed_feedback\": \"f\"}\n```"}
	compiler := NewCompiler(gen, &mockStore{})

	out := compiler.Compile(context.Background(), sampleRecord())
	if out.CompiledResult.ContentSummary != "fenced" {
		t.Errorf("fence not stripped before parsing: %+v", out.CompiledResult)
	}
}

func TestCompileFallbackOnGeneratorError(t *testing.T) {
	gen := &mockGenerator{err: errors.New("model down")}
	compiler := NewCompiler(gen, &mockStore{})

	out := compiler.Compile(context.Background(), sampleRecord())

	report := out.CompiledResult
	if report == nil {
		t.Fatal("expected fallback report")
	}
	if report.ContentSummary != fallbackSummary {
		t.Errorf("unexpected fallback summary %q", report.ContentSummary)
	}
	if report.AIScores.Total != 70 {
		t.Errorf("expected total 35+20+15=70, got %d", report.AIScores.Total)
	}
	if !report.ContentExists {
		t.Error("content_exists should be computed from the description")
	}
	if len(report.Recommendations) != 0 {
		t.Errorf("fallback recommendations must be empty, got %v", report.Recommendations)
	}
	if report.DetailedFeedback != fallbackFeedback {
		t.Errorf("unexpected fallback feedback %q", report.DetailedFeedback)
	}
}

func TestCompileFallbackOnNonJSONResponse(t *testing.T) {
	gen := &mockGenerator{response: "I'm sorry, I can't produce JSON today."}
	compiler := NewCompiler(gen, &mockStore{})

	out := compiler.Compile(context.Background(), sampleRecord())
	if out.CompiledResult.ContentSummary != fallbackSummary {
		t.Errorf("expected fallback, got %+v", out.CompiledResult)
	}
	if total := out.CompiledResult.AIScores.Total; total != out.Scores.Relevance+out.Scores.Credibility+out.Scores.Completeness {
		t.Errorf("total %d does not equal sum of extracted scores", total)
	}
}

func TestCompileSurvivesStoreFailure(t *testing.T) {
	gen := &mockGenerator{response: "not json"}
	compiler := NewCompiler(gen, &mockStore{err: errors.New("mongo unreachable")})

	out := compiler.Compile(context.Background(), sampleRecord())
	if out.CompiledResult == nil {
		t.Fatal("store failure must not fail compilation")
	}
}

func TestCompileZeroScoresWhenVerificationSkipped(t *testing.T) {
	record := sampleRecord()
	record.VerificationStatus = core.VerificationSkipped

	gen := &mockGenerator{err: errors.New("should fall back")}
	compiler := NewCompiler(gen, &mockStore{})

	out := compiler.Compile(context.Background(), record)
	if out.Scores != (core.Scores{}) {
		t.Errorf("expected zero scores for skipped verification, got %+v", out.Scores)
	}
	if out.CompiledResult.AIScores.Total != 0 {
		t.Errorf("expected zero total, got %d", out.CompiledResult.AIScores.Total)
	}
}

func TestCompilePromptCarriesUpstreamSignals(t *testing.T) {
	gen := &mockGenerator{response: "{}"}
	compiler := NewCompiler(gen, &mockStore{})

	compiler.Compile(context.Background(), sampleRecord())
	if len(gen.prompts) != 1 {
		t.Fatalf("expected one generator call, got %d", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	for _, fragment := range []string{
		"Scale engineering teams",
		"Hire 5 engineers",
		"Trend Score: 40",
		"Relevance=35",
		"no major discrepancies",
	} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing %q", fragment)
		}
	}
}

func TestContentExists(t *testing.T) {
	if ContentExists("short") {
		t.Error("short description should not count as existing content")
	}
	if !ContentExists("A 45-character description about scaling.") {
		t.Error("45-character description should count as existing content")
	}
	if ContentExists("   " + strings.Repeat("x", 30) + "   ") {
		t.Error("whitespace must be trimmed before measuring")
	}
	if ContentExists(strings.Repeat("x", 30)) {
		t.Error("exactly 30 characters must not pass the threshold")
	}
	if !ContentExists(strings.Repeat("x", 31)) {
		t.Error("31 characters should pass the threshold")
	}
}
