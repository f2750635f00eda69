//go:build integration

package itest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeSegmentsFixture produces an annotated recording long enough to
// trigger a multi-part plan (source spans just over five hours).
func writeSegmentsFixture(t *testing.T, dir string) string {
	t.Helper()

	type seg struct {
		ID         string  `json:"id"`
		Start      float64 `json:"start"`
		End        float64 `json:"end"`
		Transcript string  `json:"transcript"`
	}
	n := 160
	doc := struct {
		SourceDuration float64 `json:"source_duration"`
		Segments       []seg   `json:"segments"`
	}{SourceDuration: float64(n) * 120}
	for i := 0; i < n; i++ {
		start := float64(i) * 120
		doc.Segments = append(doc.Segments, seg{
			ID:         fmt.Sprintf("s%03d", i),
			Start:      start,
			End:        start + 30,
			Transcript: "the vote on the amendment was a scandal and an outrage",
		})
	}
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	path := filepath.Join(dir, "sitting.json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestE2E_PlanWithoutLLM(t *testing.T) {
	repoRoot := mustRepoRoot(t)
	tmp := t.TempDir()
	segments := writeSegmentsFixture(t, tmp)
	outDir := filepath.Join(tmp, "out")

	res := runCLI(t, repoRoot, []string{
		segments,
		"--no-llm",
		"--out", outDir,
		"--publish-base", "2026-03-02",
	}, nil)
	if res.exitCode != 0 {
		t.Fatalf("expected exit 0, got %d\noutput:\n%s", res.exitCode, res.output)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read out dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one run directory, got %d", len(entries))
	}
	if !strings.HasPrefix(entries[0].Name(), "sitting-") {
		t.Fatalf("unexpected run directory name %q", entries[0].Name())
	}

	b, err := os.ReadFile(filepath.Join(outDir, entries[0].Name(), "plan.json"))
	if err != nil {
		t.Fatalf("read plan: %v", err)
	}

	var m struct {
		RunID   string `json:"run_id"`
		Mode    string `json:"mode"`
		Outcome string `json:"outcome"`
		Clips   []struct {
			ID       string  `json:"id"`
			Duration float64 `json:"duration"`
		} `json:"clips"`
		Plan struct {
			NumParts int `json:"num_parts"`
			Parts    []struct {
				Number    int       `json:"number"`
				Title     string    `json:"title"`
				PublishAt time.Time `json:"publish_at"`
			} `json:"parts"`
		} `json:"plan"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("parse plan: %v", err)
	}

	if m.Outcome != "ok" {
		t.Fatalf("expected outcome ok, got %q", m.Outcome)
	}
	if m.RunID == "" || m.Mode != "session" {
		t.Fatalf("unexpected manifest header: run_id=%q mode=%q", m.RunID, m.Mode)
	}
	if len(m.Clips) == 0 {
		t.Fatalf("expected clips in the plan")
	}
	if len(m.Plan.Parts) != m.Plan.NumParts {
		t.Fatalf("expected %d parts, got %d", m.Plan.NumParts, len(m.Plan.Parts))
	}
	for i, p := range m.Plan.Parts {
		if p.Title == "" {
			t.Fatalf("part %d has no title", p.Number)
		}
		want := time.Date(2026, 3, 2+i, 18, 0, 0, 0, time.UTC)
		if !p.PublishAt.Equal(want) {
			t.Fatalf("part %d publish time: got %s, want %s", p.Number, p.PublishAt, want)
		}
	}
}

func TestE2E_EmptySegmentsIsCleanNoOp(t *testing.T) {
	repoRoot := mustRepoRoot(t)
	tmp := t.TempDir()
	path := filepath.Join(tmp, "empty.json")
	if err := os.WriteFile(path, []byte(`{"segments": []}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	outDir := filepath.Join(tmp, "out")

	res := runCLI(t, repoRoot, []string{path, "--no-llm", "--out", outDir}, nil)
	if res.exitCode != 0 {
		t.Fatalf("expected exit 0 for empty pool, got %d\noutput:\n%s", res.exitCode, res.output)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one run directory, err=%v n=%d", err, len(entries))
	}
	b, err := os.ReadFile(filepath.Join(outDir, entries[0].Name(), "plan.json"))
	if err != nil {
		t.Fatalf("read plan: %v", err)
	}
	if !strings.Contains(string(b), `"no_candidates"`) {
		t.Fatalf("expected no_candidates outcome, got:\n%s", string(b))
	}
}
