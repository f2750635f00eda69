package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reelplan/reelplan/internal/domain/parts"
	"github.com/reelplan/reelplan/internal/domain/scoring"
	"github.com/reelplan/reelplan/internal/ports"
	"github.com/reelplan/reelplan/internal/ports/adapters/chatlog"
	"github.com/reelplan/reelplan/internal/ports/adapters/llmscore"
	"github.com/reelplan/reelplan/internal/ports/adapters/transcript"
	"github.com/reelplan/reelplan/internal/types"
	"github.com/reelplan/reelplan/internal/usecase"
)

type Config struct {
	SegmentsPath string
	ChatPath     string
	OutDir       string

	Mode   string // "session" or "stream"
	Prompt string

	NumParts        int
	TargetDuration  float64
	MaxClips        int
	MinClipDuration float64
	MaxClipDuration float64
	MinTimeGap      float64
	MergeGap        float64
	WeightOverride  *types.WeightProfile

	PublishBase     time.Time
	PublishHour     int
	PublishMinute   int
	FirstPartOffset int

	DisableLLM         bool
	ScorerAPIKey       string
	ScorerModel        string
	ScorerBaseURL      string
	ScorerAllowedHosts []string

	Log zerolog.Logger
}

func (c Config) Validate() error {
	if c.SegmentsPath == "" {
		return errors.New("segments path is empty")
	}
	if _, err := os.Stat(c.SegmentsPath); err != nil {
		return fmt.Errorf("stat segments: %w", err)
	}
	if c.Mode != "session" && c.Mode != "stream" {
		return fmt.Errorf("unknown mode %q (want session or stream)", c.Mode)
	}
	if c.MinClipDuration < 0 || c.MaxClipDuration < 0 {
		return fmt.Errorf("clip duration bounds must be >= 0")
	}
	if c.MinClipDuration > 0 && c.MaxClipDuration > 0 && c.MinClipDuration >= c.MaxClipDuration {
		return fmt.Errorf("min clip duration must be < max clip duration")
	}
	if c.TargetDuration < 0 {
		return fmt.Errorf("target duration must be >= 0")
	}
	if c.WeightOverride != nil {
		if err := scoring.ValidateProfile(*c.WeightOverride); err != nil {
			return err
		}
	}
	if c.DisableLLM {
		return nil
	}
	return llmscore.ValidateBaseURL(c.ScorerBaseURL, c.ScorerAllowedHosts)
}

// Manifest is what the downstream export consumer receives: the final
// ordered clips plus the fully populated split plan.
type Manifest struct {
	RunID       string          `json:"run_id"`
	Input       string          `json:"input"`
	Mode        string          `json:"mode"`
	GeneratedAt time.Time       `json:"generated_at"`
	Outcome     string          `json:"outcome"`
	Clips       []types.Clip    `json:"clips"`
	Plan        types.SplitPlan `json:"plan"`
}

// Single-flight guard for the process: concurrent Run calls beyond the
// first are rejected, not queued.
var runLock usecase.RunLock

func Run(ctx context.Context, cfg Config) error {
	if !runLock.TryAcquire() {
		return errors.New("another run is already in progress")
	}
	defer runLock.Release()

	log := cfg.Log

	var semantic ports.SemanticScorer
	var prompt ports.PromptScorer
	if !cfg.DisableLLM {
		adapter := llmscore.New(cfg.ScorerAPIKey, cfg.ScorerModel, cfg.ScorerBaseURL)
		semantic = adapter
		prompt = adapter
	}

	uc := usecase.New(usecase.Deps{
		Segments: transcript.New(cfg.SegmentsPath, log),
		Chat:     chatlog.New(cfg.ChatPath),
		Semantic: semantic,
		Prompt:   prompt,
		Log:      log,
	})

	res, err := uc.Run(ctx, usecase.Input{
		Mode:            cfg.Mode,
		Prompt:          cfg.Prompt,
		NumParts:        cfg.NumParts,
		TargetDuration:  cfg.TargetDuration,
		WeightOverride:  cfg.WeightOverride,
		MaxClips:        cfg.MaxClips,
		MinClipDuration: cfg.MinClipDuration,
		MaxClipDuration: cfg.MaxClipDuration,
		MinTimeGap:      cfg.MinTimeGap,
		MergeGap:        cfg.MergeGap,
		Schedule: parts.ScheduleConfig{
			BaseDate:        cfg.PublishBase,
			PublishHour:     cfg.PublishHour,
			PublishMinute:   cfg.PublishMinute,
			FirstPartOffset: cfg.FirstPartOffset,
		},
	})
	if err != nil {
		return err
	}

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runOutDir := buildRunOutDir(outDir, cfg.SegmentsPath, time.Now().UTC())
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return err
	}

	m := Manifest{
		RunID:       uuid.NewString(),
		Input:       cfg.SegmentsPath,
		Mode:        cfg.Mode,
		GeneratedAt: time.Now().UTC(),
		Outcome:     outcomeString(res.Outcome),
		Clips:       res.Clips,
		Plan:        res.Plan,
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	planPath := filepath.Join(runOutDir, "plan.json")
	if err := os.WriteFile(planPath, b, 0o644); err != nil {
		return err
	}
	log.Info().Int("clips", len(res.Clips)).Int("parts", len(res.Plan.Parts)).Str("path", planPath).Msg("plan written")
	return nil
}

func outcomeString(o usecase.Outcome) string {
	if o == usecase.OutcomeNoCandidates {
		return "no_candidates"
	}
	return "ok"
}

func buildRunOutDir(outRoot, input string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", input, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.SegmentSource = (*transcript.Adapter)(nil)
var _ ports.ChatSource = (*chatlog.Adapter)(nil)
var _ ports.SemanticScorer = (*llmscore.Adapter)(nil)
var _ ports.PromptScorer = (*llmscore.Adapter)(nil)
