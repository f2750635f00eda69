package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/reelplan/reelplan/internal/config"
	"github.com/reelplan/reelplan/internal/logging"
	"github.com/reelplan/reelplan/internal/pipeline"
	"github.com/reelplan/reelplan/internal/types"
)

func run(cmd *cobra.Command, input string) error {
	outDir, _ := cmd.Flags().GetString("out")
	mode, _ := cmd.Flags().GetString("mode")
	chatPath, _ := cmd.Flags().GetString("chat")
	prompt, _ := cmd.Flags().GetString("prompt")
	target, _ := cmd.Flags().GetFloat64("target")
	numParts, _ := cmd.Flags().GetInt("parts")
	weightsPath, _ := cmd.Flags().GetString("weights")
	publishBase, _ := cmd.Flags().GetString("publish-base")
	noLLM, _ := cmd.Flags().GetBool("no-llm")
	maxClips, _ := cmd.Flags().GetInt("clips")
	minClip, _ := cmd.Flags().GetFloat64("min-clip")
	maxClip, _ := cmd.Flags().GetFloat64("max-clip")
	gap, _ := cmd.Flags().GetFloat64("gap")
	mergeGap, _ := cmd.Flags().GetFloat64("merge-gap")
	publishHour, _ := cmd.Flags().GetInt("publish-hour")

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" && !noLLM {
		return errors.New("OPENROUTER_API_KEY is required unless --no-llm is set (set it in .env)")
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	var base time.Time
	if publishBase != "" {
		base, err = time.Parse("2006-01-02", publishBase)
		if err != nil {
			return fmt.Errorf("parse --publish-base: %w", err)
		}
	}

	var override *types.WeightProfile
	if weightsPath != "" {
		profiles, err := config.LoadProfiles(weightsPath)
		if err != nil {
			return err
		}
		if p, ok := profiles[mode]; ok {
			override = &p
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	cfg := pipeline.Config{
		SegmentsPath: absIn,
		ChatPath:     chatPath,
		OutDir:       outDir,

		Mode:   mode,
		Prompt: prompt,

		NumParts:        numParts,
		TargetDuration:  target,
		MaxClips:        maxClips,
		MinClipDuration: minClip,
		MaxClipDuration: maxClip,
		MinTimeGap:      gap,
		MergeGap:        mergeGap,
		WeightOverride:  override,

		PublishBase: base,
		PublishHour: publishHour,

		DisableLLM:         noLLM,
		ScorerAPIKey:       apiKey,
		ScorerModel:        getenvDefault("SCORER_MODEL", ""),
		ScorerBaseURL:      getenvDefault("SCORER_BASE_URL", "https://openrouter.ai/api/v1"),
		ScorerAllowedHosts: splitHosts(os.Getenv("SCORER_ALLOWED_HOSTS")),

		Log: logging.WithComponent("pipeline"),
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return pipeline.Run(ctx, cfg)
}

func splitHosts(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
