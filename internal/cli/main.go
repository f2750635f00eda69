package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/reelplan/reelplan/internal/logging"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "reelplan <segments.json>",
		Short:        "Plan highlight clips and release parts from an annotated recording",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			logging.Init(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().String("out", "out", "Output directory")
	root.Flags().String("mode", "session", "Processing mode: session or stream")
	root.Flags().String("chat", "", "Chat histogram JSON (stream mode)")
	root.Flags().String("prompt", "", "Editorial brief for prompt-similarity scoring")
	root.Flags().Float64("target", 0, "Total target duration in seconds (0 = computed)")
	root.Flags().Int("parts", 0, "Number of output parts (0 = computed)")
	root.Flags().String("weights", "", "Weight-profile YAML overriding built-in modes")
	root.Flags().String("publish-base", "", "First publish date (YYYY-MM-DD, default today)")
	root.Flags().Bool("no-llm", false, "Skip the semantic collaborator, keyword heuristics only")
	root.Flags().BoolP("verbose", "v", false, "Debug logging")

	// Hidden tuning flags (internal)
	root.Flags().Int("clips", 40, "Max clip count")
	root.Flags().Float64("min-clip", 15, "Min clip duration seconds")
	root.Flags().Float64("max-clip", 90, "Max clip duration seconds")
	root.Flags().Float64("gap", 30, "Min time gap between clips, seconds")
	root.Flags().Float64("merge-gap", 10, "Max merge gap, seconds")
	root.Flags().Int("publish-hour", 18, "Publish time of day, hour")
	_ = root.Flags().MarkHidden("clips")
	_ = root.Flags().MarkHidden("min-clip")
	_ = root.Flags().MarkHidden("max-clip")
	_ = root.Flags().MarkHidden("gap")
	_ = root.Flags().MarkHidden("merge-gap")
	_ = root.Flags().MarkHidden("publish-hour")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
