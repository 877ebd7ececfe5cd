package cmd

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/cloudwalk/assistant/internal/app"
	"github.com/cloudwalk/assistant/internal/config"
	"github.com/cloudwalk/assistant/internal/knowledge"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the built-in knowledge documents into the database",
	Long: `Embeds and inserts the built-in company and product documents.
Documents that are already present are skipped, so running seed
repeatedly is safe.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSeed(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	a, err := app.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer a.Close()

	docs := knowledge.SeedDocuments()
	bar := progressbar.Default(int64(len(docs)), "seeding knowledge")

	inserted := 0
	for _, doc := range docs {
		n, err := a.Knowledge.Upsert(ctx, doc)
		if err != nil {
			return fmt.Errorf("seeding %q: %w", doc.Title, err)
		}
		inserted += n
		_ = bar.Add(1)
	}

	fmt.Printf("Seeded %d new documents (%d already present)\n", inserted, len(docs)-inserted)
	return nil
}
