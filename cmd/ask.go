package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloudwalk/assistant/internal/app"
	"github.com/cloudwalk/assistant/internal/config"
	"github.com/cloudwalk/assistant/internal/session"
)

var (
	askLanguage string
	askProfile  string
	askProduct  string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	askCmd.Flags().StringVar(&askLanguage, "language", "", "conversation language (en, pt-BR)")
	askCmd.Flags().StringVar(&askProfile, "profile", "", "merchant profile (new_merchant, existing_customer, ...)")
	askCmd.Flags().StringVar(&askProduct, "product", "", "product to focus on (infinitepay, jim, stratus)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(ctx context.Context, question string) error {
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

	if _, err := a.Seed(ctx); err != nil {
		return fmt.Errorf("seeding knowledge base: %w", err)
	}

	conv := a.Sessions.Create()
	if askLanguage != "" {
		conv.SetLanguage(askLanguage)
	}
	if askProfile != "" {
		if !session.ValidProfile(session.Profile(askProfile)) {
			return fmt.Errorf("unknown profile %q", askProfile)
		}
		conv.SetProfile(session.Profile(askProfile))
	}
	if askProduct != "" {
		conv.SetCurrentProduct(askProduct)
	}

	reply, err := a.Assistant.Respond(ctx, conv, question)
	if err != nil {
		return fmt.Errorf("generating answer: %w", err)
	}

	fmt.Println(a.Assistant.SignOff(reply.Text))
	return nil
}
