package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ftjoosen-hub/speakgpt/server"
	"github.com/ftjoosen-hub/speakgpt/speech/synth"
)

var (
	serveAddr string
	serveRate int

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the synthesis relay server",
		Long: paragraph(
			fmt.Sprintf("\nRun the %s: it holds the upstream API key and relays synthesis requests, so clients never see credentials.", keyword("relay server")),
		),
		Args: cobra.NoArgs,
		RunE: runServe,
	}
)

func runServe(cmd *cobra.Command, _ []string) error {
	// A .env next to the binary is a convenience, not a requirement.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[server.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr = serveAddr
	}
	if cmd.Flags().Changed("rate") {
		cfg.RatePerMinute = serveRate
	}

	backend := synth.NewOpenAIClient(cfg.OpenAIKey, synth.WithModel(cfg.Model))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, backend).ListenAndServe(ctx)
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8585", "listen address")
	serveCmd.Flags().IntVar(&serveRate, "rate", 30, "synthesis requests allowed per minute")
}
