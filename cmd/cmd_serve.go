// Copyright 2026 The PSGC API Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/psgcapi/psgc/server"
	"github.com/spf13/cobra"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the PSGC API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("listen") {
			cfg.Listen = serveListen
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		grace, err := cfg.ShutdownGrace()
		if err != nil {
			return err
		}

		idx, err := loadIndex(cfg)
		if err != nil {
			return err
		}

		srv := server.NewServer(idx, server.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			RateLimit:      cfg.RateLimit,
			RateBurst:      cfg.RateBurst,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Printf("🚀 Listening on http://%s", cfg.Listen)

		if err := srv.Run(ctx, cfg.Listen, grace); err != nil {
			return fmt.Errorf("running server: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "localhost:8080", "Address to listen on")
}
