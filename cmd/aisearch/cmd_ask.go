// Copyright (C) 2026 Meridian OSS (oss@meridian-oss.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/meridian-oss/aisearch/pkg/ux"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var askTimeout time.Duration // Overall request timeout

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// askCmd sends one query to the search service and renders the SSE response.
//
// # Examples
//
//	aisearch ask how do goroutines work
//	aisearch ask dotnet
//	AISEARCH_SERVICE_URL=http://search:12310 aisearch ask golang
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Asks a question to the AI search service",
	Args:  cobra.MinimumNArgs(1),
	Run:   runAskCommand,
}

func init() {
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute,
		"Overall request timeout")
	rootCmd.AddCommand(askCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runAskCommand(cmd *cobra.Command, args []string) {
	question := strings.Join(args, " ")
	fmt.Printf("Asking: %s\n", question)
	fmt.Println("---")

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	// Ctrl-C drops the connection; the server detects the disconnect and
	// stops generating.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	target := fmt.Sprintf("%s/api/ai-search?q=%s", getServiceBaseURL(), url.QueryEscape(question))
	req, err := http.NewRequestWithContext(ctx, "GET", target, nil)
	if err != nil {
		log.Fatalf("Error building request: %v", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Error contacting search service: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("Search service returned %s", resp.Status)
	}

	result, err := ux.NewStreamProcessor().Process(resp.Body)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	fmt.Println("---")
	if result.Rejected {
		fmt.Println("The query was not sent to the AI service.")
	}
}
