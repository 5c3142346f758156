// Copyright (C) 2026 Meridian OSS (oss@meridian-oss.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// healthCmd checks service liveness.
//
// # Examples
//
//	aisearch health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the search service is up",
	Run:   runHealthCommand,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runHealthCommand(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	target := getServiceBaseURL() + "/health"
	req, err := http.NewRequestWithContext(ctx, "GET", target, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building request: %v\n", err)
		os.Exit(1)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search service unreachable: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		fmt.Fprintf(os.Stderr, "Unexpected health response: %v\n", err)
		os.Exit(1)
	}

	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		fmt.Fprintf(os.Stderr, "Search service unhealthy: %s\n", resp.Status)
		os.Exit(1)
	}

	fmt.Println("Search service is healthy.")
}
