// Copyright (C) 2026 Meridian OSS (oss@meridian-oss.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aisearch",
	Short: "A cli for the AI search demo service",
	Long: `aisearch talks to the search service's SSE endpoint and renders
rejections, cached answers, and streamed responses in the terminal.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

// getServiceBaseURL resolves the search service address.
func getServiceBaseURL() string {
	if url := os.Getenv("AISEARCH_SERVICE_URL"); url != "" {
		return url
	}
	return "http://localhost:12310"
}
