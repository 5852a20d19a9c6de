// Package main is the repolab CLI: derived money-market metrics and repo spike
// indicators.
//
// Usage:
//
//	go run ./cmd/repolab run
//	go run ./cmd/repolab run --source fixtures
//	go run ./cmd/repolab spikes --input rates.csv
package main

import (
	"os"

	"repo-rate-lab/cmd/repolab/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
