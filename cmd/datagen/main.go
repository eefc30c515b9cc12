package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chanuka/integrity/backend/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		sponsors        = flag.Int("sponsors", cfg.NumSponsors, "number of sponsors to generate")
		bills           = flag.Int("bills", cfg.NumBills, "number of bills to generate")
		economicChance  = flag.Float64("economic-chance", cfg.EconomicAffiliationChance, "probability an affiliation is economic")
		leaderChance    = flag.Float64("leadership-chance", cfg.LeadershipChance, "probability an affiliation carries a leadership role")
		mentionChance   = flag.Float64("mention-chance", cfg.MentionChance, "probability a bill mentions an affiliated organization")
		timingChance    = flag.Float64("timing-chance", cfg.TimingConflictChance, "probability a bill lands in the suspicious window of an affiliation")
		gapChance       = flag.Float64("disclosure-gap-chance", cfg.DisclosureGapChance, "probability a financial affiliation lacks a verified disclosure")
		seed            = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir       = flag.String("output-dir", "data", "directory to write sponsors.json and bills.json")
		writeStdout     = flag.Bool("stdout", false, "write combined dataset to stdout instead of files")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumSponsors:               *sponsors,
		NumBills:                  *bills,
		EconomicAffiliationChance: clampProbability(*economicChance),
		LeadershipChance:          clampProbability(*leaderChance),
		MentionChance:             clampProbability(*mentionChance),
		TimingConflictChance:      clampProbability(*timingChance),
		DisclosureGapChance:       clampProbability(*gapChance),
		Seed:                      *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d sponsors and %d bills into %s\n", len(dataset.Sponsors), len(dataset.Bills), *outputDir)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
