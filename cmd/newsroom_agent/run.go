package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/newsroom-agent/internal/observability"
	"github.com/jonathan/newsroom-agent/internal/types"
)

var (
	runTopic        string
	runAngle        string
	runTargetLength int
	runPriority     string
	runConfigPath   string
	runArchivistURL string
	runVerbose      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one story assignment to completion",
	Long:  `Run a single story through the full pipeline without starting the server, printing the final story record as JSON. Useful for smoke-testing a deployment.`,
	RunE:  runStory,
}

func init() {
	runCmd.Flags().StringVar(&runTopic, "topic", "", "Story topic (required)")
	runCmd.Flags().StringVar(&runAngle, "angle", "", "Editorial angle")
	runCmd.Flags().IntVar(&runTargetLength, "target-length", 800, "Target article length in words")
	runCmd.Flags().StringVar(&runPriority, "priority", "normal", "Assignment priority (low, normal, high)")
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Path to JSON config file")
	runCmd.Flags().StringVar(&runArchivistURL, "archivist-url", "", "Base URL of the external archive agent")
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "Print detailed debug information")
	_ = runCmd.MarkFlagRequired("topic")
	rootCmd.AddCommand(runCmd)
}

func runStory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return err
	}
	if runArchivistURL != "" {
		cfg.ArchivistURL = runArchivistURL
	}
	if runVerbose {
		cfg.Verbose = true
	}

	req := types.AssignStoryRequest{
		Topic:        runTopic,
		Angle:        runAngle,
		TargetLength: runTargetLength,
		Priority:     types.Priority(runPriority),
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid assignment: %w", err)
	}

	ctx := cmd.Context()
	room, err := buildNewsroom(ctx, cfg)
	if err != nil {
		return err
	}
	defer room.close()

	story := types.NewStory(req.Topic, req.Angle, req.TargetLength, req.Priority)
	if err := room.registry.Add(story); err != nil {
		return err
	}
	if err := room.registry.Transition(story.ID, types.StatusAssigned, ""); err != nil {
		return err
	}

	room.orch.Run(ctx, story.ID)

	record, err := room.registry.Snapshot(story.ID)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		observability.NewPrinter(os.Stderr).PrintRecord(record)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if record.Story.Status == types.StatusFailed {
		return fmt.Errorf("story failed: %s", record.Story.Reason)
	}
	return nil
}
