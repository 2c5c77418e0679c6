package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/faceauth/internal/capture"
	"github.com/example/faceauth/internal/workflow"
)

func newVerifyCmd() *cobra.Command {
	var imagePath string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a live photo against enrolled identities",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, imagePath)
		},
	}

	cmd.Flags().StringVar(&imagePath, "image", "", "path to the live photo")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func runVerify(cmd *cobra.Command, imagePath string) error {
	logger, client, err := newLoggerAndClient()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	flow := workflow.NewVerification(capture.FileProvider{Path: imagePath}, client, logger)

	flow.Capture(cmd.Context())
	switch s := flow.State().(type) {
	case workflow.Capturing:
		fmt.Fprintln(cmd.OutOrStdout(), "Capture cancelled.")
		return nil
	case workflow.VerificationFailed:
		return errors.New(s.Reason)
	case workflow.VerificationResult:
		printVerdict(cmd, s)
		flow.Done()
		return nil
	default:
		return fmt.Errorf("unexpected state after capture: %T", s)
	}
}

func printVerdict(cmd *cobra.Command, s workflow.VerificationResult) {
	out := cmd.OutOrStdout()
	v := s.Verdict

	if v.Verified {
		fmt.Fprintln(out, "Verification successful: identity confirmed.")
	} else {
		fmt.Fprintln(out, "Verification failed: no sufficient match.")
	}
	fmt.Fprintf(out, "  Matched user:      %s\n", v.MatchedLabel)
	fmt.Fprintf(out, "  Confidence:        %.1f%% (%s)\n", v.Confidence*100, v.ConfidenceTier)
	fmt.Fprintf(out, "  Cosine similarity: %.4f\n", v.CosineSimilarity)
	fmt.Fprintf(out, "  Threshold:         %.2f\n", v.Threshold)
	if v.DisplayMessage != "" {
		fmt.Fprintf(out, "  %s\n", v.DisplayMessage)
	}
}
