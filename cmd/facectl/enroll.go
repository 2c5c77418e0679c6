package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/faceauth/internal/capture"
	"github.com/example/faceauth/internal/workflow"
)

func newEnrollCmd() *cobra.Command {
	var (
		name      string
		imagePath string
	)

	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Enroll a facial identity from a reference photo",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnroll(cmd, name, imagePath)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name to enroll")
	cmd.Flags().StringVar(&imagePath, "image", "", "path to the reference photo")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func runEnroll(cmd *cobra.Command, name, imagePath string) error {
	logger, client, err := newLoggerAndClient()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	flow := workflow.NewEnrollment(capture.FileProvider{Path: imagePath}, client, logger)
	ctx := cmd.Context()

	flow.SetName(name)
	flow.Continue()
	if s, ok := flow.State().(workflow.NameEntry); ok {
		if s.NameRequired {
			return errors.New("a non-empty name is required (--name)")
		}
		return fmt.Errorf("unexpected state after continue: %T", flow.State())
	}

	flow.Capture(ctx)
	switch s := flow.State().(type) {
	case workflow.PhotoCapture:
		// Cancelled: nothing captured, nothing sent.
		fmt.Fprintln(cmd.OutOrStdout(), "Capture cancelled.")
		return nil
	case workflow.EnrollmentFailed:
		return errors.New(s.Reason)
	case workflow.Review:
		fmt.Fprintf(cmd.OutOrStdout(), "Enrolling %q...\n", s.Name)
		flow.Submit(ctx)
	default:
		return fmt.Errorf("unexpected state after capture: %T", s)
	}

	switch s := flow.State().(type) {
	case workflow.EnrollmentSucceeded:
		fmt.Fprintf(cmd.OutOrStdout(), "Enrollment successful: %s is ready for verification.\n", s.Name)
		return nil
	case workflow.EnrollmentFailed:
		return errors.New(s.Reason)
	default:
		return fmt.Errorf("unexpected state after submit: %T", s)
	}
}
