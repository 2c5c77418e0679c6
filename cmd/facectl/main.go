// facectl is a console front end for the face workflows: it drives the
// enrollment and verification controllers against a running classification
// service, with photos supplied from disk.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/example/faceauth/internal/config"
	"github.com/example/faceauth/internal/faceclient"
	"github.com/example/faceauth/internal/logging"
)

var (
	flagServer  string
	flagTimeout time.Duration
	flagDebug   bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Config{ServerURL: "http://localhost:8080", RequestTimeout: 15 * time.Second}
	}

	root := &cobra.Command{
		Use:           "facectl",
		Short:         "Enroll and verify facial identities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	addServerFlags(flags, cfg)

	root.AddCommand(newEnrollCmd())
	root.AddCommand(newVerifyCmd())
	return root
}

func addServerFlags(flags *pflag.FlagSet, cfg config.Config) {
	flags.StringVar(&flagServer, "server", cfg.ServerURL, "base URL of the classification service")
	flags.DurationVar(&flagTimeout, "timeout", cfg.RequestTimeout, "per-request timeout")
	flags.BoolVar(&flagDebug, "debug", cfg.Debug, "verbose logging")
}

// newLoggerAndClient builds the shared collaborators for a command run.
// Structured logs stay off unless asked for, keeping the console clean.
func newLoggerAndClient() (*zap.Logger, *faceclient.HTTPClient, error) {
	logger := zap.NewNop()
	if flagDebug {
		var err error
		logger, err = logging.NewLogger(true)
		if err != nil {
			return nil, nil, err
		}
	}
	return logger, faceclient.NewHTTPClient(flagServer, flagTimeout, logger), nil
}
