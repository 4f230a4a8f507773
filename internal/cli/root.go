package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	logx "github.com/Chative-core-poc-v1/sheetsql/pkg/logger"
)

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

// rootOptions is filled by the root command before any subcommand runs.
type rootOptions struct {
	envFile string
	verbose bool
	cfg     *AppConfig
}

// withApp opens the shared resources for the duration of fn.
func (o *rootOptions) withApp(ctx context.Context, fn func(*app) error) error {
	a, err := newApp(ctx, o.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logx.Warn().Err(err).Msg("Failed to release resources")
		}
	}()
	return fn(a)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "sheetsql",
		Short:         "Ask questions about spreadsheet data in plain language.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.envFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg

			logx.Init(logx.LoggerOpts{
				Environment: cfg.Env(),
				Verbose:     opts.verbose,
				Output:      cmd.ErrOrStderr(),
			})
			if cfg.envFileErr != nil {
				logx.Debug().Err(cfg.envFileErr).Str("file", opts.envFile).Msg("No env file loaded")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Help(); err != nil {
				return fmt.Errorf("failed to show help: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "set debug logging level")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(
		NewAskCmd(opts).Command(),
		NewChatCmd(opts).Command(),
		NewSyncCmd(opts).Command(),
		NewSchemaCmd(opts).Command(),
	)
	return rootCmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitCodeError
	}
	return exitCodeSuccess
}
