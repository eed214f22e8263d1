package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Yusufzhafir/go-orderbook/replay/internal/config"
	"github.com/Yusufzhafir/go-orderbook/replay/internal/engine"
	"github.com/Yusufzhafir/go-orderbook/replay/internal/logging"
	"github.com/Yusufzhafir/go-orderbook/replay/internal/usecase/replay"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	//load environment variable
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd(&cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "obreplay",
		Short:        "Replays a command log against a price-level order book",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), *cfg)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfg.InputPath, "input", "i", cfg.InputPath, "command log to replay")
	flags.StringVar(&cfg.LogEnv, "log-env", cfg.LogEnv, "logger preset: dev or prod")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "override log level: debug, info, warn, error")
	flags.BoolVar(&cfg.HaltOnEmptyBook, "halt-on-empty-book", cfg.HaltOnEmptyBook, "abort the run when a query or market order finds no liquidity")
	rootCmd.Flags().StringVarP(&cfg.OutputPath, "output", "o", cfg.OutputPath, "result file, - for stdout")

	rootCmd.AddCommand(newDepthCmd(cfg))
	return rootCmd
}

// setup builds the logger and a replay use case over a fresh book.
func setup(cfg config.Config) (*zap.Logger, replay.ReplayUseCase, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.LogEnv, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	orderBookEngine := engine.NewOrderBookEngine(logger.Named("engine"))
	orderBookEngine.Initialize()

	replayUseCase := replay.NewReplayUseCase(replay.ReplayUseCaseOpts{
		OrderBookEngine: orderBookEngine,
		Logger:          logger.Named("replay"),
		HaltOnEmptyBook: cfg.HaltOnEmptyBook,
	})
	return logger, replayUseCase, nil
}

func runReplay(ctx context.Context, cfg config.Config) (err error) {
	logger, replayUseCase, err := setup(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	out, closeOut, err := openOutput(cfg.OutputPath)
	if err != nil {
		logger.Error("cannot open output", zap.String("path", cfg.OutputPath), zap.Error(err))
		return err
	}
	defer func() {
		if closeErr := closeOut(); closeErr != nil && err == nil {
			logger.Error("cannot close output", zap.String("path", cfg.OutputPath), zap.Error(closeErr))
			err = closeErr
		}
	}()

	return replayFile(ctx, logger, replayUseCase, cfg.InputPath, out)
}

func replayFile(ctx context.Context, logger *zap.Logger, replayUseCase replay.ReplayUseCase, path string, out io.Writer) error {
	rootCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, err := os.Open(path)
	if err != nil {
		logger.Error("cannot open input", zap.String("path", path), zap.Error(err))
		return errors.Wrap(err, "opening input")
	}
	defer in.Close()

	if _, err := replayUseCase.Run(rootCtx, in, out); err != nil {
		logger.Error("replay aborted", zap.String("input", path), zap.Error(err))
		return err
	}
	return nil
}

// openOutput returns the result sink and its close func. Stdout is never
// closed.
func openOutput(path string) (io.WriteCloser, func() error, error) {
	if path == config.StdStream {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "creating output")
	}
	return f, func() error { return errors.Wrap(f.Close(), "closing output") }, nil
}
