package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/auranova/uebridge/internal/config"
	"github.com/auranova/uebridge/internal/logger"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "uebridge",
	Short: "Bridge between a game engine and the consciousness collective",
	Long: `uebridge relays JSON requests from a game engine to a decision source,
pushes notifications back to the engine editor, watches source files for live
reload and generates Unreal Engine classes with a local language model.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file loaded before reading the environment")
}

// bootstrap loads the .env file and the environment, then builds the logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	envErr := godotenv.Load(envFile)

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	if envErr != nil {
		if errors.Is(envErr, fs.ErrNotExist) {
			log.Debug("no .env file, using system environment only", zap.String("file", envFile))
		} else {
			log.Warn("failed to load .env file", zap.String("file", envFile), zap.Error(envErr))
		}
	}
	return cfg, log, nil
}
