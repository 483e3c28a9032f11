// File: cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/debdutta1777/AuraProcure/internal/config"
	"github.com/debdutta1777/AuraProcure/internal/observability"
	"github.com/debdutta1777/AuraProcure/internal/service"
)

var cfgFile string

// components is the lazily built runner shared by every command executed in
// this process. The interactive shell relies on this: a mission suspended by
// `run` stays resumable by `approve` because both hit the same service.
var (
	components     *service.Components
	componentsErr  error
	componentsOnce sync.Once
)

// NewRootCommand builds a fresh command tree. The interactive shell calls
// this per line so flags from one command never leak into the next; the
// shared components singleton is what carries state between commands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "auraprocure",
		Short:   "AuraProcure drives procurement requests through sourcing, compliance, approval and drafting.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Runs before any command, setting up config and logging.
			if err := initializeConfig(); err != nil {
				return err
			}

			var cfg config.Config
			if err := viper.Unmarshal(&cfg); err != nil {
				// Initialize a fallback logger if config unmarshal fails.
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "auraprocure"})
				return fmt.Errorf("failed to unmarshal config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger)
			config.Set(&cfg)

			observability.GetLogger().Debug("Starting AuraProcure", zap.String("version", Version))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml or ~/.auraprocure/config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newApproveCmd())
	rootCmd.AddCommand(newVendorsCmd())
	rootCmd.AddCommand(newPoliciesCmd())

	return rootCmd
}

// Execute runs the root command with the given signal-aware context.
func Execute(ctx context.Context) error {
	err := NewRootCommand().ExecuteContext(ctx)
	if err != nil {
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("Command execution failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	return err
}

// Shutdown releases any components built during this process's lifetime.
func Shutdown() {
	if components != nil {
		components.Shutdown()
	}
}

// getComponents builds the runner on first use and reuses it afterwards.
func getComponents(ctx context.Context) (*service.Components, error) {
	componentsOnce.Do(func() {
		components, componentsErr = service.Build(ctx, config.Get(), observability.GetLogger())
	})
	return components, componentsErr
}

// initializeConfig reads in the config file and ENV variables if set.
func initializeConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".auraprocure"))
		}
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	config.SetDefaults(viper.GetViper())

	viper.SetEnvPrefix("AURAPROCURE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults and env vars.
	}
	return nil
}
