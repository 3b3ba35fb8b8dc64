// Command cashflow tracks a monthly salary against expenses.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/config"
)

var version = "dev"

// app carries the state shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	cfgFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	config.SetDefaults(a.v)

	root := &cobra.Command{
		Use:   "cashflow",
		Short: "💰 Personal cash flow tracker",
		Long: `cashflow keeps track of your monthly salary and expenses, warns you when the
balance drops below 10% of the salary, and shows everything in the currency of
your choice.

Data is stored in a local SQLite database and saved after every change.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initConfig,
	}

	// Global flags
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/cashflow/config.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "console", "log format (console, json)")
	root.PersistentFlags().String("db", "", "database file (default: "+config.DefaultDatabasePath+")")

	_ = a.v.BindPFlag("logging.level", root.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", root.PersistentFlags().Lookup("log-format"))
	_ = a.v.BindPFlag("database.path", root.PersistentFlags().Lookup("db"))

	root.AddCommand(salaryCmd(a))
	root.AddCommand(expenseCmd(a))
	root.AddCommand(showCmd(a))
	root.AddCommand(exportCmd(a))
	root.AddCommand(importCmd(a))
	root.AddCommand(tuiCmd(a))
	root.AddCommand(serveCmd(a))
	root.AddCommand(checkpointCmd(a))
	root.AddCommand(versionCmd())

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", common.UserMessage(err))
		os.Exit(1)
	}
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	// A missing .env is fine.
	_ = godotenv.Load()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		a.v.AddConfigPath(fmt.Sprintf("%s/.config/cashflow", home))
		a.v.AddConfigPath(".")
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	a.v.SetEnvPrefix("CASHFLOW")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := common.SetupLogger(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	slog.Debug("Configuration loaded", "file", a.v.ConfigFileUsed(), "database", cfg.Database.Path)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cashflow %s\n", version)
		},
	}
}
