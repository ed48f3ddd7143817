// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the root command, global flags and the configuration
// shared by every subcommand.

package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/toeirei/blog/internal/config"
	"github.com/toeirei/blog/internal/db"
	"github.com/toeirei/blog/internal/i18n"
	"github.com/toeirei/blog/internal/logging"
	"github.com/toeirei/blog/internal/security"
)

var version = "dev"   // this will be set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

var cfgFile string
var verbose bool

var appConfig config.Config

// writeDefaultConfig is swapped out by tests.
var writeDefaultConfig = func(c *config.Config) error {
	return config.WriteConfigFile(c, false)
}

func setupDefaultServices(cmd *cobra.Command, _ []string) error {
	path, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	appConfig, err = config.LoadConfig[config.Config](cmd, config.Defaults(), path)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := appConfig.Validate(); err != nil {
		return err
	}

	logging.SetLevel(appConfig.Log.Level)
	if verbose {
		logging.SetDebug(true)
		db.SetDebug(true)
	}
	i18n.Init(appConfig.Language)
	security.SetHashCost(appConfig.Security.BcryptCost)

	// First run: persist the effective configuration for the user to edit.
	if path == nil {
		userPath, perr := config.GetConfigPath(false)
		if perr == nil && !fileExists(userPath) && !fileExists("blog.yaml") {
			if writeErr := writeDefaultConfig(&appConfig); writeErr != nil {
				logging.Warnf("could not write default config file: %v", writeErr)
			} else {
				logging.Infof("%s", i18n.T("cli.config_written", userPath))
			}
		}
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// openStore connects to the configured database and applies pending
// migrations. Callers close the store.
func openStore() (db.Store, error) {
	return db.NewStoreFromDSN(appConfig.Database.Type, appConfig.Database.Dsn)
}

// Execute runs the CLI entrypoint.
func Execute() error {
	return NewRootCmd().Execute()
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// NewRootCmd creates and configures a new root cobra command.
// Every call returns an independent tree, so tests can run commands in
// isolation.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blog",
		Short: "Blog is a REST back end for users, categories and posts.",
		Long: `Blog serves a JSON REST API for a small blog: registration and login,
categories, posts and user accounts, persisted in SQLite, PostgreSQL or MySQL.

Run "blog serve" to start the API.`,
		SilenceUsage:      true,
		PersistentPreRunE: setupDefaultServices,
		Version:           compositeVersion(),
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output (debug logs, SQL statements)")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	cmd.PersistentFlags().String("database.type", "sqlite", "Database type (sqlite, postgres, mysql)")
	cmd.PersistentFlags().String("database.dsn", "", "Database connection string (DSN)")
	cmd.PersistentFlags().String("language", "en", `Default message language ("en", "fr")`)
	cmd.PersistentFlags().String("log.level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newDBMaintainCmd(),
		newUserCmd(),
		newFixturesCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newTransferCmd(),
		newVersionCmd(),
	)
	return cmd
}

func compositeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	out := v
	if c != "" && c != "dev" {
		out = out + " (" + c + ")"
	}
	if d != "" {
		out = out + " built: " + d
	}
	return out
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		// No config or database needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version: %s\n", v)
			fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				fmt.Fprintf(out, "built: %s\n", d)
			}
		},
	}
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If `info` is nil, it reads build info from
// the runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := version
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		if local, ok := debug.ReadBuildInfo(); ok {
			info = local
		}
	}

	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		// Some build paths only record the module as a dependency.
		if resolvedVersion == "dev" || resolvedVersion == "(devel)" {
			for _, dep := range info.Deps {
				if dep.Path == "github.com/toeirei/blog" && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}
