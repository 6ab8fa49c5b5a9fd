// Package cli implements the cobra commands of the meal-generator binary.
//
// Every subcommand shares the catalog flags defined on the root command:
// --data-dir selects a directory of JSON, JSONC or YAML category files and
// --db-path selects a SQLite catalog instead. Unset flags fall back to
// MEAL_DATA_DIR, MEAL_DB_PATH and LOG_LEVEL, optionally read from a .env file.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	apperrors "mcp-meal-generator/internal/errors"
	"mcp-meal-generator/internal/logging"
	"mcp-meal-generator/internal/storage"
)

// Environment variables consulted for flags left at their defaults.
const (
	EnvDataDir = "MEAL_DATA_DIR"
	EnvDBPath  = "MEAL_DB_PATH"
)

// Build information, injected from the main package.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Exit codes returned by Execute.
const (
	ExitOK             = 0
	ExitGeneralError   = 1
	ExitLoadError      = 3
	ExitValidation     = 4
	ExitEmptySelection = 5
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	dataDir    string
	dbPath     string
	logLevel   string
	envFile    string
	jsonOutput bool
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "meal-generator",
		Short: "Random meal generator over a catalog of meal components",
		Long: `meal-generator picks a random meal (salad, carb, protein and optionally
soup and extra) from a catalog of components loaded from data files or SQLite.

It can print a meal, list the catalog, import the catalog into SQLite, or
serve the generator as MCP tools over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.complete(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dataDir, "data-dir", "data", "Directory holding salad, carb, soup, extra, protein and meal data files (env "+EnvDataDir+")")
	flags.StringVar(&opts.dbPath, "db-path", "", "SQLite catalog database; overrides --data-dir when set (env "+EnvDBPath+")")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (env "+logging.EnvLogLevel+")")
	flags.StringVar(&opts.envFile, "env-file", ".env", "Optional dotenv file with environment defaults")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(newGenerateCommand(opts))
	rootCmd.AddCommand(newCatalogCommand(opts))
	rootCmd.AddCommand(newImportCommand(opts))
	rootCmd.AddCommand(newServeCommand(opts))

	return rootCmd
}

// complete loads the dotenv file, applies environment defaults to flags the
// user did not set and installs the structured logger.
func (o *rootOptions) complete(cmd *cobra.Command) error {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", o.envFile, err)
		}
	}

	flags := cmd.Flags()
	if v := os.Getenv(EnvDataDir); v != "" && !flags.Changed("data-dir") {
		o.dataDir = v
	}
	if v := os.Getenv(EnvDBPath); v != "" && !flags.Changed("db-path") {
		o.dbPath = v
	}

	logging.SetDefaultStructuredLogger(cmd.ErrOrStderr(), "meal-generator", Version, o.logLevel)
	return nil
}

// openRepository returns the SQLite repository when --db-path is set and
// the file repository otherwise. The returned close function is never nil.
func (o *rootOptions) openRepository() (storage.Repository, func() error, error) {
	if o.dbPath != "" {
		repo, err := storage.NewSQLiteRepository(o.dbPath)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	}

	repo, err := storage.NewFileRepository(o.dataDir)
	if err != nil {
		return nil, nil, err
	}
	return repo, func() error { return nil }, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// ExitCode maps an error onto the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeLoad:
		return ExitLoadError
	case apperrors.ErrCodeValidation:
		return ExitValidation
	case apperrors.ErrCodeEmptySelection:
		return ExitEmptySelection
	default:
		return ExitGeneralError
	}
}

// Execute runs rootCmd, prints any error to stderr and exits with ExitCode.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitCode(err))
	}
}
