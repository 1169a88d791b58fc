package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/internal/config"
	"github.com/rflorenc/azure-search-workbench/search"
)

const (
	groupResources = "resources"
	groupUtility   = "utility"
)

// app carries the global flags and what is built from them before a
// command runs.
type app struct {
	configPath string
	output     string
	overrides  config.Overrides

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand builds the searchctl command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "searchctl",
		Short: "Manage Azure Search indexes, data sources, skillsets and indexers",
		Long: `searchctl talks to one Azure Search service using its REST API.

Connection settings come from a YAML config file, the AZURE_SEARCH_URL,
AZURE_SEARCH_ADMIN_API_KEY, AZURE_SEARCH_API_KEY and AZURE_SEARCH_API_VERSION
environment variables, and the global flags, in increasing precedence.`,
		Example: `  # Create or recreate everything described in a manifest
  searchctl apply -f search.yaml

  # Start an indexer and wait for the run to finish
  searchctl indexer run docs-indexer --wait

  # Query an index
  searchctl index search docs "azure" --top 5`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to YAML config file")
	flags.StringVar(&a.overrides.URL, "url", "", "Search service URL (overrides config)")
	flags.StringVar(&a.overrides.APIVersion, "api-version", "", "REST API version (overrides config)")
	flags.BoolVar(&a.overrides.Insecure, "insecure", false, "Skip TLS certificate verification")
	flags.DurationVar(&a.overrides.Timeout, "request-timeout", 0, "HTTP timeout per request, e.g. 30s")
	flags.StringVar(&a.overrides.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&a.overrides.LogFormat, "log-format", "", "Log format: text or json")
	flags.StringVarP(&a.output, "output", "o", formatJSON, "Output format: json or yaml")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.setup(cmd.ErrOrStderr())
	}

	cmd.AddGroup(&cobra.Group{ID: groupResources, Title: "Commands:"})
	cmd.AddGroup(&cobra.Group{ID: groupUtility, Title: "Utility Commands:"})
	cmd.SetHelpCommandGroupID(groupUtility)
	cmd.SetCompletionCommandGroupID(groupUtility)

	cmd.AddCommand(a.newPingCommand())
	cmd.AddCommand(a.newGetCommand())
	cmd.AddCommand(a.newListCommand())
	cmd.AddCommand(a.newDeleteCommand())
	cmd.AddCommand(a.newApplyCommand())
	cmd.AddCommand(a.newExportCommand())
	cmd.AddCommand(a.newCleanupCommand())
	cmd.AddCommand(a.newIndexerCommand())
	cmd.AddCommand(a.newIndexCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// setup loads the configuration and the logger. The connection itself is
// validated only when a command asks for the service.
func (a *app) setup(stderr io.Writer) error {
	if a.output != formatJSON && a.output != formatYAML {
		return faults.Validationf("output format must be %s or %s, got %q", formatJSON, formatYAML, a.output)
	}
	cfg, err := config.Load(a.configPath, a.overrides)
	if err != nil {
		return err
	}
	if _, err := config.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger(stderr)
	return nil
}

// service validates the configuration and connects.
func (a *app) service() (*search.Service, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	a.logger.Debug("connecting", "url", a.cfg.Service.URL, "api_version", a.cfg.Service.APIVersion)
	return search.NewService(a.cfg.Service.Connection(), search.WithLogger(a.logger))
}

// progress returns a line logger for the deploy workflows, writing to the
// command's stderr.
func progress(cmd *cobra.Command) func(string) {
	w := cmd.ErrOrStderr()
	return func(line string) {
		fmt.Fprintln(w, line)
	}
}
