package cli

import (
	"github.com/spf13/cobra"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/internal/deploy"
)

func (a *app) newApplyCommand() *cobra.Command {
	var (
		path   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:     "apply -f <path>",
		GroupID: groupResources,
		Short:   "Create or recreate the resources described in a manifest",
		Long: `Apply reads a manifest file or directory, checks which resources already
exist, and creates the missing ones in dependency order. Existing resources are
deleted and created again; recreating an index drops its documents.`,
		Example: `  searchctl apply -f search.yaml --dry-run
  searchctl apply -f ./export`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := deploy.LoadManifest(path)
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			log := progress(cmd)
			plan, err := deploy.Preflight(cmd.Context(), svc, m, log)
			if err != nil {
				return err
			}
			if dryRun {
				return nil
			}
			_, err = deploy.Apply(cmd.Context(), svc, plan, log)
			return err
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "Manifest file or directory")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only print the plan")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) newExportCommand() *cobra.Command {
	var (
		dir    string
		format string
	)
	cmd := &cobra.Command{
		Use:     "export -d <dir>",
		GroupID: groupResources,
		Short:   "Write every resource to <dir>/<collection>/<name>.<format>",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			_, err = deploy.Export(cmd.Context(), svc, dir, format, progress(cmd))
			return err
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Output directory")
	cmd.Flags().StringVar(&format, "format", deploy.FormatJSON, "File format: json or yaml")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func (a *app) newCleanupCommand() *cobra.Command {
	var (
		yes  bool
		skip []string
	)
	cmd := &cobra.Command{
		Use:     "cleanup --yes",
		GroupID: groupResources,
		Short:   "Delete every resource on the service, indexers first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return faults.Validationf("cleanup deletes everything on the service; pass --yes to confirm")
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			keep := make(map[string]bool, len(skip))
			for _, name := range skip {
				keep[name] = true
			}
			_, err = deploy.Cleanup(cmd.Context(), svc, keep, progress(cmd))
			return err
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	cmd.Flags().StringSliceVar(&skip, "skip", nil, "Resource names to keep")
	return cmd
}
