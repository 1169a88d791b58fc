package cli

import (
	"github.com/spf13/cobra"

	"github.com/rflorenc/azure-search-workbench/search"
)

func (a *app) newPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ping",
		GroupID: groupResources,
		Short:   "Check connectivity and print the service statistics",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			stats, err := svc.Ping(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(cmd, stats)
		},
	}
}

func (a *app) newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "get <kind> <name>",
		GroupID: groupResources,
		Short:   "Print one resource as the service returns it",
		Example: "  searchctl get index docs -o yaml",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := search.LookupResourceType(args[0])
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			payload, err := svc.Raw(cmd.Context(), rt, args[1])
			if err != nil {
				return err
			}
			return a.print(cmd, payload)
		},
	}
}

func (a *app) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list <kind>",
		GroupID: groupResources,
		Short:   "List resource names of one kind",
		Long:    "List resource names of one kind. Kinds: datasource, index, skillset, indexer (plurals and short aliases work too).",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := search.LookupResourceType(args[0])
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			names, err := svc.RawNames(cmd.Context(), rt)
			if err != nil {
				return err
			}
			if names == nil {
				names = []string{}
			}
			return a.print(cmd, names)
		},
	}
}

func (a *app) newDeleteCommand() *cobra.Command {
	var ifExists bool
	cmd := &cobra.Command{
		Use:     "delete <kind> <name>",
		GroupID: groupResources,
		Short:   "Delete one resource",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := search.LookupResourceType(args[0])
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			deleted, err := svc.RawDelete(cmd.Context(), rt, args[1], ifExists)
			if err != nil {
				return err
			}
			if deleted {
				status(cmd, "deleted %s/%s", rt.Name, args[1])
			} else {
				status(cmd, "%s/%s not found", rt.Name, args[1])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&ifExists, "if-exists", false, "Do not fail when the resource is missing")
	return cmd
}
