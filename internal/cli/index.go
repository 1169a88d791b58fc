package cli

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/search"
)

func (a *app) newIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "index",
		GroupID: groupResources,
		Short:   "Query an index and manage its documents",
	}
	cmd.AddCommand(a.newIndexSearchCommand())
	cmd.AddCommand(a.newIndexSuggestCommand())
	cmd.AddCommand(a.newIndexCountCommand())
	cmd.AddCommand(a.newIndexStatsCommand())
	cmd.AddCommand(a.newIndexAnalyzeCommand())
	cmd.AddCommand(a.newIndexUploadCommand())
	return cmd
}

func (a *app) newIndexSearchCommand() *cobra.Command {
	var (
		q   search.SearchRequest
		top int
	)
	cmd := &cobra.Command{
		Use:   "search <index> [text]",
		Short: "Run a search query (uses the query key)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				q.Search = args[1]
			}
			if cmd.Flags().Changed("top") {
				q.Top = &top
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			res, err := svc.Indexes.Search(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			return a.print(cmd, res)
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.Filter, "filter", "", "OData $filter expression")
	f.StringVar(&q.OrderBy, "orderby", "", "OData $orderby expression")
	f.StringSliceVar(&q.Select, "select", nil, "Fields to return")
	f.StringSliceVar(&q.SearchFields, "search-fields", nil, "Fields to search")
	f.StringArrayVar(&q.Facets, "facet", nil, "Facet expression (repeatable)")
	f.StringVar(&q.QueryType, "query-type", search.QueryTypeFull, "simple or full")
	f.StringVar(&q.SearchMode, "search-mode", search.SearchModeAll, "any or all")
	f.IntVar(&top, "top", 50, "Maximum number of results")
	f.BoolVar(&q.Count, "count", false, "Include the total match count")
	return cmd
}

func (a *app) newIndexSuggestCommand() *cobra.Command {
	var suggester string
	cmd := &cobra.Command{
		Use:   "suggest <index> <text>",
		Short: "Get suggestions from a suggester (uses the query key)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			res, err := svc.Indexes.Suggest(cmd.Context(), args[0], suggester, args[1])
			if err != nil {
				return err
			}
			return a.print(cmd, res)
		},
	}
	cmd.Flags().StringVar(&suggester, "suggester", "", "Suggester name")
	_ = cmd.MarkFlagRequired("suggester")
	return cmd
}

func (a *app) newIndexCountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count <index>",
		Short: "Print the number of documents in an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			n, err := svc.Indexes.Count(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd, n)
		},
	}
}

func (a *app) newIndexStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <index>",
		Short: "Print document count and storage size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			stats, err := svc.Indexes.Statistics(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd, stats)
		},
	}
}

func (a *app) newIndexAnalyzeCommand() *cobra.Command {
	var analyzer string
	cmd := &cobra.Command{
		Use:   "analyze <index> <text>",
		Short: "Show the tokens an analyzer produces for text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			tokens, err := svc.Indexes.Analyze(cmd.Context(), args[0], analyzer, args[1])
			if err != nil {
				return err
			}
			return a.print(cmd, tokens)
		},
	}
	cmd.Flags().StringVar(&analyzer, "analyzer", "standard.lucene", "Analyzer name")
	return cmd
}

func (a *app) newIndexUploadCommand() *cobra.Command {
	var (
		path   string
		remove bool
	)
	cmd := &cobra.Command{
		Use:   "upload <index> -f <documents.json>",
		Short: "Merge or upload documents from a JSON file",
		Long: `Upload reads a JSON array of documents, or an object with a "value" array,
checks each document against the index fields and sends them in one batch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := readDocuments(path)
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			idx, err := svc.Indexes.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var results []search.DocumentResult
			if remove {
				results, err = svc.Indexes.DeleteDocuments(cmd.Context(), idx, docs)
			} else {
				results, err = svc.Indexes.UploadDocuments(cmd.Context(), idx, docs)
			}
			if err != nil {
				return err
			}
			failed := search.Failed(results)
			status(cmd, "%d documents sent, %d failed", len(results), len(failed))
			if len(failed) > 0 {
				keys := make([]string, len(failed))
				for i, r := range failed {
					keys[i] = r.Key + ": " + r.ErrorMessage
				}
				return faults.NewTypedError(faults.RemoteError, "documents rejected: "+strings.Join(keys, "; "), nil)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "JSON file with documents")
	cmd.Flags().BoolVar(&remove, "delete", false, "Delete the listed documents instead")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readDocuments(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.NewTypedError(faults.ConfigError, "reading "+path, err)
	}
	var docs []map[string]any
	if err := json.Unmarshal(data, &docs); err == nil {
		return docs, nil
	}
	var batch struct {
		Value []map[string]any `json:"value"`
	}
	if err := json.Unmarshal(data, &batch); err != nil || batch.Value == nil {
		return nil, faults.Parsef(err, "%s: expected a JSON array of documents or {\"value\": [...]}", path)
	}
	return batch.Value, nil
}
