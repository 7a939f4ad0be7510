package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/criteria"
	"github.com/sells-group/leadgen-cli/internal/export"
	"github.com/sells-group/leadgen-cli/internal/leads"
	"github.com/sells-group/leadgen-cli/internal/query"
)

var (
	generateCriteriaPath string
	generateExcludePath  string
	generateClient       string
	generateOutput       string
	generateView         string
	generateLimit        int
	generateSave         bool
	generateRefresh      bool
	generateShowSQL      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate leads from a criteria file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(generateCriteriaPath)
		if err != nil {
			return eris.Wrapf(err, "read criteria file %s", generateCriteriaPath)
		}
		file, crit, err := criteria.ParseYAML(data)
		if err != nil {
			return err
		}

		client := generateClient
		if client == "" {
			client = file.ClientReference
		}
		if generateSave && client == "" {
			return eris.New("--save requires a client reference (flag or criteria file)")
		}
		if generateRefresh && !generateSave {
			return eris.New("--refresh only applies together with --save")
		}

		exclude := criteria.ExclusionSet{}
		if generateExcludePath != "" {
			served, err := loadDataset(ctx, generateExcludePath, "")
			if err != nil {
				return err
			}
			exclude = criteria.ExclusionSet(served.KeySet("cnpj", 14))
		}

		score := criteria.Score(crit)

		pool, closePool, err := initPool(ctx)
		if err != nil {
			return err
		}
		defer closePool()

		view := generateView
		if view == "" {
			view = cfg.Query.View
		}
		limit := generateLimit
		if limit == 0 {
			limit = cfg.Query.Limit
		}

		ds, q, err := query.Generate(ctx, pool, crit, exclude, query.Options{Table: view, Limit: limit})
		if err != nil {
			return err
		}

		if generateShowSQL {
			cmd.Println(q.SQL)
		}

		zap.L().Info("generate: query complete",
			zap.String("client", client),
			zap.Int("rows", ds.Len()),
			zap.Int("score", score),
			zap.Int("excluded", len(exclude)))

		if generateOutput != "" {
			if err := export.SaveXLSX(generateOutput, ds, "Leads"); err != nil {
				return err
			}
		}

		summary := map[string]any{
			"rows":     ds.Len(),
			"score":    score,
			"excluded": len(exclude),
		}

		if generateSave {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Migrate(ctx); err != nil {
				return err
			}
			res, err := st.Save(ctx, leads.Batch{
				ClientReference: client,
				Score:           score,
				Refresh:         generateRefresh,
				Rows:            ds,
			})
			if err != nil {
				return err
			}
			summary["inserted"] = res.Inserted
			summary["skipped"] = res.Skipped
			summary["generation_id"] = res.GenerationID
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateCriteriaPath, "criteria", "", "criteria YAML file (required)")
	generateCmd.Flags().StringVar(&generateExcludePath, "exclude", "", "CSV/XLSX with cnpj column to exclude")
	generateCmd.Flags().StringVar(&generateClient, "client", "", "client reference label (default from criteria file)")
	generateCmd.Flags().StringVar(&generateOutput, "output", "", "write results to an XLSX file")
	generateCmd.Flags().StringVar(&generateView, "view", "", "company view to query (default from config)")
	generateCmd.Flags().IntVar(&generateLimit, "limit", 0, "result row cap (default from config)")
	generateCmd.Flags().BoolVar(&generateSave, "save", false, "persist the batch to the lead sink")
	generateCmd.Flags().BoolVar(&generateRefresh, "refresh", false, "with --save, update leads already saved for the client instead of skipping them")
	generateCmd.Flags().BoolVar(&generateShowSQL, "show-sql", false, "print the compiled SQL")
	generateCmd.MarkFlagRequired("criteria") //nolint:errcheck
	rootCmd.AddCommand(generateCmd)
}
