package main

import (
	"encoding/json"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadgen-cli/internal/criteria"
	"github.com/sells-group/leadgen-cli/internal/normalize"
	"github.com/sells-group/leadgen-cli/internal/options"
)

var (
	optionsInputPath string
	optionsDelimiter string
	optionsLimit     int
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Compute filter option lists from a company dataset",
	Long:  "Reads a company dataset and emits, per filter, the most frequent distinct values (with null/empty sentinels), trade-name keywords, and CNAE code/description pairs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ds, err := loadDataset(ctx, optionsInputPath, optionsDelimiter)
		if err != nil {
			return err
		}

		categorical := map[string]string{
			"uf":                 "uf",
			"municipio":          "municipio",
			"bairro":             "bairro",
			"porte_empresa":      "porte_empresa",
			"natureza_juridica":  "natureza_juridica",
			"opcao_simples":      "opcao_simples",
			"opcao_mei":          "opcao_mei",
			"ddd1":               "ddd1",
			"qualificacao_socio": "qualificacoes",
			"faixa_etaria_socio": "faixas_etarias",
		}

		out := make(map[string]any, len(categorical)+3)
		var mu sync.Mutex

		g, _ := errgroup.WithContext(ctx)
		for filter, column := range categorical {
			g.Go(func() error {
				values := options.TopDistinctValues(ds, column, optionsLimit, true, true)
				mu.Lock()
				out[filter] = values
				mu.Unlock()
				return nil
			})
		}
		g.Go(func() error {
			keywords := options.TopKeywords(ds, "nome_fantasia", optionsLimit, normalize.Stopwords, true, true)
			mu.Lock()
			out[string(criteria.FieldTradeName)] = keywords
			mu.Unlock()
			return nil
		})
		g.Go(func() error {
			keywords := options.TopKeywords(ds, "nomes_socios", optionsLimit, normalize.Stopwords, true, true)
			mu.Lock()
			out[string(criteria.FieldPartnerName)] = keywords
			mu.Unlock()
			return nil
		})
		g.Go(func() error {
			pairs := options.TopCodedPairs(ds, options.Principal, optionsLimit, true, true)
			mu.Lock()
			out[string(criteria.FieldPrimaryCNAE)] = pairs
			mu.Unlock()
			return nil
		})
		g.Go(func() error {
			pairs := options.TopCodedPairs(ds, options.Secondary, optionsLimit, true, true)
			mu.Lock()
			out[string(criteria.FieldSecondaryCNAE)] = pairs
			mu.Unlock()
			return nil
		})
		if err := g.Wait(); err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	optionsCmd.Flags().StringVar(&optionsInputPath, "input", "", "company dataset (CSV or XLSX, required)")
	optionsCmd.Flags().StringVar(&optionsDelimiter, "delimiter", ";", "CSV delimiter")
	optionsCmd.Flags().IntVar(&optionsLimit, "limit", 30, "values per option list")
	optionsCmd.MarkFlagRequired("input") //nolint:errcheck
	rootCmd.AddCommand(optionsCmd)
}
