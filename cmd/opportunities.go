package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/dataset"
	"github.com/sells-group/leadgen-cli/internal/export"
	"github.com/sells-group/leadgen-cli/internal/geo"
)

var (
	oppUniversePath string
	oppServedPath   string
	oppCoordsPath   string
	oppDelimiter    string
	oppMode         string
	oppGeoJSONPath  string
	oppXLSXPath     string
)

var opportunitiesCmd = &cobra.Command{
	Use:   "opportunities",
	Short: "Aggregate unserved opportunities into map points and price them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		universe, err := loadDataset(ctx, oppUniversePath, oppDelimiter)
		if err != nil {
			return err
		}
		coords, err := loadDataset(ctx, oppCoordsPath, oppDelimiter)
		if err != nil {
			return err
		}

		var served *dataset.Dataset
		if oppServedPath != "" {
			served, err = loadDataset(ctx, oppServedPath, oppDelimiter)
			if err != nil {
				return err
			}
		}

		mode := geo.Mode(oppMode)
		res, err := geo.Aggregate(universe, served, coords, mode)
		if err != nil {
			return err
		}

		// Cost is priced over the unserved rows, not the grouped points.
		servedKeys := map[string]struct{}{}
		if served != nil {
			servedKeys = served.KeySet("cnpj", geo.CNPJWidth)
		}
		unserved := universe.Filter(func(i int) bool {
			key := dataset.ZeroPad(universe.Cell(i, "cnpj").String, geo.CNPJWidth)
			_, hit := servedKeys[key]
			return !hit
		})
		rates := geo.Rates{
			PerCompany:  cfg.Pricing.PerCompany,
			PerDistrict: cfg.Pricing.PerDistrict,
			PerCity:     cfg.Pricing.PerCity,
			PerEnriched: cfg.Pricing.PerEnriched,
		}
		cost := geo.EstimateCost(unserved, rates)

		zap.L().Info("opportunities: aggregated",
			zap.Int("opportunities", res.Opportunities),
			zap.Int("points", len(res.Points)),
			zap.Int("skipped", res.Skipped),
			zap.Int("unresolved", res.Unresolved))

		if oppGeoJSONPath != "" {
			data, err := geo.GeoJSON(res)
			if err != nil {
				return err
			}
			if err := os.WriteFile(oppGeoJSONPath, data, 0o644); err != nil {
				return eris.Wrapf(err, "write %s", oppGeoJSONPath)
			}
		}

		if oppXLSXPath != "" {
			if err := export.SaveXLSX(oppXLSXPath, unserved, "Oportunidades"); err != nil {
				return err
			}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"opportunities": res.Opportunities,
			"points":        len(res.Points),
			"skipped":       res.Skipped,
			"unresolved":    res.Unresolved,
			"cost":          cost,
		})
	},
}

func init() {
	opportunitiesCmd.Flags().StringVar(&oppUniversePath, "universe", "", "universe dataset (CSV or XLSX, required)")
	opportunitiesCmd.Flags().StringVar(&oppServedPath, "served", "", "already-served dataset with cnpj column")
	opportunitiesCmd.Flags().StringVar(&oppCoordsPath, "coords", "", "coordinate dataset (required)")
	opportunitiesCmd.Flags().StringVar(&oppDelimiter, "delimiter", ";", "CSV delimiter")
	opportunitiesCmd.Flags().StringVar(&oppMode, "mode", string(geo.ByPostalCode), "location mode: cep or bairro")
	opportunitiesCmd.Flags().StringVar(&oppGeoJSONPath, "geojson", "", "write aggregated points as GeoJSON")
	opportunitiesCmd.Flags().StringVar(&oppXLSXPath, "xlsx", "", "write unserved opportunities as XLSX")
	opportunitiesCmd.MarkFlagRequired("universe") //nolint:errcheck
	opportunitiesCmd.MarkFlagRequired("coords")   //nolint:errcheck
	rootCmd.AddCommand(opportunitiesCmd)
}
