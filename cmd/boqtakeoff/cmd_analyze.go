package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arxos/boqtakeoff/internal/config"
	"github.com/arxos/boqtakeoff/internal/logging"
	"github.com/arxos/boqtakeoff/internal/model"
	"github.com/arxos/boqtakeoff/internal/pipeline"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <drawing.dxf> <boq-items.json>",
	Short: "Run the takeoff pipeline over a DXF drawing and a BOQ item list",
	Long: `analyze parses a DXF drawing, extracts closed architectural regions,
and matches each bill-of-quantities item in boq-items.json against those
regions, printing the resulting AnalysisResult as JSON.

boq-items.json is a JSON array of objects:
  [{"id": "1", "description": "Pavimento Sala de Ventas", "unit": "m2", "expected_qty": 100}]`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	flags := analyzeCmd.Flags()
	flags.String("hint-unit", "", "unit hint when the DXF header is unitless (mm, cm, m, in, ft)")
	flags.Float64("snap-tolerance", 0.01, "vertex snap tolerance, meters")
	flags.Float64("max-gap", 0.05, "gap-closing endpoint tolerance, meters")
	flags.Bool("merge-collinear", true, "merge collinear segment chains")
	flags.Bool("close-gaps", true, "close dangling-endpoint gaps")
	flags.Float64("undershoot-tolerance", 0.15, "undershoot (T-junction) snap tolerance, meters")
	flags.Float64("min-area", 0.5, "minimum accepted region area, m²")
	flags.Float64("max-area", 1_000_000, "maximum accepted region area, m²")
	flags.Int("max-segments", 200_000, "hard segment cap before uniform subsampling")
	flags.Float64("text-match-threshold", 0.5, "minimum semantic text-match score")
	flags.Float64("spatial-search-radius", 2.0, "nearest_neighbor strategy search radius, meters")
	flags.Float64("default-wall-height", 2.4, "fallback wall height for linear→area quantity conversion, meters")
	flags.Bool("use-llm-fallback", false, "enable the optional, non-deterministic LLM fallback matcher")
	flags.Duration("timeout", 0, "cooperative analysis deadline (0 = no deadline)")
	flags.String("config", "", "optional YAML/JSON file of option overrides, applied before flags")

	_ = viper.BindPFlags(flags)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	dxfPath, boqPath := args[0], args[1]

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config override: %w", err)
		}
		// Re-bind flags so an explicit CLI flag still wins over the file.
		_ = viper.BindPFlags(cmd.Flags())
	}

	dxfBytes, err := os.ReadFile(dxfPath)
	if err != nil {
		return fmt.Errorf("reading drawing: %w", err)
	}

	boqItems, err := loadBOQItems(boqPath)
	if err != nil {
		return fmt.Errorf("reading BOQ items: %w", err)
	}

	opts := optionsFromFlags()
	log := logging.New(os.Stderr, uuid.NewString())

	ctx := context.Background()
	if timeout := viper.GetDuration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := pipeline.Analyze(ctx, dxfBytes, boqItems, opts, log, nil)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// boqItemFile is the on-disk JSON shape for one BOQ line, decoded into
// model.BOQItem.
type boqItemFile struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Unit        string   `json:"unit"`
	ExpectedQty *float64 `json:"expected_qty,omitempty"`
}

func loadBOQItems(path string) ([]model.BOQItem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var files []boqItemFile
	if err := json.Unmarshal(raw, &files); err != nil {
		return nil, err
	}
	items := make([]model.BOQItem, 0, len(files))
	for _, f := range files {
		items = append(items, model.BOQItem{
			ID:          f.ID,
			Description: f.Description,
			Unit:        f.Unit,
			ExpectedQty: f.ExpectedQty,
		})
	}
	return items, nil
}

// optionsFromFlags builds config.Options from bound viper values.
func optionsFromFlags() config.Options {
	return config.Options{
		HintUnit:            config.HintUnit(viper.GetString("hint-unit")),
		SnapTolerance:       viper.GetFloat64("snap-tolerance"),
		MaxGap:              viper.GetFloat64("max-gap"),
		MergeCollinear:      viper.GetBool("merge-collinear"),
		CloseGaps:           viper.GetBool("close-gaps"),
		UndershootTolerance: viper.GetFloat64("undershoot-tolerance"),
		MinArea:             viper.GetFloat64("min-area"),
		MaxArea:             viper.GetFloat64("max-area"),
		MaxSegments:         viper.GetInt("max-segments"),
		TextMatchThreshold:  viper.GetFloat64("text-match-threshold"),
		SpatialSearchRadius: viper.GetFloat64("spatial-search-radius"),
		DefaultWallHeight:   viper.GetFloat64("default-wall-height"),
		UseLLMFallback:      viper.GetBool("use-llm-fallback"),
		MinConfidence:       config.Default().MinConfidence,
		MaxTextDistance:     config.Default().MaxTextDistance,
		FallbackRadius:      config.Default().FallbackRadius,
	}
}

