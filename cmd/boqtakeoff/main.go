// Command boqtakeoff is a thin CLI front-end over the core pipeline
// in internal/pipeline, for running a drawing and a BOQ file through
// an analysis locally. Production front-ends (the HTTP upload
// surface) call pipeline.Analyze directly.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "boqtakeoff",
	Short: "Extract measurable quantities from CAD drawings and match them to bill-of-quantities items",
	Long: `boqtakeoff runs a DXF drawing and a bill-of-quantities (BOQ) item list
through the geometric-semantic takeoff pipeline: entity extraction, geometry
cleanup, planar-graph region extraction, semantic classification, and
BOQ-to-region matching with quantity computation and confidence scoring.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
