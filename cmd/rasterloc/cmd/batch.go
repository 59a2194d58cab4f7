package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rasterloc/rasterloc/internal/batch"
)

// batchCmd represents the batch command for parallel asset processing.
var batchCmd = &cobra.Command{
	Use:   "batch [files-or-directories...]",
	Short: "Localize many raster assets in parallel",
	Long: `Localize a set of raster assets with a pool of parallel workers. Each
worker owns an independent pipeline, so assets never share a canvas.

Examples:
  rasterloc batch screenshots/
  rasterloc batch screenshots/ --recursive --workers 8
  rasterloc batch a.png b.png --format json --output results.json
  rasterloc batch screenshots/ --include 'dialog_*.png'`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

// configToBatchConfig maps centralized configuration and command flags to
// batch.Config.
func configToBatchConfig(cmd *cobra.Command) *batch.Config {
	batchConfig := batch.DefaultConfig()

	if cmd.Flags().Changed("workers") {
		batchConfig.Workers, _ = cmd.Flags().GetInt("workers")
	}
	batchConfig.Recursive, _ = cmd.Flags().GetBool("recursive")
	batchConfig.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
	batchConfig.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")
	batchConfig.Format, _ = cmd.Flags().GetString("format")
	batchConfig.OutputFile, _ = cmd.Flags().GetString("output")
	batchConfig.Quiet, _ = cmd.Flags().GetBool("quiet")

	return batchConfig
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	builder, err := newLocalizerBuilder(cfg, cmd)
	if err != nil {
		return err
	}
	batchConfig := configToBatchConfig(cmd)

	res, err := batch.Run(cmd.Context(), builder, args, batchConfig)
	if err != nil {
		return err
	}

	if batchConfig.Quiet {
		return nil
	}

	out, err := batch.FormatResult(res, batchConfig.Format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if batchConfig.OutputFile != "" {
		if err := os.WriteFile(batchConfig.OutputFile, []byte(out), 0o600); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().IntP("workers", "w", 0, "number of parallel workers (default: CPU count)")
	batchCmd.Flags().Bool("recursive", false, "descend into subdirectories")
	batchCmd.Flags().StringSlice("include", nil, "glob patterns of file names to include")
	batchCmd.Flags().StringSlice("exclude", nil, "glob patterns of file names to exclude")
	batchCmd.Flags().String("format", "text", "result format: text, json or csv")
	batchCmd.Flags().StringP("output", "o", "", "write results to file instead of stdout")
	batchCmd.Flags().BoolP("quiet", "q", false, "suppress result output")
	batchCmd.Flags().String("output-dir", "", "directory for localized assets")
	batchCmd.Flags().String("run-log", "", "JSONL run record path")
	batchCmd.Flags().Int("min-words", 0, "minimum detected words before localizing")
	batchCmd.Flags().Bool("no-package", false, "skip review package creation")
}
