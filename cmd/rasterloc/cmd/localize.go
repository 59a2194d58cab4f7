package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rasterloc/rasterloc/internal/config"
	"github.com/rasterloc/rasterloc/internal/detect"
	"github.com/rasterloc/rasterloc/internal/pipeline"
)

// localizeCmd represents the localize command for single assets.
var localizeCmd = &cobra.Command{
	Use:   "localize [assets...]",
	Short: "Localize raster assets using detector sidecar files",
	Long: `Localize one or more raster assets. Each asset needs a detector
document describing its text regions; by default this is read from the
sidecar file <asset>.regions.json next to the asset.

Examples:
  rasterloc localize button.png --target it-IT
  rasterloc localize dialog.png --regions dialog.regions.json
  rasterloc localize a.png b.png --output-dir out/ --no-package`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runLocalizeCommand,
}

// newLocalizerBuilder maps the resolved configuration onto a pipeline
// builder. Command flags that were explicitly set override config values.
func newLocalizerBuilder(cfg *config.Config, cmd *cobra.Command) (*pipeline.Builder, error) {
	source, target, err := cfg.Languages()
	if err != nil {
		return nil, err
	}

	outDir := cfg.Output.Dir
	if cmd.Flags().Changed("output-dir") {
		outDir, _ = cmd.Flags().GetString("output-dir")
	}

	doPackage := cfg.Output.Package
	if cmd.Flags().Changed("no-package") {
		noPackage, _ := cmd.Flags().GetBool("no-package")
		doPackage = !noPackage
	}

	minWords := cfg.MinWordCount
	if cmd.Flags().Changed("min-words") {
		minWords, _ = cmd.Flags().GetInt("min-words")
	}

	runLog := cfg.Output.RunLog
	if cmd.Flags().Changed("run-log") {
		runLog, _ = cmd.Flags().GetString("run-log")
	}

	return pipeline.NewBuilder().
		WithLanguages(source, target).
		WithTranslatorConfig(cfg.TranslatorOptions()).
		WithQE(cfg.QEOptions()).
		WithRunLog(runLog).
		WithOutputDir(outDir).
		WithPackageDir(cfg.Output.PackageDir).
		WithNoLocDir(cfg.Output.NoLocDir).
		WithMinWordCount(minWords).
		WithPackaging(doPackage), nil
}

func runLocalizeCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	builder, err := newLocalizerBuilder(cfg, cmd)
	if err != nil {
		return err
	}

	if regionsPath, _ := cmd.Flags().GetString("regions"); regionsPath != "" {
		if len(args) > 1 {
			return errors.New("--regions applies to a single asset")
		}
		builder = builder.WithDetector(detect.NewSidecarDetector(regionsPath))
	}

	loc, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer func() { _ = loc.Close() }()

	results, err := loc.ProcessAll(cmd.Context(), args)
	for _, res := range results {
		switch res.Status {
		case pipeline.StatusLocalized:
			fmt.Fprintf(cmd.OutOrStdout(), "%s: localized %d string(s) -> %s\n",
				res.AssetID, res.Strings, res.OutputPath)
			if res.PackagePath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: package -> %s\n", res.AssetID, res.PackagePath)
			}
		case pipeline.StatusNoLoc:
			fmt.Fprintf(cmd.OutOrStdout(), "%s: no localization (%s)\n", res.AssetID, res.Reason)
		}
	}
	return err
}

func init() {
	rootCmd.AddCommand(localizeCmd)
	localizeCmd.Flags().StringP("regions", "r", "", "explicit detector document (single asset only)")
	localizeCmd.Flags().StringP("output-dir", "o", "", "directory for localized assets")
	localizeCmd.Flags().String("run-log", "", "JSONL run record path")
	localizeCmd.Flags().Int("min-words", 0, "minimum detected words before localizing")
	localizeCmd.Flags().Bool("no-package", false, "skip review package creation")
}
