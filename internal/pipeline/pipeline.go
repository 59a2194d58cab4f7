// Package pipeline orchestrates asset localization: eligibility, detection,
// translation, optional quality estimation, reinsertion and packaging.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"github.com/rasterloc/rasterloc/internal/common"
	"github.com/rasterloc/rasterloc/internal/detect"
	"github.com/rasterloc/rasterloc/internal/eligibility"
	"github.com/rasterloc/rasterloc/internal/packager"
	"github.com/rasterloc/rasterloc/internal/qe"
	"github.com/rasterloc/rasterloc/internal/region"
	"github.com/rasterloc/rasterloc/internal/reinsert"
	"github.com/rasterloc/rasterloc/internal/runlog"
	"github.com/rasterloc/rasterloc/internal/textfit"
	"github.com/rasterloc/rasterloc/internal/translator"
)

// Localizer runs the full per-asset localization flow. One Localizer owns
// one font handle and must not be shared across goroutines; parallel batch
// processing builds one Localizer per worker.
type Localizer struct {
	detector   detect.Detector
	translator translator.Translator
	fonts      *textfit.FontSet
	engine     *reinsert.Engine
	scorer     *qe.Client
	log        *runlog.Logger
	logger     *slog.Logger

	source language.Tag
	target language.Tag

	minWords   int
	outDir     string
	packageDir string
	noLocDir   string
	doPackage  bool
}

// Close releases the font handle.
func (l *Localizer) Close() error {
	return l.fonts.Close()
}

// Status classifies a per-asset outcome.
type Status string

const (
	StatusLocalized Status = "localized"
	StatusNoLoc     Status = "noloc"
)

// Result summarizes one processed asset.
type Result struct {
	AssetID     string
	Status      Status
	Reason      string
	Strings     int
	Flagged     int
	OutputPath  string
	PackagePath string
}

// ProcessAsset localizes one file. NoLoc outcomes (ineligible type, too
// little text) are results, not errors; errors mean the asset failed.
func (l *Localizer) ProcessAsset(ctx context.Context, assetPath string) (*Result, error) {
	assetID := strings.TrimSuffix(filepath.Base(assetPath), filepath.Ext(assetPath))
	timer := common.NewNamedTimer(assetID)

	if check := eligibility.Check(assetPath); !check.Eligible {
		l.logger.Info("asset not eligible", "asset", assetID, "reason", check.Reason)
		return l.noLoc(assetPath, assetID, check.Reason, 0)
	}

	regions, err := l.detector.Detect(ctx, assetPath)
	if err != nil {
		return nil, fmt.Errorf("detect %s: %w", assetID, err)
	}
	l.logger.Debug("regions detected", "asset", assetID, "count", len(regions))

	if words := region.WordCount(regions); words < l.minWords {
		reason := fmt.Sprintf("insufficient text: %d words, need %d", words, l.minWords)
		l.logger.Info("asset not localizable", "asset", assetID, "reason", reason)
		return l.noLoc(assetPath, assetID, reason, len(regions))
	}

	translated, err := l.translator.Translate(ctx, regions, l.source, l.target)
	if err != nil {
		return nil, fmt.Errorf("translate %s: %w", assetID, err)
	}

	flagged := l.scoreAdvisory(ctx, assetID, regions, translated)

	outPath := filepath.Join(l.outDir, filepath.Base(assetPath))
	if _, err := l.engine.Reinsert(assetPath, regions, translated, outPath); err != nil {
		return nil, fmt.Errorf("reinsert %s: %w", assetID, err)
	}

	res := &Result{
		AssetID:    assetID,
		Status:     StatusLocalized,
		Strings:    len(regions),
		Flagged:    flagged,
		OutputPath: outPath,
	}

	if l.doPackage {
		pkgPath, err := l.createPackage(assetID, assetPath, outPath, regions, translated)
		if err != nil {
			return nil, err
		}
		res.PackagePath = pkgPath
	}

	timer.Stop()
	l.logger.Info("asset localized", "asset", assetID, "strings", len(regions), "duration", timer.Duration())

	outcome := runlog.OutcomePass
	reason := ""
	if flagged > 0 {
		outcome = runlog.OutcomeEscalated
		reason = fmt.Sprintf("%d strings below QE threshold", flagged)
	}
	if err := l.log.Append(runlog.Record{
		AssetID:          assetID,
		SourceLanguage:   l.source.String(),
		TargetLanguage:   l.target.String(),
		TotalStrings:     len(regions),
		ReviewOutcome:    outcome,
		EscalationReason: reason,
		DurationMS:       timer.Milliseconds(),
	}); err != nil {
		l.logger.Warn("run log write failed", "asset", assetID, "error", err)
	}
	return res, nil
}

// ProcessAll localizes assets sequentially, in order. Per-asset failures are
// collected, not fatal: remaining assets still run.
func (l *Localizer) ProcessAll(ctx context.Context, assetPaths []string) ([]Result, error) {
	results := make([]Result, 0, len(assetPaths))
	var errs []error
	for _, path := range assetPaths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := l.ProcessAsset(ctx, path)
		if err != nil {
			l.logger.Error("asset failed", "asset", path, "error", err)
			errs = append(errs, err)
			continue
		}
		results = append(results, *res)
	}
	return results, errors.Join(errs...)
}

// scoreAdvisory runs QE scoring when configured. Scoring failures are logged
// and ignored: quality estimation never blocks localization.
func (l *Localizer) scoreAdvisory(ctx context.Context, assetID string, src, tgt []region.TextRegion) int {
	if l.scorer == nil {
		return 0
	}
	results, err := l.scorer.Score(ctx, src, tgt, l.target)
	if err != nil {
		l.logger.Warn("qe scoring skipped", "asset", assetID, "error", err)
		return 0
	}
	flagged := qe.Flagged(results)
	for _, r := range flagged {
		l.logger.Info("translation flagged by qe",
			"asset", assetID, "source", r.Source, "translated", r.Translated, "score", r.Score)
	}
	return len(flagged)
}

func (l *Localizer) createPackage(assetID, assetPath, outPath string, src, tgt []region.TextRegion) (string, error) {
	pkgPath, err := packager.Create(packager.Request{
		AssetID:        assetID,
		OriginalPath:   assetPath,
		LocalizedPath:  outPath,
		SourceRegions:  src,
		TargetRegions:  tgt,
		SourceLanguage: l.source,
		TargetLanguage: l.target,
		OutputDir:      l.packageDir,
	})
	if err != nil {
		return "", fmt.Errorf("package %s: %w", assetID, err)
	}
	return pkgPath, nil
}

func (l *Localizer) noLoc(assetPath, assetID, reason string, strings int) (*Result, error) {
	if l.noLocDir != "" {
		if err := copyIfAbsent(assetPath, filepath.Join(l.noLocDir, filepath.Base(assetPath))); err != nil {
			l.logger.Warn("no-loc copy failed", "asset", assetID, "error", err)
		}
	}
	if err := l.log.Append(runlog.Record{
		AssetID:          assetID,
		SourceLanguage:   l.source.String(),
		TargetLanguage:   l.target.String(),
		TotalStrings:     strings,
		ReviewOutcome:    runlog.OutcomeNoLoc,
		EscalationReason: reason,
	}); err != nil {
		l.logger.Warn("run log write failed", "asset", assetID, "error", err)
	}
	return &Result{AssetID: assetID, Status: StatusNoLoc, Reason: reason, Strings: strings}, nil
}

// copyIfAbsent copies src to dst unless dst already exists.
func copyIfAbsent(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return nil
	}
	if _, err := os.Stat(src); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	in, err := os.Open(src) //nolint:gosec // G304: copying a caller-provided asset
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	out, err := os.Create(dst) //nolint:gosec // G304: destination under configured no-loc dir
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	_, err = io.Copy(out, in)
	return err
}
