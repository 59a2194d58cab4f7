package pipeline

import (
	"fmt"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/rasterloc/rasterloc/internal/detect"
	"github.com/rasterloc/rasterloc/internal/qe"
	"github.com/rasterloc/rasterloc/internal/reinsert"
	"github.com/rasterloc/rasterloc/internal/runlog"
	"github.com/rasterloc/rasterloc/internal/textfit"
	"github.com/rasterloc/rasterloc/internal/translator"
)

// Builder constructs a Localizer with fluent configuration. Build may be
// called more than once; every call returns an independent Localizer with
// its own font handle, so parallel batch workers can each build their own.
type Builder struct {
	detector   detect.Detector
	translator translator.Translator
	trCfg      translator.Config
	qeCfg      qe.Config
	logger     *slog.Logger

	source language.Tag
	target language.Tag

	minWords   int
	outDir     string
	packageDir string
	noLocDir   string
	runLogPath string
	doPackage  bool
}

// NewBuilder creates a new localizer builder with defaults.
func NewBuilder() *Builder {
	return &Builder{
		trCfg:    translator.DefaultConfig(),
		qeCfg:    qe.DefaultConfig(),
		source:   language.MustParse("en-US"),
		target:   language.MustParse("it-IT"),
		minWords: 3,
		outDir:   "output/localized",
	}
}

// WithDetector overrides the region source. Defaults to sidecar files next
// to each asset.
func (b *Builder) WithDetector(d detect.Detector) *Builder {
	if d != nil {
		b.detector = d
	}
	return b
}

// WithTranslator overrides the translator, bypassing WithTranslatorConfig.
func (b *Builder) WithTranslator(t translator.Translator) *Builder {
	if t != nil {
		b.translator = t
	}
	return b
}

// WithTranslatorConfig sets the backend configuration used when no explicit
// translator was supplied.
func (b *Builder) WithTranslatorConfig(cfg translator.Config) *Builder {
	b.trCfg = cfg
	return b
}

// WithLanguages sets the source and target language pair.
func (b *Builder) WithLanguages(source, target language.Tag) *Builder {
	b.source = source
	b.target = target
	return b
}

// WithQE enables advisory quality estimation when the config carries an
// endpoint and token.
func (b *Builder) WithQE(cfg qe.Config) *Builder {
	b.qeCfg = cfg
	return b
}

// WithRunLog sets the JSONL run record path. Empty disables run logging.
func (b *Builder) WithRunLog(path string) *Builder {
	b.runLogPath = path
	return b
}

// WithOutputDir sets where localized images are written.
func (b *Builder) WithOutputDir(dir string) *Builder {
	if dir != "" {
		b.outDir = dir
	}
	return b
}

// WithPackageDir sets where review packages are written.
func (b *Builder) WithPackageDir(dir string) *Builder {
	if dir != "" {
		b.packageDir = dir
	}
	return b
}

// WithNoLocDir sets where non-localizable assets are copied. Empty disables
// the copy; the run log record is still written.
func (b *Builder) WithNoLocDir(dir string) *Builder {
	b.noLocDir = dir
	return b
}

// WithMinWordCount sets the localization threshold in detected words.
func (b *Builder) WithMinWordCount(n int) *Builder {
	if n >= 0 {
		b.minWords = n
	}
	return b
}

// WithPackaging toggles review package creation.
func (b *Builder) WithPackaging(enabled bool) *Builder {
	b.doPackage = enabled
	return b
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Build initializes the localizer components.
func (b *Builder) Build() (*Localizer, error) {
	if b.doPackage && b.packageDir == "" {
		return nil, fmt.Errorf("packaging enabled without a package directory")
	}

	tr := b.translator
	if tr == nil {
		var err error
		tr, err = translator.New(b.trCfg)
		if err != nil {
			return nil, fmt.Errorf("init translator: %w", err)
		}
	}

	det := b.detector
	if det == nil {
		det = detect.NewSidecarDetector("")
	}

	fonts, err := textfit.NewFontSet()
	if err != nil {
		return nil, fmt.Errorf("init fonts: %w", err)
	}

	var scorer *qe.Client
	if b.qeCfg.Enabled() {
		scorer = qe.NewClient(b.qeCfg)
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Localizer{
		detector:   det,
		translator: tr,
		fonts:      fonts,
		engine:     reinsert.NewEngine(fonts),
		scorer:     scorer,
		log:        runlog.New(b.runLogPath),
		logger:     logger,
		source:     b.source,
		target:     b.target,
		minWords:   b.minWords,
		outDir:     b.outDir,
		packageDir: b.packageDir,
		noLocDir:   b.noLocDir,
		doPackage:  b.doPackage,
	}, nil
}
