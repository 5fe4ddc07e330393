package processor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"codeberg.org/snonux/screenlate/internal/cache"
	"codeberg.org/snonux/screenlate/internal/capture"
	"codeberg.org/snonux/screenlate/internal/cli"
	"codeberg.org/snonux/screenlate/internal/config"
	"codeberg.org/snonux/screenlate/internal/glossary"
	"codeberg.org/snonux/screenlate/internal/models"
	"codeberg.org/snonux/screenlate/internal/ocr"
	"codeberg.org/snonux/screenlate/internal/overlay"
	"codeberg.org/snonux/screenlate/internal/pipeline"
	"codeberg.org/snonux/screenlate/internal/target"
	"codeberg.org/snonux/screenlate/internal/translation"
)

// Processor runs screenlate for one invocation
type Processor struct {
	flags  *cli.Flags
	config *config.Config
	logger *zap.SugaredLogger
	out    io.Writer
	cache  *cache.Cache

	// newEngine creates the OCR engine; replaced in tests
	newEngine func(language string) (ocr.Engine, error)
}

// NewProcessor creates a new processor
func NewProcessor(flags *cli.Flags, cfg *config.Config, logger *zap.SugaredLogger) *Processor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Processor{
		flags:  flags,
		config: cfg,
		logger: logger,
		out:    os.Stdout,
		cache:  cache.New(),
		newEngine: func(language string) (ocr.Engine, error) {
			return ocr.NewTesseractEngine(language)
		},
	}
}

// ListModels prints the models offered by the configured engine
func (p *Processor) ListModels(ctx context.Context) error {
	t := p.config.Translation

	var lister *models.Lister
	var current string
	switch t.Engine {
	case translation.EngineGroq:
		lister = models.NewLister("Groq", t.GroqKey, t.GroqBaseURL, true)
		current = t.GroqModel
	case translation.EngineLocal:
		lister = models.NewLister("local", "", strings.TrimRight(t.LocalEndpoint, "/")+"/v1", false)
		current = t.LocalModel
	default:
		return fmt.Errorf("model listing is only available for the groq and local engines, not %s", t.Engine)
	}

	return lister.ListAvailableModels(ctx, p.out, current)
}

// Run translates the target until ctx ends or the target goes away
func (p *Processor) Run(ctx context.Context) error {
	if err := p.config.Validate(); err != nil {
		return err
	}

	backend, err := translation.NewBackend(ctx, &p.config.Translation)
	if err != nil {
		return fmt.Errorf("failed to create translation backend: %w", err)
	}
	if err := backend.IsAvailable(); err != nil {
		return err
	}
	guard := translation.NewGuard(backend, p.config.Translation.Timeout(), p.config.Translation.RateLimitCooldown, p.logger)

	if err := p.seedGlossary(); err != nil {
		return err
	}

	tracker, capturer, err := p.openTarget()
	if err != nil {
		return err
	}

	engine, err := p.newEngine(p.config.OCR.Language)
	if err != nil {
		return fmt.Errorf("failed to start OCR: %w", err)
	}
	recognizer := ocr.NewRecognizer(engine, p.config.OCR.Options, p.logger)
	defer recognizer.Close()

	surface, err := p.newSurface(tracker.Refresh().Rect)
	if err != nil {
		return err
	}

	pl := pipeline.New(pipeline.Components{
		Cache:      p.cache,
		Backend:    guard,
		Capturer:   capturer,
		Recognizer: recognizer,
		Renderer:   overlay.NewRenderer(surface, p.config.Overlay.Style, p.logger),
	}, p.config.Pipeline, p.logger)

	pl.OnStateChange(func(from, to pipeline.State) {
		p.logger.Infow("pipeline state", "from", from.String(), "to", to.String())
	})

	if err := pl.Start(ctx, tracker); err != nil {
		return err
	}
	<-pl.Done()

	p.printSummary(pl.Status())

	runErr := pl.LastError()
	if p.flags.ReplayOnce && errors.Is(runErr, capture.ErrUnavailable) {
		// The replay simply ran out of frames
		return nil
	}
	return runErr
}

func (p *Processor) seedGlossary() error {
	if p.flags.Glossary == "" {
		return nil
	}

	entries, err := glossary.ReadFile(p.flags.Glossary)
	if err != nil {
		return err
	}

	added := glossary.Seed(p.cache, entries, p.config.Pipeline.SourceLang, p.config.Pipeline.TargetLang)
	p.logger.Infow("glossary loaded", "file", p.flags.Glossary, "entries", len(entries), "added", added)
	return nil
}

func (p *Processor) openTarget() (target.Tracker, capture.Capturer, error) {
	switch {
	case p.flags.ReplayDir != "":
		replay, err := capture.NewReplayCapturer(p.flags.ReplayDir, !p.flags.ReplayOnce)
		if err != nil {
			return nil, nil, err
		}
		size, err := replay.FrameSize()
		if err != nil {
			return nil, nil, err
		}
		p.logger.Infow("replaying frames", "dir", p.flags.ReplayDir, "frames", replay.Frames(), "size", size.String())
		return target.NewStaticTracker(0, image.Rectangle{Max: size}), replay, nil

	case p.flags.Window != "":
		handle, err := cli.ParseWindowHandle(p.flags.Window)
		if err != nil {
			return nil, nil, err
		}
		tracker, err := target.NewWindowTracker(handle)
		if err != nil {
			return nil, nil, err
		}
		capturer, err := capture.NewScreenCapturer()
		if err != nil {
			return nil, nil, err
		}
		return tracker, capturer, nil

	default:
		return nil, nil, fmt.Errorf("no target: use --window or --replay")
	}
}

func (p *Processor) newSurface(window image.Rectangle) (overlay.Surface, error) {
	if p.config.Overlay.Snapshot == "" {
		return overlay.NewLogSurface(p.logger), nil
	}

	// The canvas spans from the screen origin to the far corner of the
	// window; boxes outside it are clipped.
	bounds := image.Rectangle{Max: window.Max}
	return overlay.NewCanvasSurface(bounds, p.config.Overlay.Style.FontPath, p.config.Overlay.Snapshot)
}

func (p *Processor) printSummary(status pipeline.Status) {
	fmt.Fprintf(p.out, "\nRun %s finished after %d cycles\n", status.RunID, status.Cycles)
	fmt.Fprintf(p.out, "  Translations: %d ready, %d failed\n", status.Cache.Ready, status.Cache.Failed)
	fmt.Fprintf(p.out, "  Backend requests: %d (cache hits: %d)\n", status.Dispatch.Calls, status.Cache.Hits)
	if status.BackendError != nil {
		fmt.Fprintf(p.out, "  Backend status: %s\n", status.BackendStatus)
	}
	if status.LastError != nil {
		fmt.Fprintf(p.out, "  Stopped by: %v\n", status.LastError)
	}
}
