// Package config turns viper settings into the immutable snapshot a
// pipeline run reads. Changing settings requires a stop and restart.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/screenlate/internal/ocr"
	"codeberg.org/snonux/screenlate/internal/overlay"
	"codeberg.org/snonux/screenlate/internal/pipeline"
	"codeberg.org/snonux/screenlate/internal/translation"
)

// Config is everything one run needs
type Config struct {
	Translation translation.Config
	Pipeline    pipeline.Options
	OCR         OCR
	Overlay     Overlay
	Log         Log
}

// OCR holds recognizer settings
type OCR struct {
	Language string
	Options  ocr.Options
}

// Overlay holds the overlay style and where to write snapshots
type Overlay struct {
	Style    overlay.Style
	Snapshot string
}

// Log holds logger settings
type Log struct {
	Debug bool
	File  string
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	tc := translation.DefaultConfig()
	po := pipeline.DefaultOptions()
	oo := ocr.DefaultOptions()

	v.SetDefault("engine", string(tc.Engine))
	v.SetDefault("deepl.timeout", tc.DeepLTimeout)
	v.SetDefault("groq.model", tc.GroqModel)
	v.SetDefault("groq.timeout", tc.GroqTimeout)
	v.SetDefault("local.endpoint", tc.LocalEndpoint)
	v.SetDefault("local.model", tc.LocalModel)
	v.SetDefault("local.timeout", tc.LocalTimeout)
	v.SetDefault("gemini.model", tc.GeminiModel)
	v.SetDefault("gemini.timeout", tc.GeminiTimeout)

	v.SetDefault("lang.source", po.SourceLang)
	v.SetDefault("lang.target", po.TargetLang)

	v.SetDefault("overlay.text_color", "#ffff00")
	v.SetDefault("overlay.text_alpha", 1.0)
	v.SetDefault("overlay.background_color", "#000000")
	v.SetDefault("overlay.background_alpha", 0.85)
	v.SetDefault("overlay.width_factor", 1.3)
	v.SetDefault("overlay.dpi_scale", 1.0)

	v.SetDefault("capture.interval", po.Interval)
	v.SetDefault("capture.follow_interval", po.FollowInterval)
	v.SetDefault("capture.idle_backoff", false)

	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.min_confidence", oo.MinConfidence)
	v.SetDefault("ocr.scale", oo.Scale)
	v.SetDefault("ocr.paragraphs", oo.Paragraphs)

	v.SetDefault("pipeline.max_inflight", po.MaxInflight)
	v.SetDefault("pipeline.max_batch", po.MaxBatch)
	v.SetDefault("pipeline.queue_size", po.QueueSize)
	v.SetDefault("pipeline.drain_timeout", po.DrainTimeout)
	v.SetDefault("pipeline.rate_limit_cooldown", tc.RateLimitCooldown)
}

// Load reads a snapshot from v. It does not validate; call Validate.
func Load(v *viper.Viper) (*Config, error) {
	engine, err := translation.ParseEngine(v.GetString("engine"))
	if err != nil {
		return nil, err
	}

	textColor, err := overlay.ParseColor(v.GetString("overlay.text_color"), v.GetFloat64("overlay.text_alpha"))
	if err != nil {
		return nil, fmt.Errorf("overlay.text_color: %w", err)
	}
	background, err := overlay.ParseColor(v.GetString("overlay.background_color"), v.GetFloat64("overlay.background_alpha"))
	if err != nil {
		return nil, fmt.Errorf("overlay.background_color: %w", err)
	}

	cfg := &Config{
		Translation: translation.Config{
			Engine:            engine,
			DeepLKey:          v.GetString("deepl.api_key"),
			DeepLEndpoint:     v.GetString("deepl.endpoint"),
			DeepLTimeout:      v.GetDuration("deepl.timeout"),
			GroqKey:           v.GetString("groq.api_key"),
			GroqModel:         v.GetString("groq.model"),
			GroqBaseURL:       translation.GroqBaseURL,
			GroqTimeout:       v.GetDuration("groq.timeout"),
			LocalEndpoint:     v.GetString("local.endpoint"),
			LocalModel:        v.GetString("local.model"),
			LocalTimeout:      v.GetDuration("local.timeout"),
			GeminiKey:         v.GetString("gemini.api_key"),
			GeminiModel:       v.GetString("gemini.model"),
			GeminiTimeout:     v.GetDuration("gemini.timeout"),
			RateLimitCooldown: v.GetDuration("pipeline.rate_limit_cooldown"),
		},
		Pipeline: pipeline.Options{
			SourceLang:     v.GetString("lang.source"),
			TargetLang:     v.GetString("lang.target"),
			Interval:       v.GetDuration("capture.interval"),
			FollowInterval: v.GetDuration("capture.follow_interval"),
			IdleBackoff:    v.GetBool("capture.idle_backoff"),
			MaxInflight:    v.GetInt("pipeline.max_inflight"),
			MaxBatch:       v.GetInt("pipeline.max_batch"),
			QueueSize:      v.GetInt("pipeline.queue_size"),
			DrainTimeout:   v.GetDuration("pipeline.drain_timeout"),
		},
		OCR: OCR{
			Language: v.GetString("ocr.language"),
			Options: ocr.Options{
				MinConfidence: v.GetFloat64("ocr.min_confidence"),
				Scale:         v.GetFloat64("ocr.scale"),
				Paragraphs:    v.GetBool("ocr.paragraphs"),
			},
		},
		Overlay: Overlay{
			Style: overlay.Style{
				Text:        textColor,
				Background:  background,
				WidthFactor: v.GetFloat64("overlay.width_factor"),
				DPIScale:    v.GetFloat64("overlay.dpi_scale"),
				FontPath:    v.GetString("overlay.font"),
			},
			Snapshot: v.GetString("overlay.snapshot"),
		},
		Log: Log{
			Debug: v.GetBool("log.debug"),
			File:  v.GetString("log.file"),
		},
	}

	return cfg, nil
}

// Validate reports the first setting that cannot work
func (c *Config) Validate() error {
	t := c.Translation
	switch t.Engine {
	case translation.EngineDeepL:
		if t.DeepLKey == "" {
			return fmt.Errorf("DeepL API key not found. Set DEEPL_API_KEY or deepl.api_key in .screenlate.yaml")
		}
	case translation.EngineGroq:
		if t.GroqKey == "" {
			return fmt.Errorf("Groq API key not found. Set GROQ_API_KEY or groq.api_key in .screenlate.yaml")
		}
	case translation.EngineGemini:
		if t.GeminiKey == "" {
			return fmt.Errorf("Gemini API key not found. Set GEMINI_API_KEY or gemini.api_key in .screenlate.yaml")
		}
	case translation.EngineLocal:
		if t.LocalEndpoint == "" {
			return fmt.Errorf("local.endpoint must be set for the local engine")
		}
	}
	if t.Timeout() <= 0 {
		return fmt.Errorf("%s timeout must be positive", t.Engine)
	}

	p := c.Pipeline
	if p.SourceLang == "" || p.TargetLang == "" {
		return fmt.Errorf("lang.source and lang.target must be set")
	}
	if p.Interval < 10*time.Millisecond {
		return fmt.Errorf("capture.interval must be at least 10ms, got %v", p.Interval)
	}
	if p.FollowInterval < 0 {
		return fmt.Errorf("capture.follow_interval must not be negative")
	}
	if p.MaxInflight < 1 || p.MaxBatch < 1 || p.QueueSize < 1 {
		return fmt.Errorf("pipeline.max_inflight, pipeline.max_batch and pipeline.queue_size must be at least 1")
	}
	if p.DrainTimeout < 0 {
		return fmt.Errorf("pipeline.drain_timeout must not be negative")
	}

	o := c.OCR.Options
	if o.MinConfidence < 0 || o.MinConfidence > 1 {
		return fmt.Errorf("ocr.min_confidence must be between 0 and 1, got %v", o.MinConfidence)
	}
	if o.Scale <= 0 {
		return fmt.Errorf("ocr.scale must be positive, got %v", o.Scale)
	}

	s := c.Overlay.Style
	if s.WidthFactor <= 0 || s.DPIScale <= 0 {
		return fmt.Errorf("overlay.width_factor and overlay.dpi_scale must be positive")
	}
	return nil
}
