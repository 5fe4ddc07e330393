package cli

import "time"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	Engine     string
	SourceLang string
	TargetLang string
	Glossary   string
	ListModels bool

	// Target flags
	Window     string
	ReplayDir  string
	ReplayOnce bool

	// Capture flags
	Interval    time.Duration
	IdleBackoff bool

	// Overlay flags
	Snapshot string
	Font     string

	// Engine flags
	DeepLEndpoint string
	GroqModel     string
	LocalEndpoint string
	LocalModel    string
	GeminiModel   string

	// Logging flags
	Debug   bool
	LogFile string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Engine:        "deepl",
		SourceLang:    "EN",
		TargetLang:    "JA",
		Interval:      500 * time.Millisecond,
		GroqModel:     "llama-3.3-70b-versatile",
		LocalEndpoint: "http://localhost:5000",
		LocalModel:    "default",
		GeminiModel:   "gemini-2.0-flash",
	}
}
