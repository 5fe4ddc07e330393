package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/screenlate/internal"
	"codeberg.org/snonux/screenlate/internal/config"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "screenlate",
		Short: "Real-time screen text translation overlay",
		Long: `screenlate reads English text inside an application window, translates it
and draws the translation over the original text while following the window.

Text is recognized with Tesseract and translated with DeepL, Groq, Gemini or
a local OpenAI-compatible inference server. Every distinct string is sent to
the translation service only once per session.

Examples:
  screenlate --window 0x1a2b3c                 # Translate a native window (Windows)
  screenlate --replay ./frames --snapshot o.png  # Replay captured frames, write the overlay to o.png
  screenlate --engine groq --list-models       # List models offered by Groq
  screenlate --engine local --glossary ui.txt  # Local LLM with fixed UI translations`,
		Args:    cobra.NoArgs,
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.screenlate.yaml)")

	// Local flags
	cmd.Flags().StringVarP(&flags.Engine, "engine", "e", flags.Engine, "Translation engine: deepl, groq, local or gemini")
	cmd.Flags().StringVar(&flags.SourceLang, "source", flags.SourceLang, "Source language code")
	cmd.Flags().StringVar(&flags.TargetLang, "target", flags.TargetLang, "Target language code")
	cmd.Flags().StringVar(&flags.Glossary, "glossary", "", "Fixed translations file (one 'source = translation' per line)")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List models available for the groq or local engine")

	// Target flags
	cmd.Flags().StringVarP(&flags.Window, "window", "w", "", "Native window handle to translate (decimal or 0x hex)")
	cmd.Flags().StringVar(&flags.ReplayDir, "replay", "", "Use image frames from a directory instead of a live window")
	cmd.Flags().BoolVar(&flags.ReplayOnce, "replay-once", false, "Stop after the last replay frame instead of looping")

	// Capture flags
	cmd.Flags().DurationVarP(&flags.Interval, "interval", "i", flags.Interval, "Capture interval")
	cmd.Flags().BoolVar(&flags.IdleBackoff, "idle-backoff", false, "Capture less often while the text does not change")

	// Overlay flags
	cmd.Flags().StringVar(&flags.Snapshot, "snapshot", "", "Write the overlay to this image file after every change")
	cmd.Flags().StringVar(&flags.Font, "font", "", "TrueType/OpenType font for the overlay (default: built-in bitmap font)")

	// Engine flags
	cmd.Flags().StringVar(&flags.DeepLEndpoint, "deepl-endpoint", "", "DeepL API URL (default: derived from the key)")
	cmd.Flags().StringVar(&flags.GroqModel, "groq-model", flags.GroqModel, "Groq chat model")
	cmd.Flags().StringVar(&flags.LocalEndpoint, "local-endpoint", flags.LocalEndpoint, "Local OpenAI-compatible server")
	cmd.Flags().StringVar(&flags.LocalModel, "local-model", flags.LocalModel, "Local model name")
	cmd.Flags().StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini model")

	// Logging flags
	cmd.Flags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&flags.LogFile, "log-file", "", "Also write logs to this file (with --debug default: timestamped file next to the binary)")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("engine", cmd.Flags().Lookup("engine"))
	viper.BindPFlag("lang.source", cmd.Flags().Lookup("source"))
	viper.BindPFlag("lang.target", cmd.Flags().Lookup("target"))
	viper.BindPFlag("capture.interval", cmd.Flags().Lookup("interval"))
	viper.BindPFlag("capture.idle_backoff", cmd.Flags().Lookup("idle-backoff"))
	viper.BindPFlag("overlay.snapshot", cmd.Flags().Lookup("snapshot"))
	viper.BindPFlag("overlay.font", cmd.Flags().Lookup("font"))
	viper.BindPFlag("deepl.endpoint", cmd.Flags().Lookup("deepl-endpoint"))
	viper.BindPFlag("groq.model", cmd.Flags().Lookup("groq-model"))
	viper.BindPFlag("local.endpoint", cmd.Flags().Lookup("local-endpoint"))
	viper.BindPFlag("local.model", cmd.Flags().Lookup("local-model"))
	viper.BindPFlag("gemini.model", cmd.Flags().Lookup("gemini-model"))
	viper.BindPFlag("log.debug", cmd.Flags().Lookup("debug"))
	viper.BindPFlag("log.file", cmd.Flags().Lookup("log-file"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	// A .env file in the working directory provides API keys; existing
	// environment variables win.
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment from .env")
	}

	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".screenlate" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".screenlate")
	}

	// Environment variables
	viper.SetEnvPrefix("SCREENLATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// LoadConfig builds the run snapshot from viper and resolves API keys.
// The result is not validated yet.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	cfg.Translation.DeepLKey = GetDeepLKey()
	cfg.Translation.GroqKey = GetGroqKey()
	cfg.Translation.GeminiKey = GetGeminiKey()
	return cfg, nil
}

// GetDeepLKey retrieves the DeepL API key from environment or config
func GetDeepLKey() string {
	return getKey("DEEPL_API_KEY", "deepl.api_key")
}

// GetGroqKey retrieves the Groq API key from environment or config
func GetGroqKey() string {
	return getKey("GROQ_API_KEY", "groq.api_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	return getKey("GEMINI_API_KEY", "gemini.api_key")
}

func getKey(env, key string) string {
	// First check environment variable
	if value := os.Getenv(env); value != "" {
		return value
	}

	// Then check config file
	return viper.GetString(key)
}

// ParseWindowHandle parses a window handle given in decimal or 0x hex
func ParseWindowHandle(s string) (uintptr, error) {
	handle, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid window handle %q: %w", s, err)
	}
	if handle == 0 {
		return 0, fmt.Errorf("window handle must not be zero")
	}
	return uintptr(handle), nil
}
