// Package main provides the entry point for the speakgpt CLI.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/ftjoosen-hub/speakgpt/speech"
	"github.com/ftjoosen-hub/speakgpt/speech/audio"
	"github.com/ftjoosen-hub/speakgpt/speech/synth"
	"github.com/ftjoosen-hub/speakgpt/ui"
	"github.com/ftjoosen-hub/speakgpt/utils"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	readmeNames = []string{"README.md", "README", "Readme.md", "readme.md"}

	configFile string
	style      string
	width      uint
	voiceName  string
	serverURL  string
	direct     bool
	markdown   bool
	watch      bool

	rootCmd = &cobra.Command{
		Use:   "speakgpt [SOURCE]",
		Short: "Read markdown aloud in your terminal",
		Long: paragraph(
			fmt.Sprintf("\nRender markdown on the CLI and %s through a synthesis backend.", keyword("read it aloud")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// source provides a readable markdown source.
type source struct {
	reader io.ReadCloser
	URL    string
}

// sourceFromArg parses an argument and creates a readable source for it.
func sourceFromArg(arg string) (*source, error) {
	// from stdin
	if arg == "-" {
		return &source{reader: os.Stdin}, nil
	}

	// HTTP(S) URLs:
	if u, err := url.ParseRequestURI(arg); err == nil && strings.Contains(arg, "://") {
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("%s is not a supported protocol", u.Scheme)
		}
		resp, err := http.Get(u.String()) //nolint:noctx,bodyclose
		if err != nil {
			return nil, fmt.Errorf("unable to get url: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
		}
		return &source{resp.Body, u.String()}, nil
	}

	// a directory: pick its readme
	if arg == "" {
		arg = "."
	}
	if st, err := os.Stat(arg); err == nil && st.IsDir() {
		for _, name := range readmeNames {
			path := filepath.Join(arg, name)
			if r, err := os.Open(path); err == nil {
				u, _ := filepath.Abs(path)
				return &source{r, u}, nil
			}
		}
		return nil, errors.New("missing markdown source")
	}

	r, err := os.Open(arg)
	if err != nil {
		return nil, fmt.Errorf("unable to open file: %w", err)
	}
	u, err := filepath.Abs(arg)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path: %w", err)
	}
	return &source{r, u}, nil
}

// validateStyle checks if the style is a default style, if not, checks
// that the custom style exists.
func validateStyle(style string) error {
	if style != "auto" && styles.DefaultStyles[style] == nil {
		style = utils.ExpandPath(style)
		if _, err := os.Stat(style); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func validateOptions(cmd *cobra.Command) error {
	// grab config values from Viper
	width = viper.GetUint("width")
	serverURL = viper.GetString("server")
	markdown = viper.GetBool("markdown")
	voiceName = viper.GetString("voice")

	style = viper.GetString("style")
	if err := validateStyle(style); err != nil {
		return err
	}

	if voiceName != "" {
		if _, ok := speech.MatchVoice(voiceName); !ok {
			return fmt.Errorf("unknown voice %q", voiceName)
		}
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	if !isTerminal && !cmd.Flags().Changed("style") {
		style = "notty"
	}

	// Detect terminal width
	if !cmd.Flags().Changed("width") {
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}
			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func execute(cmd *cobra.Command, args []string) error {
	var src *source
	if yes, err := stdinIsPipe(); err != nil {
		return err
	} else if yes {
		src = &source{reader: os.Stdin}
	} else {
		arg := ""
		if len(args) > 0 {
			arg = args[0]
		}
		s, err := sourceFromArg(arg)
		if err != nil {
			return err
		}
		src = s
	}
	defer src.reader.Close() //nolint:errcheck

	b, err := io.ReadAll(src.reader)
	if err != nil {
		return fmt.Errorf("unable to read from reader: %w", err)
	}
	b = utils.RemoveFrontmatter(b)

	controller, err := buildController()
	if err != nil {
		return err
	}
	defer controller.Close() //nolint:errcheck

	path := ""
	if src.URL != "" && !strings.Contains(src.URL, "://") {
		path = src.URL
	}

	return ui.Run(ui.Config{
		Path:    path,
		Content: string(b),
		Width:   int(width), //nolint:gosec
		Style:   style,
		Watch:   watch,
	}, controller)
}

// buildController assembles the synthesis backend and playback
// controller from flags and environment.
func buildController() (*speech.Controller, error) {
	cfg, err := env.ParseAs[speech.Config]()
	if err != nil {
		return nil, fmt.Errorf("error parsing config: %v", err)
	}
	if voiceName != "" {
		if v, ok := speech.MatchVoice(voiceName); ok {
			cfg.Voice = v.ID
		}
	}
	cfg.MarkdownMode = markdown
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend, err := buildSynthesizer()
	if err != nil {
		return nil, err
	}

	return speech.NewController(backend, audio.NewPlayer, cfg), nil
}

// buildSynthesizer picks the backend: direct upstream calls when asked
// for, otherwise the relay, with direct synthesis as a failover when a
// key is available locally.
func buildSynthesizer() (speech.Synthesizer, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")

	if direct {
		if apiKey == "" {
			return nil, errors.New("direct mode requires OPENAI_API_KEY")
		}
		return synth.NewOpenAIClient(apiKey), nil
	}

	relay := synth.NewRelayClient(serverURL)
	if apiKey == "" {
		return relay, nil
	}
	return synth.NewFallback(relay, synth.NewOpenAIClient(apiKey), 3), nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&style, "style", "s", styles.AutoStyle, "style name or JSON path")
	rootCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap at width (set to 0 to disable)")
	rootCmd.Flags().StringVarP(&voiceName, "voice", "V", "", "synthesis voice (name or fuzzy match)")
	rootCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8585", "relay server URL")
	rootCmd.Flags().BoolVar(&direct, "direct", false, "synthesize against the upstream API directly (requires OPENAI_API_KEY)")
	rootCmd.Flags().BoolVarP(&markdown, "markdown", "m", true, "flatten markdown before speaking")
	rootCmd.Flags().BoolVar(&watch, "watch", false, "reload the source when it changes on disk")

	// Config bindings
	_ = viper.BindPFlag("style", rootCmd.Flags().Lookup("style"))
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("server", rootCmd.Flags().Lookup("server"))
	_ = viper.BindPFlag("markdown", rootCmd.Flags().Lookup("markdown"))

	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("width", 0)
	viper.SetDefault("server", "http://localhost:8585")
	viper.SetDefault("markdown", true)
	viper.SetDefault("voice", "")

	rootCmd.AddCommand(configCmd, serveCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "speakgpt")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "speakgpt")}, dirs...)
	}

	if c := os.Getenv("SPEAKGPT_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("speakgpt")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("speakgpt")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}

	configFile = filepath.Join(dirs[0], "speakgpt.yml")
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
