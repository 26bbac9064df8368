// Package config loads Gesturify settings from defaults, a .env file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by the recognizer and the command server.
type Config struct {
	// Recognizer
	CameraID       int
	FPS            int
	MaxHands       int
	MinConfidence  float64
	MinTracking    float64
	Cooldown       time.Duration
	CommandURL     string
	RequestTimeout time.Duration
	QueueSize      int
	StatusAddr     string
	Tray           bool

	// Command server
	ListenAddr    string
	DataDir       string
	PluginDir     string
	StaticDir     string
	PluginTimeout time.Duration
}

// Default returns the built-in settings.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, ".gesturify")

	return &Config{
		CameraID:       0,
		FPS:            15,
		MaxHands:       1,
		MinConfidence:  0.6,
		MinTracking:    0.6,
		Cooldown:       time.Second,
		CommandURL:     "http://localhost:5000/command",
		RequestTimeout: 5 * time.Second,
		QueueSize:      16,
		StatusAddr:     ":8080",
		ListenAddr:     ":5000",
		DataDir:        dataDir,
		PluginDir:      filepath.Join(dataDir, "plugins"),
		PluginTimeout:  5 * time.Second,
	}
}

// DBPath returns the SQLite database location inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "gesturify.db")
}

// Load builds a Config from a .env file in the working directory (if any),
// GESTURIFY_* environment variables and the given command-line arguments.
func Load(name string, args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := Default()
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	cfg.bindFlags(flags)
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	var err error
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := getenv(key); v != "" && err == nil {
			n, perr := strconv.Atoi(v)
			if perr != nil {
				err = fmt.Errorf("invalid %s: %w", key, perr)
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := getenv(key); v != "" && err == nil {
			d, perr := time.ParseDuration(v)
			if perr != nil {
				err = fmt.Errorf("invalid %s: %w", key, perr)
				return
			}
			*dst = d
		}
	}

	ratio := func(key string, dst *float64) {
		if v := getenv(key); v != "" && err == nil {
			f, perr := strconv.ParseFloat(v, 64)
			if perr != nil {
				err = fmt.Errorf("invalid %s: %w", key, perr)
				return
			}
			*dst = f
		}
	}

	num("GESTURIFY_CAMERA_ID", &c.CameraID)
	num("GESTURIFY_FPS", &c.FPS)
	num("GESTURIFY_MAX_HANDS", &c.MaxHands)
	num("GESTURIFY_QUEUE_SIZE", &c.QueueSize)
	dur("GESTURIFY_COOLDOWN", &c.Cooldown)
	dur("GESTURIFY_REQUEST_TIMEOUT", &c.RequestTimeout)
	dur("GESTURIFY_PLUGIN_TIMEOUT", &c.PluginTimeout)
	str("GESTURIFY_COMMAND_URL", &c.CommandURL)
	str("GESTURIFY_STATUS_ADDR", &c.StatusAddr)
	str("GESTURIFY_LISTEN_ADDR", &c.ListenAddr)
	str("GESTURIFY_DATA_DIR", &c.DataDir)
	str("GESTURIFY_PLUGIN_DIR", &c.PluginDir)
	str("GESTURIFY_STATIC_DIR", &c.StaticDir)

	ratio("GESTURIFY_MIN_CONFIDENCE", &c.MinConfidence)
	ratio("GESTURIFY_MIN_TRACKING_CONFIDENCE", &c.MinTracking)
	if v := getenv("GESTURIFY_TRAY"); v != "" && err == nil {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			return fmt.Errorf("invalid GESTURIFY_TRAY: %w", perr)
		}
		c.Tray = b
	}

	return err
}

func (c *Config) bindFlags(set *flag.FlagSet) {
	set.IntVar(&c.CameraID, "camera", c.CameraID, "Camera device ID")
	set.IntVar(&c.FPS, "fps", c.FPS, "Frames per second to process")
	set.IntVar(&c.MaxHands, "max-hands", c.MaxHands, "Maximum hands to track")
	set.Float64Var(&c.MinConfidence, "min-confidence", c.MinConfidence, "Minimum detection confidence")
	set.Float64Var(&c.MinTracking, "min-tracking-confidence", c.MinTracking, "Minimum tracking confidence")
	set.DurationVar(&c.Cooldown, "cooldown", c.Cooldown, "Suppression window for repeated gestures")
	set.StringVar(&c.CommandURL, "command-url", c.CommandURL, "Command endpoint receiving gesture events")
	set.DurationVar(&c.RequestTimeout, "request-timeout", c.RequestTimeout, "Timeout for command requests")
	set.IntVar(&c.QueueSize, "queue-size", c.QueueSize, "Pending gesture events before new ones are dropped")
	set.StringVar(&c.StatusAddr, "status-addr", c.StatusAddr, "Address for the live frame feed (empty disables it)")
	set.BoolVar(&c.Tray, "tray", c.Tray, "Show a system tray icon")
	set.StringVar(&c.ListenAddr, "listen", c.ListenAddr, "Command server listen address")
	set.StringVar(&c.DataDir, "data-dir", c.DataDir, "Directory for the database")
	set.StringVar(&c.PluginDir, "plugin-dir", c.PluginDir, "Directory containing plugins")
	set.StringVar(&c.StaticDir, "static-dir", c.StaticDir, "Directory of static files to serve")
	set.DurationVar(&c.PluginTimeout, "plugin-timeout", c.PluginTimeout, "Timeout for plugin execution")
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.MaxHands <= 0 {
		return fmt.Errorf("max hands must be positive, got %d", c.MaxHands)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min confidence must be between 0 and 1, got %f", c.MinConfidence)
	}
	if c.MinTracking < 0 || c.MinTracking > 1 {
		return fmt.Errorf("min tracking confidence must be between 0 and 1, got %f", c.MinTracking)
	}
	if c.Cooldown <= 0 {
		return fmt.Errorf("cooldown must be positive, got %s", c.Cooldown)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue size must be positive, got %d", c.QueueSize)
	}
	if c.CommandURL == "" {
		return errors.New("command URL is required")
	}
	return nil
}

// WebDir returns StaticDir when set. Otherwise it looks for a web directory
// relative to the working directory and then inside DataDir, and returns the
// first one found or an empty string.
func (c *Config) WebDir() string {
	if c.StaticDir != "" {
		return c.StaticDir
	}

	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	dataWeb := filepath.Join(c.DataDir, "web")
	if info, err := os.Stat(dataWeb); err == nil && info.IsDir() {
		return dataWeb
	}

	return ""
}
