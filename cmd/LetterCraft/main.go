package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mdp/qrterminal/v3"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/api"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/export"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/genai"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/letter"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/lockfile"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/observability"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/share"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/store"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for LetterCraft state data
	DefaultStateDir = "/var/lib/lettercraft"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "lettercraft.db"
	// DefaultAPIAddr is the default listen address
	DefaultAPIAddr = ":8080"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	config := loadEnvironmentConfig()
	initializeLogger(config.Debug)

	flags, err := parseCommandLineFlags(config, os.Args[1:])
	if err != nil {
		slog.Error("Failed to parse flags", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flags, os.Stdout); err != nil {
		var lockErr *lockfile.LockError
		if errors.As(err, &lockErr) {
			fmt.Fprintln(os.Stderr, lockErr.Error())
		}
		slog.Error("LetterCraft failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("LetterCraft exited successfully")
}

// Config holds environment configuration
type Config struct {
	APIKey            string
	CompletionURL     string
	Model             string
	CompletionTimeout time.Duration
	StateDir          string
	DatabaseURL       string
	APIAddr           string
	PublicURL         string
	PDFFont           string
	SessionTTL        time.Duration
	Debug             bool
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromNumber  string
}

// Flags holds command line flag values
type Flags struct {
	apiKey        string
	completionURL string
	model         string
	stateDir      string
	dbDSN         string
	apiAddr       string
	publicURL     string
	pdfFont       string
	showQR        bool
	debug         bool

	timeout    time.Duration
	sessionTTL time.Duration
	twilioSID  string
	twilioTok  string
	twilioFrom string
}

// initializeLogger sets up structured logging, at debug level when enabled
func initializeLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		APIKey:            os.Getenv("DEEPSEEK_API_KEY"),
		CompletionURL:     util.GetEnv("LETTERCRAFT_COMPLETION_URL", genai.DefaultBaseURL),
		Model:             util.GetEnv("LETTERCRAFT_MODEL", genai.DefaultModel),
		CompletionTimeout: util.ParseDurationEnv("LETTERCRAFT_COMPLETION_TIMEOUT", genai.DefaultTimeout),
		StateDir:          util.GetEnv("LETTERCRAFT_STATE_DIR", DefaultStateDir),
		DatabaseURL:       util.GetEnv("DATABASE_URL", ""),
		APIAddr:           util.GetEnv("API_ADDR", DefaultAPIAddr),
		PublicURL:         util.GetEnv("LETTERCRAFT_PUBLIC_URL", ""),
		PDFFont:           util.GetEnv("LETTERCRAFT_PDF_FONT", ""),
		SessionTTL:        util.ParseDurationEnv("LETTERCRAFT_SESSION_TTL", letter.DefaultSessionTTL),
		Debug:             util.ParseBoolEnv("LETTERCRAFT_DEBUG", false),
		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:  os.Getenv("TWILIO_FROM_NUMBER"),
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No DATABASE_URL provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DEEPSEEK_API_KEY_SET", config.APIKey != "",
		"LETTERCRAFT_COMPLETION_URL", config.CompletionURL,
		"LETTERCRAFT_MODEL", config.Model,
		"LETTERCRAFT_STATE_DIR", config.StateDir,
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"API_ADDR", config.APIAddr,
		"TWILIO_SET", config.TwilioAccountSID != "")

	return config
}

// parseCommandLineFlags parses args with environment defaults
func parseCommandLineFlags(config Config, args []string) (Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("lettercraft", flag.ContinueOnError)
	fs.StringVar(&flags.apiKey, "api-key", config.APIKey, "DeepSeek API key (overrides $DEEPSEEK_API_KEY)")
	fs.StringVar(&flags.completionURL, "completion-url", config.CompletionURL, "OpenAI-compatible API base URL (overrides $LETTERCRAFT_COMPLETION_URL)")
	fs.StringVar(&flags.model, "model", config.Model, "chat model name (overrides $LETTERCRAFT_MODEL)")
	fs.StringVar(&flags.stateDir, "state-dir", config.StateDir, "state directory for LetterCraft data (overrides $LETTERCRAFT_STATE_DIR)")
	fs.StringVar(&flags.dbDSN, "db-dsn", config.DatabaseURL, "database DSN, SQLite path or PostgreSQL URL; empty keeps letters in memory (overrides $DATABASE_URL)")
	fs.StringVar(&flags.apiAddr, "api-addr", config.APIAddr, "API server address (overrides $API_ADDR)")
	fs.StringVar(&flags.publicURL, "public-url", config.PublicURL, "URL printed at startup (overrides $LETTERCRAFT_PUBLIC_URL)")
	fs.StringVar(&flags.pdfFont, "pdf-font", config.PDFFont, "TrueType font used for PDF export (overrides $LETTERCRAFT_PDF_FONT)")
	fs.BoolVar(&flags.showQR, "qr", false, "print the public URL as a terminal QR code")
	fs.BoolVar(&flags.debug, "debug", config.Debug, "write completion debug logs to the state directory (overrides $LETTERCRAFT_DEBUG)")
	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}
	flags.timeout = config.CompletionTimeout
	flags.sessionTTL = config.SessionTTL
	flags.twilioSID = config.TwilioAccountSID
	flags.twilioTok = config.TwilioAuthToken
	flags.twilioFrom = config.TwilioFromNumber

	// Follow a moved state directory when the DSN was the state-dir default.
	if flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && flags.stateDir != config.StateDir {
		flags.dbDSN = filepath.Join(flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "old_state_dir", config.StateDir, "new_state_dir", flags.stateDir)
	}

	slog.Debug("flags parsed",
		"stateDir", flags.stateDir,
		"dbDSN_set", flags.dbDSN != "",
		"apiKeySet", flags.apiKey != "",
		"apiAddr", flags.apiAddr,
		"showQR", flags.showQR)
	return flags, nil
}

// usesSQLite reports whether the configured DSN is a local SQLite file.
func usesSQLite(flags Flags) bool {
	return flags.dbDSN != "" && store.DetectDSNType(flags.dbDSN) == "sqlite"
}

func storeKind(flags Flags) string {
	if flags.dbDSN == "" {
		return "memory"
	}
	return store.DetectDSNType(flags.dbDSN)
}

// ensureDirectoriesExist creates the state directory and the directory of a file-based DSN
func ensureDirectoriesExist(flags Flags) error {
	dirs := []string{flags.stateDir}
	if usesSQLite(flags) {
		dirs = append(dirs, filepath.Dir(flags.dbDSN))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// buildGenAIOptions constructs completion client options
func buildGenAIOptions(flags Flags) []genai.Option {
	opts := []genai.Option{
		genai.WithAPIKey(flags.apiKey),
		genai.WithBaseURL(flags.completionURL),
		genai.WithModel(flags.model),
	}
	if flags.timeout > 0 {
		opts = append(opts, genai.WithHTTPClient(&http.Client{Timeout: flags.timeout}))
	}
	if flags.debug {
		opts = append(opts, genai.WithDebugMode(true, flags.stateDir))
	}
	return opts
}

// buildShareOptions returns Twilio options, or nil when sharing is not configured
func buildShareOptions(flags Flags) []share.Option {
	if flags.twilioSID == "" {
		return nil
	}
	return []share.Option{
		share.WithAccountSID(flags.twilioSID),
		share.WithAuthToken(flags.twilioTok),
		share.WithFromNumber(flags.twilioFrom),
	}
}

// buildAPIOptions constructs API server options
func buildAPIOptions(flags Flags, out io.Writer) []api.Option {
	opts := []api.Option{api.WithAddr(flags.apiAddr)}
	if flags.showQR {
		opts = append(opts, api.WithReadyFunc(func(addr string) {
			printQRCode(out, publicURL(flags.publicURL, addr))
		}))
	}
	return opts
}

// publicURL returns configured, or a URL derived from the bound address.
func publicURL(configured, addr string) string {
	if configured != "" {
		return configured
	}
	if len(addr) > 0 && addr[0] == ':' {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

// printQRCode writes url as a half-block terminal QR code.
func printQRCode(w io.Writer, url string) {
	fmt.Fprintf(w, "LetterCraft is available at %s\n", url)
	qrterminal.GenerateHalfBlock(url, qrterminal.L, w)
}

// run wires every module and serves until ctx is cancelled.
func run(ctx context.Context, flags Flags, out io.Writer) error {
	if err := ensureDirectoriesExist(flags); err != nil {
		return err
	}
	if usesSQLite(flags) {
		lock, err := lockfile.AcquireLock(flags.stateDir)
		if err != nil {
			return err
		}
		defer lock.Release()
	}

	shutdownTracing := observability.Init(ctx, observability.Config{
		ServiceName: "lettercraft",
		Environment: util.GetEnv("LETTERCRAFT_ENV", "development"),
		Version:     version,
	})
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	st, err := store.New(flags.dbDSN)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	client, err := genai.NewClient(buildGenAIOptions(flags)...)
	if err != nil {
		return err
	}
	if !client.KeyConfigured() {
		slog.Warn("DEEPSEEK_API_KEY is not configured; generation and translation will return a configuration error")
	}

	pdf, err := export.NewPDFRenderer(flags.pdfFont)
	if err != nil {
		return fmt.Errorf("failed to load PDF font: %w", err)
	}
	serverOpts := []api.ServerOption{
		api.WithExporter(export.NewExporter(pdf)),
		api.WithSessionManager(letter.NewSessionManager(flags.sessionTTL)),
	}
	if shareOpts := buildShareOptions(flags); shareOpts != nil {
		tw, err := share.NewTwilioClient(shareOpts...)
		if err != nil {
			return fmt.Errorf("failed to configure Twilio: %w", err)
		}
		serverOpts = append(serverOpts, api.WithSharer(share.NewSharer(tw)))
	} else {
		slog.Info("Twilio is not configured; sharing is disabled")
	}

	slog.Info("Bootstrapping LetterCraft", "version", version, "model", client.Model(), "store", storeKind(flags), "api_addr", flags.apiAddr)
	srv := api.NewServer(client, st, serverOpts...)
	return api.Run(ctx, srv, buildAPIOptions(flags, out)...)
}
