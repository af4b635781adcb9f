package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"bestvids/auth"
	"bestvids/config"
	"bestvids/storage"
	"bestvids/youtube"
)

// app carries flags and settings shared by all commands.
type app struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader

	// authorizer and endpoint replace the configured credentials and API
	// base URL when set.
	authorizer auth.Authorizer
	endpoint   string
}

func newApp() *app {
	return &app{stdout: os.Stdout, stderr: os.Stderr, stdin: os.Stdin}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "bestvids",
		Short:         "Rank a YouTube channel's uploads by like ratio",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default bestvids.json, then ~/.config/bestvids/bestvids.json)")
	flags.StringVar(&a.dbPath, "db", "", "SQLite database path (overrides db_path)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides log_level)")

	root.AddCommand(
		newScrapeCmd(a),
		newBestofCmd(a),
		newListCmd(a),
		newRunsCmd(a),
	)
	return root
}

// flagOverrides applies --db and --log-level on top of file and env settings.
func (a *app) flagOverrides(cfg *config.Config) {
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
}

// setup loads configuration, applies flag overrides and installs the logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath, a.flagOverrides)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: a.stderr, TimeFormat: time.TimeOnly}).
		Level(cfg.Level()).
		With().Timestamp().Logger()
	return nil
}

func (a *app) openStore(ctx context.Context) (*storage.SQLiteStore, error) {
	return storage.OpenSQLite(ctx, a.cfg.DBPath)
}

// httpClient returns an authorized client: the API key when one is
// configured, OAuth otherwise.
func (a *app) httpClient(ctx context.Context) (*http.Client, error) {
	authorizer := a.authorizer
	if authorizer == nil {
		if a.cfg.APIKey != "" {
			authorizer = &auth.APIKeyAuthorizer{Key: a.cfg.APIKey}
		} else {
			oauth := auth.NewOAuthAuthorizer(a.cfg.ClientSecretsPath, a.cfg.TokenPath)
			oauth.Prompt = a.stderr
			oauth.Input = a.stdin
			authorizer = oauth
		}
	}
	return authorizer.Client(ctx)
}

func (a *app) youtubeClient(ctx context.Context) (*youtube.Client, error) {
	httpClient, err := a.httpClient(ctx)
	if err != nil {
		return nil, err
	}
	return youtube.NewClient(ctx, httpClient, youtube.ClientConfig{
		RequestsPerSecond: a.cfg.RequestsPerSecond,
		Endpoint:          a.endpoint,
	})
}
