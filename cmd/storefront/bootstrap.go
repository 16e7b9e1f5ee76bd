package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nhle/storefront/internal/credential"
	"github.com/nhle/storefront/internal/model"
	"github.com/nhle/storefront/internal/notifyapi"
	"github.com/nhle/storefront/internal/notifystore"
	"github.com/nhle/storefront/internal/session"
)

// tokenEnv overrides the stored session token for a single run.
const tokenEnv = "STOREFRONT_TOKEN"

// env is everything a subcommand needs once config is resolved.
type env struct {
	cfg     *model.AppConfig
	logger  *zap.Logger
	session *session.Session
}

// bootstrap loads .env, the config file and the stored session, and opens
// the log file.
func bootstrap(f flags) (*env, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := model.LoadConfig(configPath(f))
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	sess := session.New(credential.NewSessionTokenStore())
	if err := sess.Restore(); err != nil {
		logger.Warn("could not restore session", zap.Error(err))
	}
	if token := os.Getenv(tokenEnv); token != "" {
		sess.UseToken(token)
	}

	return &env{cfg: cfg, logger: logger, session: sess}, nil
}

// newLogger builds a JSON file logger. The terminal belongs to the UI, so
// nothing is written to stderr.
func newLogger(c model.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	if c.File == "" {
		return zap.NewNop(), nil
	}
	if err := os.MkdirAll(filepath.Dir(c.File), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{c.File}
	zc.ErrorOutputPaths = []string{c.File}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.With(zap.String("app", appName)), nil
}

// newClient builds the notification API client from config.
func (e *env) newClient() *notifyapi.Client {
	return notifyapi.NewClient(
		e.cfg.API.BaseURL,
		e.session,
		notifyapi.WithTimeout(time.Duration(e.cfg.API.TimeoutSec)*time.Second),
		notifyapi.WithMaxRetries(e.cfg.API.MaxRetries),
		notifyapi.WithLogger(e.logger.Named("api")),
	)
}

// storeOptions maps the notifications config onto store options.
func storeOptions(c model.NotificationsConfig, logger *zap.Logger) []notifystore.Option {
	opts := []notifystore.Option{notifystore.WithLogger(logger)}
	if c.UnreadOrdering == model.OrderingLatestRequest {
		opts = append(opts, notifystore.WithUnreadOrdering(notifystore.LatestRequestWins))
	}
	if c.DedupeLocal {
		opts = append(opts, notifystore.WithLocalInsert(notifystore.DedupeByID))
	}
	return opts
}
