package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tgienger/taskflow/internal/auth"
	"github.com/tgienger/taskflow/internal/config"
	"github.com/tgienger/taskflow/internal/db"
	"github.com/tgienger/taskflow/internal/logger"
	"github.com/tgienger/taskflow/internal/tasks"
)

// env holds the services a command works with
type env struct {
	cfg      *config.Config
	log      *slog.Logger
	db       *db.DB
	store    *tasks.Store
	session  *auth.Session
	closeLog func() error
}

func openEnv(configFile string) (*env, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	log, closeLog, err := logger.Setup(cfg.LogPath(), cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: log, closeLog: closeLog}

	e.db, err = db.New(cfg.DBPath())
	if err != nil {
		e.Close()
		return nil, err
	}

	e.store, err = tasks.Open(e.db,
		tasks.WithDefaultCategory(cfg.Tasks.DefaultCategory),
		tasks.WithLogger(log),
	)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("loading tasks: %w", err)
	}

	e.session, err = auth.NewSession(newProvider(cfg, e.db), e.db, log)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("restoring session: %w", err)
	}

	log.Debug("environment ready", "db", cfg.DBPath(), "auth_mode", cfg.Auth.Mode, "tasks", len(e.store.All()))
	return e, nil
}

func newProvider(cfg *config.Config, users auth.UserStore) auth.Provider {
	if cfg.Auth.Mode == config.AuthLocal {
		return auth.NewLocal(users, cfg.Auth.BcryptCost)
	}
	return auth.NewSimulated(cfg.Auth.Delay)
}

// Close releases the database and the log file
func (e *env) Close() error {
	var errs []error
	if e.db != nil {
		errs = append(errs, e.db.Close())
	}
	if e.closeLog != nil {
		errs = append(errs, e.closeLog())
	}
	return errors.Join(errs...)
}
