package cli

import (
	"fmt"
	"io"

	"github.com/raine/balla/config"
	"github.com/raine/balla/internal/analysis"
	"github.com/raine/balla/internal/history"
	"github.com/raine/balla/internal/imageprep"
	"github.com/raine/balla/internal/session"
	"github.com/raine/balla/internal/settings"
	"github.com/raine/balla/internal/storage"
	"github.com/rs/zerolog/log"
)

// app holds what the client-side commands share for one run.
type app struct {
	cfg      *config.Config
	store    storage.PreferenceStore
	settings *settings.Settings
}

func openApp(flags *rootFlags) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags.dbPath != "" {
		cfg.DBPath = flags.dbPath
	}

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open preferences: %w", err)
	}
	s, err := settings.Load(store)
	if err != nil {
		store.Close()
		return nil, err
	}
	log.Debug().Str("dbPath", cfg.DBPath).Str("language", string(s.Language())).Msg("preferences loaded")

	return &app{cfg: cfg, store: store, settings: s}, nil
}

// source builds the photo loader with the fetch limits from the flags.
func (a *app) source(flags *rootFlags) *imageprep.Source {
	src := imageprep.NewSource()
	if flags.fetchTimeout > 0 {
		src = src.WithTimeout(flags.fetchTimeout)
	}
	if flags.maxImageMB > 0 {
		src = src.WithMaxSize(flags.maxImageMB * 1024 * 1024)
	}
	return src
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) client() (*analysis.Client, error) {
	if err := a.cfg.ValidateClient(); err != nil {
		return nil, err
	}
	return analysis.NewClient(analysis.ClientOpts{
		URL:              a.cfg.AnalyzeURL,
		APIKey:           a.cfg.AnonKey,
		RequireCondition: a.cfg.ExtendedFlow,
		Timeout:          a.cfg.RequestTimeout,
	}), nil
}

// newSession builds a session whose notices are printed to w.
func (a *app) newSession(w io.Writer) (*session.Session, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}
	return session.New(session.Opts{
		Submitter: client,
		History:   history.New(),
		Notifier:  session.NotifierFunc(func(n session.Notice) { renderNotice(w, n) }),
		Language:  a.settings,
	}), nil
}
