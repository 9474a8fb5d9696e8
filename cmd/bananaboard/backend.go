package main

import (
	"context"
	"fmt"
	"log"

	"github.com/example/bananaboard/internal/config"
	"github.com/example/bananaboard/internal/gemini"
	"github.com/example/bananaboard/internal/generate"
	"github.com/example/bananaboard/internal/session"
)

// newBackendFn builds the generation backend. Tests replace it with a fake.
var newBackendFn = func(ctx context.Context, cfg *config.Config) (generate.Backend, error) {
	var store config.SecretStore
	if ks, err := config.NewKeyringStore(); err != nil {
		log.Printf("keyring: %v", err)
	} else {
		store = ks
	}
	key := config.ResolveAPIKey(cfg, store)
	if key == "" {
		return nil, fmt.Errorf("%w: set GEMINI_API_KEY or run 'bananaboard config set-key'", gemini.ErrNoAPIKey)
	}
	c, err := gemini.New(ctx, key,
		gemini.WithImageModel(cfg.ImageModel),
		gemini.WithContentModel(cfg.ContentModel),
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// newSession creates the state shared by a command. Interactive front-ends
// pass optional=true so a missing key only fails once the user submits.
func (r *root) newSession(mode session.Mode, optional bool) (*session.State, error) {
	opts := []session.Option{
		session.WithMode(mode),
		session.WithCanvasSize(r.config.CanvasWidth, r.config.CanvasHeight),
	}
	backend, err := newBackendFn(r.context(), r.config)
	switch {
	case err == nil:
		opts = append(opts, session.WithBackend(backend))
	case optional:
		log.Printf("generation disabled: %v", err)
	default:
		return nil, err
	}
	return session.New(opts...), nil
}
