package main

import (
	"context"
	"fmt"

	"github.com/lox/handtracker/cmd/handtracker/shared"
	"github.com/lox/handtracker/internal/api"
	"github.com/lox/handtracker/internal/auth"
	"github.com/lox/handtracker/internal/config"
)

// ServeCmd runs the HTTP and websocket API.
type ServeCmd struct {
	Addr string `help:"Listen address (default from config, e.g. localhost:8080)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	a, err := g.open(context.Background(), openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	addr := c.Addr
	if addr == "" {
		addr = a.cfg.ListenAddress()
	}

	ctx := shared.SetupSignalHandler(a.logger)
	srv := api.NewServer(a.tracker, a.logger, api.WithValidator(validator(a.cfg.HTTP)))
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	a.logger.Info("Server stopped")
	return nil
}

func validator(cfg config.HTTPConfig) auth.Validator {
	switch {
	case cfg.AuthURL != "":
		return auth.NewHTTPValidator(cfg.AuthURL, cfg.AuthSecret)
	case cfg.Token != "":
		return auth.NewTokenValidator(map[string]string{cfg.Token: "owner"})
	}
	return auth.NoopValidator{}
}
