package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/starford/notemover/internal/mcpserver"
)

// MoveNote applies the rules to one note and prints the result.
func MoveNote(ctx context.Context, path string, opts ...Option) error {
	return oneShot(ctx, opts, func(c *components) (any, error) {
		return c.svc.MoveNote(ctx, path)
	})
}

// MoveAll applies the rules to every note in the vault and prints a summary.
func MoveAll(ctx context.Context, opts ...Option) error {
	return oneShot(ctx, opts, func(c *components) (any, error) {
		return c.svc.MoveAll(ctx)
	})
}

// Preview prints where a note would be moved.
func Preview(ctx context.Context, path string, opts ...Option) error {
	return oneShot(ctx, opts, func(c *components) (any, error) {
		return c.svc.Preview(ctx, path)
	})
}

// History prints recorded moves, newest first.
func History(ctx context.Context, path string, limit int, opts ...Option) error {
	return oneShot(ctx, opts, func(c *components) (any, error) {
		return c.svc.History(ctx, path, limit)
	})
}

// ServeMCP serves the MCP tools on stdin/stdout until the client disconnects.
// Logs default to stderr because stdout carries the protocol.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts, os.Stderr)
	if err != nil {
		return err
	}
	c, err := app.build(ctx)
	if err != nil {
		return err
	}
	defer c.close(app.logger)

	return mcpserver.New(c.svc, app.version).ServeStdio()
}

func oneShot(ctx context.Context, opts []Option, fn func(c *components) (any, error)) error {
	app, err := newApplication(opts, os.Stderr)
	if err != nil {
		return err
	}
	c, err := app.build(ctx)
	if err != nil {
		return err
	}
	defer c.close(app.logger)

	v, err := fn(c)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(app.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
