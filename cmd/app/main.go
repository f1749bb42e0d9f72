package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/notemover/internal"
	pkgconfig "github.com/starford/notemover/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func baseOptions(cmd *cli.Command) ([]internal.Option, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func requirePath(cmd *cli.Command) (string, error) {
	path := cmd.Args().First()
	if path == "" {
		return "", errors.New("note path is required")
	}
	return path, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := baseOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func moveNote(ctx context.Context, cmd *cli.Command) error {
	path, err := requirePath(cmd)
	if err != nil {
		return err
	}
	opts, err := baseOptions(cmd)
	if err != nil {
		return err
	}
	return internal.MoveNote(ctx, path, opts...)
}

func moveAll(ctx context.Context, cmd *cli.Command) error {
	opts, err := baseOptions(cmd)
	if err != nil {
		return err
	}
	return internal.MoveAll(ctx, opts...)
}

func preview(ctx context.Context, cmd *cli.Command) error {
	path, err := requirePath(cmd)
	if err != nil {
		return err
	}
	opts, err := baseOptions(cmd)
	if err != nil {
		return err
	}
	return internal.Preview(ctx, path, opts...)
}

func history(ctx context.Context, cmd *cli.Command) error {
	opts, err := baseOptions(cmd)
	if err != nil {
		return err
	}
	return internal.History(ctx, cmd.Args().First(), int(cmd.Int("limit")), opts...)
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := baseOptions(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, opts...)
}

func main() {
	cmd := &cli.Command{
		Name:    "notemover",
		Usage:   "Move Markdown notes into folders by tag, property, or title rules",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API and, in Automatic mode, the vault watcher",
				Action: serve,
			},
			{
				Name:      "move",
				Usage:     "Move one note according to the rules",
				ArgsUsage: "<path>",
				Action:    moveNote,
			},
			{
				Name:   "move-all",
				Usage:  "Move every note in the vault according to the rules",
				Action: moveAll,
			},
			{
				Name:      "preview",
				Usage:     "Show where a note would be moved without moving it",
				ArgsUsage: "<path>",
				Action:    preview,
			},
			{
				Name:      "history",
				Usage:     "List recorded moves, newest first",
				ArgsUsage: "[path]",
				Action:    history,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of records",
						Value: 50,
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
