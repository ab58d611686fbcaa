// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/datamill"
	"github.com/poiesic/datamill/config"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp().RunContext(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "datamill: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "datamill",
		Usage: "Build versioned datasets and run simulated training jobs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "settings",
				Aliases: []string{"s"},
				Usage:   "Path to a YAML settings file",
			},
			&cli.StringFlag{
				Name:    "artifacts",
				Aliases: []string{"a"},
				Usage:   "Artifacts root directory (overrides settings and DATAMILL_ARTIFACTS_DIR)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			datasetCommand(),
			{
				Name:   "train",
				Usage:  "Train a model version from a training config",
				Action: trainCommand,
				Flags: []cli.Flag{
					configFlag(),
					modelVersionFlag(),
				},
			},
			{
				Name:   "evaluate",
				Usage:  "Evaluate a trained model version",
				Action: evaluateCommand,
				Flags: []cli.Flag{
					modelVersionFlag(),
				},
			},
			{
				Name:   "run",
				Usage:  "Train, register, and evaluate a model version",
				Action: runCommand,
				Flags: []cli.Flag{
					configFlag(),
					modelVersionFlag(),
				},
			},
			modelsCommand(),
		},
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "Path to the training config YAML",
		Required: true,
	}
}

func modelVersionFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "model-version",
		Aliases:  []string{"m"},
		Usage:    "Model version name",
		Required: true,
	}
}

// openWorkspace loads settings from the global flags and opens the
// workspace. The caller closes it.
func openWorkspace(c *cli.Context, extra []config.SettingsOption, opts ...datamill.WorkspaceOption) (*datamill.Workspace, error) {
	settingsOpts := append([]config.SettingsOption{config.WithArtifactsDir(c.String("artifacts"))}, extra...)
	settings, err := config.LoadSettings(c.String("settings"), settingsOpts...)
	if err != nil {
		return nil, err
	}
	return datamill.OpenWorkspace(settings, append(opts, datamill.WithLogger(slog.Default()))...)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
