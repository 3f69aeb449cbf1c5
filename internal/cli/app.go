// Package cli implements the piscore command line: evaluate assessment files
// against the same engine and presets the HTTP server uses.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/ZanzyTHEbar/public-interest-o-meter/internal/presets"
)

const (
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v1.0.0"

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}

	presetsFileFlag = &urfave.StringFlag{
		Name:    "presets",
		Usage:   "YAML file with extra or overriding presets",
		EnvVars: []string{"PISCORE_PRESETS_FILE"},
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	initLogging(os.Stderr, false)

	app := newApp(os.Stdout)
	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Format  string
	Presets *presets.Registry
	Out     io.Writer
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp(out io.Writer) *urfave.App {
	return &urfave.App{
		Name:            "piscore",
		Version:         version,
		Compiled:        time.Now(),
		HideHelpCommand: true,
		Usage:           "Weighted scoring and gap prioritisation for public-interest self-assessments",
		Writer:          out,
		ErrWriter:       os.Stderr,
		Metadata:        map[string]interface{}{},
		Flags: []urfave.Flag{
			debugFlag,
			formatFlag,
			presetsFileFlag,
		},
		Commands: []*urfave.Command{
			presetsCmd,
			assessCmd,
			projectCmd,
		},
		Before: func(c *urfave.Context) error {
			if c.Bool(debugFlag.Name) {
				initLogging(c.App.ErrWriter, true)
			}

			format := c.String(formatFlag.Name)
			switch format {
			case formatJSON:
			case formatYAML, "yml":
				format = formatYAML
			default:
				return fmt.Errorf("unsupported format %q, use json or yaml", format)
			}

			registry, err := presets.LoadFile(c.String(presetsFileFlag.Name))
			if err != nil {
				return fmt.Errorf("loading presets: %w", err)
			}
			slog.Debug("presets loaded", "count", registry.Len())

			c.App.Metadata[appConfigKey] = &appConfig{
				Format:  format,
				Presets: registry,
				Out:     out,
			}
			return nil
		},
	}
}

func initLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

func (cfg *appConfig) encode(v any) error {
	if cfg.Format == formatYAML {
		e := yaml.NewEncoder(cfg.Out)
		defer e.Close()
		return e.Encode(v)
	}
	e := json.NewEncoder(cfg.Out)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
