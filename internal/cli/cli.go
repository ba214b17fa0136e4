// Package cli implements the spdx2mermaid command-line interface.
//
// Commands:
//   - convert: SPDX document to Mermaid, Markdown, DOT, SVG, PNG, PDF or JSON
//   - inspect: element and relationship summary, optionally interactive
//   - serve: HTTP viewer and conversion API
//   - cache: manage the conversion cache
//   - completion: shell completion scripts
//
// Status lines go to stderr so converted output can be piped from stdout.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spdx2mermaid/pkg/buildinfo"
	"github.com/matzehuels/spdx2mermaid/pkg/cache"
	"github.com/matzehuels/spdx2mermaid/pkg/errors"
	"github.com/matzehuels/spdx2mermaid/pkg/observability"
	"github.com/matzehuels/spdx2mermaid/pkg/pipeline"
)

// appName is used for config and cache directories.
const appName = "spdx2mermaid"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
}

// New creates a CLI that logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "spdx2mermaid turns SPDX documents into Mermaid diagrams",
		Long: `spdx2mermaid reads SPDX 2.x and 3.x documents in JSON, YAML, XML, RDF/XML
or tag-value form and renders their packages, files, snippets and
relationships as a Mermaid flowchart.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				hooks := loggingHooks{c.Logger}
				observability.SetConvertHooks(hooks)
				observability.SetCacheHooks(hooks)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/spdx2mermaid/config.toml)")

	root.AddCommand(c.convertCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the file cache.
func (c *CLI) newRunner(noCache bool) *pipeline.Runner {
	return pipeline.NewRunner(c.newCache(noCache), nil, c.Logger)
}

// newCache opens the file cache. An unusable cache directory disables
// caching instead of failing the command.
func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache("")
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Input / Output
// =============================================================================

// readInput reads path, or stdin for "-". The returned hint is the
// filename used for format detection.
func readInput(ctx context.Context, path string) (data []byte, hint string, err error) {
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read stdin")
		}
		return data, "", nil
	}
	data, err = os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "%s does not exist", path)
	}
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	loggerFromContext(ctx).Debug("read input", "path", path, "bytes", len(data))
	return data, path, nil
}

// writeOutput writes data to path, or stdout for "" and "-".
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func isStdout(path string) bool {
	return path == "" || path == "-"
}
