package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spdx2mermaid/pkg/pipeline"
)

// Config is the TOML config file. Every key is optional; flags set on the
// command line take precedence.
//
//	compact = true
//	max_packages = 50
//	direction = "LR"
//
//	[serve]
//	addr = ":9090"
//	redis_addr = "localhost:6379"
type Config struct {
	Compact             *bool  `toml:"compact"`
	MaxPackages         *int   `toml:"max_packages"`
	ExcludeExternalRefs *bool  `toml:"exclude_external_refs"`
	Direction           string `toml:"direction"`
	Unresolved          string `toml:"unresolved"`
	Format              string `toml:"format"`
	InputFormat         string `toml:"input_format"`

	Serve ServeConfig `toml:"serve"`
}

// ServeConfig holds the [serve] table.
type ServeConfig struct {
	Addr          string `toml:"addr"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// defaultConfigPath returns $XDG_CONFIG_HOME/spdx2mermaid/config.toml,
// falling back to ~/.config.
func defaultConfigPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads path, or the default location when path is empty. A
// missing default file yields the zero Config; a missing explicit file
// is an error. Unknown keys are logged and ignored.
func loadConfig(path string, logger *log.Logger) (Config, error) {
	var cfg Config
	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logger.Warn("ignoring unknown config keys", "path", path, "keys", strings.Join(keys, ", "))
	}
	logger.Debug("loaded config", "path", path)
	return cfg, nil
}

// =============================================================================
// Render Flags
// =============================================================================

// renderFlags are the conversion flags shared by convert and serve.
type renderFlags struct {
	format              string
	inputFormat         string
	compact             bool
	maxPackages         int
	excludeExternalRefs bool
	direction           string
	unresolved          string
	noCache             bool
}

func (f *renderFlags) register(cmd *cobra.Command, withFormat bool) {
	flags := cmd.Flags()
	if withFormat {
		flags.StringVarP(&f.format, "format", "f", "", "output format: "+strings.Join(pipeline.FormatNames, ", ")+" (default mermaid)")
	}
	flags.StringVar(&f.inputFormat, "input-format", "", "input format, skipping detection: json, yaml, xml, rdf, tag-value")
	flags.BoolVar(&f.compact, "compact", false, "show only name, version and license in labels")
	flags.IntVar(&f.maxPackages, "max-packages", 0, "draw at most N packages, collapsing the rest")
	flags.BoolVar(&f.excludeExternalRefs, "exclude-external-refs", false, "omit package external references from labels")
	flags.StringVar(&f.direction, "direction", "", "layout direction: TD or LR (default TD)")
	flags.StringVar(&f.unresolved, "unresolved", "", "unresolved endpoints: placeholder or omit (default placeholder)")
	flags.BoolVar(&f.noCache, "no-cache", false, "disable the conversion cache")
}

// options merges cfg and the flags the user set explicitly.
func (f *renderFlags) options(cmd *cobra.Command, cfg Config) pipeline.Options {
	opts := pipeline.Options{
		Format:      cfg.Format,
		InputFormat: cfg.InputFormat,
		Direction:   strings.ToUpper(cfg.Direction),
		Unresolved:  cfg.Unresolved,
		MaxPackages: cfg.MaxPackages,
	}
	if cfg.Compact != nil {
		opts.Compact = *cfg.Compact
	}
	if cfg.ExcludeExternalRefs != nil {
		opts.ExcludeExternalRefs = *cfg.ExcludeExternalRefs
	}

	changed := cmd.Flags().Changed
	if changed("format") {
		opts.Format = f.format
	}
	if changed("input-format") {
		opts.InputFormat = f.inputFormat
	}
	if changed("compact") {
		opts.Compact = f.compact
	}
	if changed("max-packages") {
		n := f.maxPackages
		opts.MaxPackages = &n
	}
	if changed("exclude-external-refs") {
		opts.ExcludeExternalRefs = f.excludeExternalRefs
	}
	if changed("direction") {
		opts.Direction = strings.ToUpper(f.direction)
	}
	if changed("unresolved") {
		opts.Unresolved = f.unresolved
	}
	return opts
}
