package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spdx2mermaid/pkg/cache"
	"github.com/matzehuels/spdx2mermaid/pkg/pipeline"
	"github.com/matzehuels/spdx2mermaid/pkg/server"
)

const defaultAddr = ":8080"

// redisKeyPrefix namespaces keys in a Redis shared with other programs.
const redisKeyPrefix = appName + ":"

func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags         renderFlags
		addr          string
		redisAddr     string
		redisPassword string
		redisDB       int
	)

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve a browser viewer and conversion API",
		Long: `Start an HTTP server that renders diagrams in the browser.

With a file argument the document is rendered at /. Other documents can be
posted to /api/convert and viewed at /view/{id}. With --redis-addr both the
conversion cache and stored diagrams live in Redis.`,
		Example: `  spdx2mermaid serve sbom.spdx.json
  spdx2mermaid serve --addr :9090 --redis-addr localhost:6379`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(c.configPath, c.Logger)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") && cfg.Serve.Addr != "" {
				addr = cfg.Serve.Addr
			}
			if !cmd.Flags().Changed("redis-addr") {
				redisAddr = cfg.Serve.RedisAddr
			}
			if !cmd.Flags().Changed("redis-password") {
				redisPassword = cfg.Serve.RedisPassword
			}
			if !cmd.Flags().Changed("redis-db") {
				redisDB = cfg.Serve.RedisDB
			}

			scfg := server.Config{
				Defaults: flags.options(cmd, cfg),
				Logger:   c.Logger,
			}
			if redisAddr != "" {
				rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: redisAddr, Password: redisPassword, DB: redisDB})
				if err != nil {
					return fmt.Errorf("connect redis: %w", err)
				}
				keyer := cache.NewScopedKeyer(nil, redisKeyPrefix)
				scfg.Runner = pipeline.NewRunner(rc, keyer, c.Logger)
				scfg.Store = rc
				scfg.Keyer = keyer
				printKeyValue("Store", "redis "+redisAddr)
			} else {
				scfg.Runner = c.newRunner(flags.noCache)
				scfg.Store = cache.NewMemoryCache()
				printKeyValue("Store", "memory")
			}
			defer scfg.Runner.Close()

			if len(args) == 1 {
				data, hint, err := readInput(ctx, args[0])
				if err != nil {
					return err
				}
				scfg.Document = data
				scfg.DocumentName = filepath.Base(hint)
				printKeyValue("Document", hint)
			}

			srv, err := server.New(ctx, scfg)
			if err != nil {
				return err
			}
			printSuccess("Viewer ready at %s", StyleLink.Render(displayURL(addr)))
			printNextStep("Stop with", "Ctrl+C")
			return srv.ListenAndServe(ctx, addr)
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address for the shared cache and diagram store")
	cmd.Flags().StringVar(&redisPassword, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&redisDB, "redis-db", 0, "Redis database number")
	return cmd
}

// displayURL turns a listen address into a browsable URL.
func displayURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}
