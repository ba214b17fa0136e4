package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spdx2mermaid/pkg/pipeline"
)

func (c *CLI) convertCommand() *cobra.Command {
	var (
		flags  renderFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "convert <file|->",
		Short: "Convert an SPDX document to a diagram",
		Long: `Convert an SPDX document to a Mermaid flowchart or another output format.

The input format is detected from the content, using the file name as a
hint. Read from stdin with "-". Without -o the result is written to stdout.
When -o is given and --format is not, the format follows the extension.`,
		Example: `  spdx2mermaid convert sbom.spdx.json
  spdx2mermaid convert sbom.spdx --compact --max-packages 20 -o deps.mmd
  cat sbom.yaml | spdx2mermaid convert - -f markdown >> README.md
  spdx2mermaid convert bom.rdf.xml -o deps.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(c.configPath, c.Logger)
			if err != nil {
				return err
			}
			opts := flags.options(cmd, cfg)
			if opts.Format == "" && !isStdout(output) {
				opts.Format = formatFromPath(output)
			}

			data, hint, err := readInput(ctx, args[0])
			if err != nil {
				return err
			}
			opts.Filename = hint

			runner := c.newRunner(flags.noCache)
			defer runner.Close()

			var spin *Spinner
			if !isStdout(output) {
				spin = newSpinnerWithContext(ctx, "Converting "+filepath.Base(args[0])+"...")
				spin.Start()
			}
			prog := newProgress(c.Logger)
			res, err := runner.Convert(ctx, data, opts)
			if spin != nil {
				spin.Stop()
			}
			if err != nil {
				return fmt.Errorf("convert %s: %w", args[0], err)
			}

			if err := writeOutput(output, res.Artifact); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			if isStdout(output) {
				c.Logger.Debug("wrote diagram to stdout", "bytes", len(res.Artifact))
				return nil
			}

			prog.done("Converted " + args[0])
			printSuccess("Converted %s (%s → %s)", args[0], res.InputFormat, res.Format)
			printFile(output)
			printStats(res.Stats, res.CacheInfo.ArtifactHit)
			if res.Stats.Diagram.Truncated > 0 {
				printWarning("%d packages collapsed into the truncation node", res.Stats.Diagram.Truncated)
			}
			return nil
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// formatFromPath infers an output format from a file extension, falling
// back to mermaid.
func formatFromPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	for format, e := range pipeline.Extensions {
		if e == ext {
			return format
		}
	}
	switch ext {
	case ".mermaid":
		return pipeline.FormatMermaid
	case ".markdown":
		return pipeline.FormatMarkdown
	case ".gv":
		return pipeline.FormatDOT
	}
	return pipeline.FormatMermaid
}
