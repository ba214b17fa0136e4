package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/matzehuels/spdx2mermaid/pkg/errors"
)

// rsvgCommand is the librsvg converter looked up on PATH.
var rsvgCommand = "rsvg-convert"

// ToPDF converts an SVG document to PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return rasterize(ctx, svg, "pdf")
}

// ToPNG converts an SVG document to PNG, zoomed by scale. A scale of zero
// or less means 1.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return rasterize(ctx, svg, "png", "--zoom", strconv.FormatFloat(scale, 'f', -1, 64))
}

// rasterize feeds svg to rsvg-convert on stdin. The process is killed when
// ctx is done. A missing converter is an ErrCodeUnsupported error.
func rasterize(ctx context.Context, svg []byte, format string, args ...string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bin, err := exec.LookPath(rsvgCommand)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err,
			"%s output needs %s from librsvg (apt install librsvg2-bin, brew install librsvg)", format, rsvgCommand)
	}

	cmd := exec.CommandContext(ctx, bin, append([]string{"--format", format}, args...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s %s: %s", rsvgCommand, format, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}
