package pipeline

import (
	"bytes"
	"context"
	"time"

	pkgio "github.com/matzehuels/spdx2mermaid/pkg/io"
	"github.com/matzehuels/spdx2mermaid/pkg/observability"
	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
	"github.com/matzehuels/spdx2mermaid/pkg/spdx"
)

// Load decodes data into a model without caching. A set
// opts.InputFormat skips detection.
func Load(ctx context.Context, data []byte, opts Options) (*sbom.Model, spdx.Format, error) {
	start := time.Now()
	observability.Convert().OnLoadStart(ctx, opts.Filename, len(data))

	var (
		m   *sbom.Model
		f   spdx.Format
		err error
	)
	if opts.InputFormat != "" {
		f = spdx.Format(opts.InputFormat)
		m, err = spdx.LoadFormat(data, f)
	} else {
		m, f, err = spdx.Load(data, opts.Filename)
	}

	elements := 0
	if m != nil {
		elements = m.NodeCount()
	}
	observability.Convert().OnLoadComplete(ctx, string(f), elements, time.Since(start), err)
	return m, f, err
}

// cachedModel is the cache envelope for a decoded model.
type cachedModel struct {
	Format string `json:"format"`
	Model  []byte `json:"model"`
}

func encodeModel(m *sbom.Model, f spdx.Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := pkgio.WriteJSON(m, &buf); err != nil {
		return nil, err
	}
	return json.Marshal(cachedModel{Format: string(f), Model: buf.Bytes()})
}

func decodeModel(data []byte) (*sbom.Model, spdx.Format, error) {
	var c cachedModel
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, "", err
	}
	m, err := pkgio.ReadJSON(bytes.NewReader(c.Model))
	if err != nil {
		return nil, "", err
	}
	return m, spdx.Format(c.Format), nil
}
