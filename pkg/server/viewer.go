package server

import (
	"html/template"
	"net/http"
)

// mermaidScript is the Mermaid bundle loaded by the viewer.
const mermaidScript = "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs"

type viewerPage struct {
	Title    string
	Version  string
	Diagram  string // Mermaid source
	Image    string // image URL for SVG and PNG diagrams
	Download string
	Script   string
}

var viewerTemplate = template.Must(template.New("viewer").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: -apple-system, Helvetica, sans-serif; margin: 0; background: #fafafa; color: #212121; }
  header { display: flex; justify-content: space-between; align-items: center; padding: 12px 24px; background: #fff; border-bottom: 1px solid #e0e0e0; }
  header h1 { font-size: 16px; margin: 0; }
  header a { color: #01579b; font-size: 14px; }
  main { padding: 24px; overflow: auto; }
  pre.mermaid { background: #fff; padding: 16px; }
  footer { padding: 12px 24px; font-size: 12px; color: #757575; }
  code { background: #eeeeee; padding: 2px 4px; }
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  {{if .Download}}<a href="{{.Download}}">Download</a>{{end}}
</header>
<main>
{{- if .Diagram}}
<pre class="mermaid">{{.Diagram}}</pre>
{{- else if .Image}}
<img src="{{.Image}}" alt="{{.Title}}">
{{- else if .Download}}
<p>This diagram has no preview. Use the download link.</p>
{{- else}}
<p>No document is being served. Convert one with <code>curl --data-binary @sbom.spdx.json localhost:8080/api/convert</code>.</p>
{{- end}}
</main>
<footer>spdx2mermaid {{.Version}}</footer>
{{- if .Diagram}}
<script type="module">
  import mermaid from "{{.Script}}";
  mermaid.initialize({ startOnLoad: true, securityLevel: "strict", maxTextSize: 10000000 });
</script>
{{- end}}
</body>
</html>
`))

func writePage(w http.ResponseWriter, page viewerPage) {
	page.Script = mermaidScript
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := viewerTemplate.Execute(w, page); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
