package render

import (
	"fmt"
	"html/template"
	"io"
)

// Crumb is one breadcrumb link. An empty Href renders as plain text.
type Crumb struct {
	Label string
	Href  string
}

// TOCEntry is one line of the embedded table of contents.
type TOCEntry struct {
	Slug  string
	Title string
	Depth int
}

// PageData holds template data for a rendered document page.
type PageData struct {
	SiteTitle  string
	Title      string
	Breadcrumb []Crumb
	TOC        []TOCEntry
	Content    template.HTML
	Footer     string
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"indent": func(depth int) string { return fmt.Sprintf("%.1frem", float64(depth)*1.2) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}} | {{.SiteTitle}}</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; margin: 0 auto; padding: 2rem; max-width: 960px; line-height: 1.7; }
    nav.breadcrumb { font-size: 0.9rem; margin-bottom: 1rem; }
    nav.toc { border-left: 3px solid #ddd; padding-left: 1rem; margin-bottom: 2rem; }
    nav.toc a { display: block; text-decoration: none; }
    pre { background: #f5f5f5; padding: 1rem; overflow-x: auto; }
    footer { margin-top: 3rem; font-size: 0.8rem; color: #666; }
  </style>
</head>
<body>
  {{- if .Breadcrumb}}
  <nav class="breadcrumb">
    {{- range $i, $c := .Breadcrumb}}{{if $i}} / {{end}}{{if $c.Href}}<a href="{{$c.Href}}">{{$c.Label}}</a>{{else}}<span>{{$c.Label}}</span>{{end}}{{end}}
  </nav>
  {{- end}}
  {{- if .TOC}}
  <nav class="toc">
    {{- range .TOC}}
    <a href="#{{.Slug}}" style="margin-left: {{indent .Depth}}">{{.Title}}</a>
    {{- end}}
  </nav>
  {{- end}}
  <article>{{.Content}}</article>
  {{- if .Footer}}
  <footer>{{.Footer}}</footer>
  {{- end}}
</body>
</html>`))

// WritePage renders a full HTML page.
func WritePage(w io.Writer, data PageData) error {
	return pageTemplate.Execute(w, data)
}
