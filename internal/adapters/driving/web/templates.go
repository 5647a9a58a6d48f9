package web

import (
	"html"
	"html/template"
	"strings"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/services"
)

const (
	markOpen  = "\x00"
	markClose = "\x01"
)

var templateFuncs = template.FuncMap{
	"highlight": highlight,
	"trusted":   func(s string) template.HTML { return template.HTML(s) }, //nolint:gosec
	"searchURL": domain.SearchURL,
	"viewURL":   domain.ViewURL,
	"imagesURL": func(q string) string { return domain.ImageSearchURL(q, "web") },
}

// highlight keeps the backend's <mark> tags and escapes everything else.
func highlight(s string) template.HTML {
	s = strings.NewReplacer("<mark>", markOpen, "</mark>", markClose).Replace(s)
	s = html.EscapeString(services.PlainText(s))
	s = strings.NewReplacer(markOpen, "<mark>", markClose, "</mark>").Replace(s)
	return template.HTML(s) //nolint:gosec
}

const pageTemplates = `
{{define "header"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{if .}}{{.}} - {{end}}SearchBox</title>
<style>
body{font-family:system-ui,sans-serif;max-width:960px;margin:2rem auto;padding:0 1rem;color:#222}
mark{background:#fde68a}
.card{border-bottom:1px solid #eee;padding:.75rem 0}
.meta{color:#666;font-size:.85rem}
.locked{color:#b45309}
.pages a,.pages span{margin-right:.5rem}
.gallery img{max-width:200px;margin:.25rem}
pre{white-space:pre-wrap}
</style>
</head>
<body>
<form action="/" method="get"><input name="q" size="60" autofocus><button>Search</button></form>
{{end}}

{{define "footer"}}</body></html>{{end}}

{{define "pages"}}{{$q := .Query}}{{with .Pagination}}<div class="pages">
{{range .Pages}}{{if .Active}}<span>{{.Page}}</span>{{else}}<a href="?q={{$q}}&page={{.Page}}">{{.Page}}</a>{{end}}{{end}}
</div>{{end}}{{end}}

{{define "home"}}{{template "header" ""}}
<h1>SearchBox</h1>
<p>Search your documents. Use <code>term::pdf</code> to filter by type or <code>term::image</code> for the gallery.</p>
{{template "footer"}}{{end}}

{{define "results"}}{{template "header" .Page.Query}}
<p class="meta">{{.Page.Stats}} <a href="/summary?q={{.Page.Query}}">Summarise</a> <a href="{{imagesURL .Page.Query}}">Images</a></p>
{{range .Page.Cards}}<div class="card">
<a href="{{.URL}}">{{highlight .Title}}</a>{{if .Locked}} <span class="locked">locked</span>{{end}}
<div class="meta">{{.TypeLabel}} &middot; {{.SourceLabel}} &middot; {{.SizeLabel}}</div>
{{if .Snippet}}<p>{{highlight .Snippet}}</p>{{end}}
</div>{{else}}<p>No results for &ldquo;{{.Page.Query}}&rdquo;.</p>{{end}}
{{template "pages" .Page}}
{{template "footer"}}{{end}}

{{define "images"}}{{template "header" .Page.Query}}
<div class="gallery">
{{range .Page.Images}}<a href="{{.ModalSrc}}" title="{{.DocName}} {{.Label}}"><img src="{{.Src}}" alt="{{.Label}}"></a>{{else}}<p>No images for &ldquo;{{.Page.Query}}&rdquo;.</p>{{end}}
</div>
{{template "pages" .Page}}
{{template "footer"}}{{end}}

{{define "document"}}{{template "header" .Doc.Filename}}
<p><a href="{{.Back}}">&larr; Back to results</a></p>
<h1>{{.Doc.Filename}}</h1>
<pre>{{.Doc.Content}}</pre>
{{template "footer"}}{{end}}

{{define "zim"}}{{template "header" .Title}}
<p><a href="{{.Back}}">&larr; Back to results</a></p>
{{if .Fallback}}<p class="meta">Article unavailable, showing indexed text.</p>{{end}}
<iframe id="article" title="{{.Title}}" sandbox="allow-same-origin" srcdoc="{{.Article}}" style="width:100%;min-height:70vh;border:0"></iframe>
<script nonce="{{.Nonce}}">
(function () {
  var frame = document.getElementById("article");
  frame.addEventListener("load", function () {
    var doc = frame.contentDocument;
    if (!doc) { return; }
    doc.addEventListener("click", function (e) {
      var a = e.target.closest("a");
      if (!a) { return; }
      var href = a.getAttribute("href") || "";
      if (href.indexOf("/link?") !== 0) { return; }
      e.preventDefault();
      window.location.href = href;
    });
    var fit = function () { frame.style.height = doc.documentElement.scrollHeight + "px"; };
    fit();
    if (window.ResizeObserver) { new ResizeObserver(fit).observe(doc.documentElement); }
  });
})();
</script>
{{template "footer"}}{{end}}

{{define "summary"}}{{template "header" .Page.Query}}
<p><a href="{{searchURL .Page.Query 1}}">&larr; Back to results</a></p>
{{if .View.HTML}}<article>{{trusted .View.HTML}}</article>{{else}}<p>Nothing to summarise.</p>{{end}}
{{if .View.FromCache}}<p class="meta">From cache. <a href="/summary?q={{.Page.Query}}&refresh=1">Regenerate</a></p>{{end}}
{{template "footer"}}{{end}}

{{define "error"}}{{template "header" "Error"}}
<h1>{{.Status}}</h1>
<p>{{.Message}}</p>
{{template "footer"}}{{end}}
`
