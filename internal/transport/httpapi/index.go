package httpapi

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

//go:embed assets
var assets embed.FS

type pageData struct {
	CSS string
	JS  string
}

// renderIndex inlines the minified stylesheet and script into the page
// template and minifies the result.
func renderIndex() ([]byte, error) {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)

	minified := func(mime, name string) (string, error) {
		raw, err := assets.ReadFile("assets/" + name)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", name, err)
		}
		out, err := m.String(mime, string(raw))
		if err != nil {
			return "", fmt.Errorf("minify %s: %w", name, err)
		}
		return out, nil
	}

	cssMin, err := minified("text/css", "style.css")
	if err != nil {
		return nil, err
	}
	jsMin, err := minified("text/javascript", "script.js")
	if err != nil {
		return nil, err
	}

	raw, err := assets.ReadFile("assets/index.html.tpl")
	if err != nil {
		return nil, fmt.Errorf("read index template: %w", err)
	}
	tmpl, err := template.New("index").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse index template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, pageData{CSS: cssMin, JS: jsMin}); err != nil {
		return nil, fmt.Errorf("render index: %w", err)
	}
	out, err := m.Bytes("text/html", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("minify index: %w", err)
	}
	return out, nil
}
