package render

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var previewTmpl = template.Must(template.ParseFS(templateFS, "templates/preview.html"))

type previewData struct {
	Deck    Deck
	Options Options
	// CSS class hooks derived from the options.
	SizeClass   string
	LayoutClass string
	StyleClass  string
	DesignClass string
}

// Preview writes a browser-printable HTML rendering of the deck.
func Preview(w io.Writer, deck Deck, opts Options) error {
	data := previewData{
		Deck:        deck,
		Options:     opts,
		SizeClass:   "size-" + string(opts.Size),
		LayoutClass: "layout-" + opts.Layout,
		StyleClass:  "style-" + opts.Style,
		DesignClass: "design-" + opts.Design,
	}
	return previewTmpl.Execute(w, data)
}
