// Package render produces printable output for a deck: index-card PDFs
// and an HTML preview of the same layout.
package render

import (
	"net/url"

	"github.com/deckforge/deckforge-api/models"
)

type CardSize string

const (
	Size3x5 CardSize = "3x5"
	Size4x6 CardSize = "4x6"
)

type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Options selects the physical card format and visual treatment.
type Options struct {
	Size        CardSize
	Orientation Orientation
	Design      string // "classic" or "minimal"
	Layout      string // "grid" or "list" (preview only)
	Style       string // "light" or "dark" (preview only)
}

// OptionsFromQuery parses render options from URL query parameters,
// falling back to defaults for anything missing or unrecognized.
func OptionsFromQuery(q url.Values) Options {
	opts := Options{
		Size:        Size3x5,
		Orientation: Landscape,
		Design:      "classic",
		Layout:      "grid",
		Style:       "light",
	}
	if q.Get("size") == string(Size4x6) {
		opts.Size = Size4x6
	}
	if q.Get("orientation") == string(Portrait) {
		opts.Orientation = Portrait
	}
	if d := q.Get("design"); d == "minimal" {
		opts.Design = d
	}
	if l := q.Get("layout"); l == "list" {
		opts.Layout = l
	}
	if s := q.Get("style"); s == "dark" {
		opts.Style = s
	}
	return opts
}

// pageDimensions returns width and height in inches for the chosen size
// and orientation.
func (o Options) pageDimensions() (float64, float64) {
	w, h := 5.0, 3.0
	if o.Size == Size4x6 {
		w, h = 6.0, 4.0
	}
	if o.Orientation == Portrait {
		w, h = h, w
	}
	return w, h
}

// Deck bundles everything the renderers need.
type Deck struct {
	Name  string
	Cards []models.Card
}
