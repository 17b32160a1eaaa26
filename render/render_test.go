package render

import (
	"bytes"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deckforge/deckforge-api/models"
)

func sampleDeck() Deck {
	snippet := "git rebase -i HEAD~3"
	return Deck{
		Name: "Git Essentials",
		Cards: []models.Card{
			{Question: "What is Git?", Answer: "A distributed VCS."},
			{
				Question:    "How do you squash commits?",
				Answer:      "Interactive rebase.",
				AnswerType:  models.AnswerTypeCodeSnippet,
				ExampleCode: &snippet,
			},
		},
	}
}

func TestOptionsFromQuery_Defaults(t *testing.T) {
	opts := OptionsFromQuery(url.Values{})
	require.Equal(t, Size3x5, opts.Size)
	require.Equal(t, Landscape, opts.Orientation)
	require.Equal(t, "classic", opts.Design)
	require.Equal(t, "grid", opts.Layout)
	require.Equal(t, "light", opts.Style)
}

func TestOptionsFromQuery_IgnoresUnknownValues(t *testing.T) {
	opts := OptionsFromQuery(url.Values{
		"size":        []string{"a4"},
		"orientation": []string{"sideways"},
		"design":      []string{"fancy"},
	})
	require.Equal(t, Size3x5, opts.Size)
	require.Equal(t, Landscape, opts.Orientation)
	require.Equal(t, "classic", opts.Design)
}

func TestOptionsFromQuery_AcceptsVariants(t *testing.T) {
	opts := OptionsFromQuery(url.Values{
		"size":        []string{"4x6"},
		"orientation": []string{"portrait"},
		"design":      []string{"minimal"},
		"layout":      []string{"list"},
		"style":       []string{"dark"},
	})
	require.Equal(t, Size4x6, opts.Size)
	require.Equal(t, Portrait, opts.Orientation)
	require.Equal(t, "minimal", opts.Design)
	require.Equal(t, "list", opts.Layout)
	require.Equal(t, "dark", opts.Style)
}

func TestPageDimensions_FollowSizeAndOrientation(t *testing.T) {
	w, h := Options{Size: Size3x5, Orientation: Landscape}.pageDimensions()
	require.Equal(t, 5.0, w)
	require.Equal(t, 3.0, h)

	w, h = Options{Size: Size4x6, Orientation: Portrait}.pageDimensions()
	require.Equal(t, 4.0, w)
	require.Equal(t, 6.0, h)
}

func TestPDF_ProducesOnePagePerCardFace(t *testing.T) {
	deck := sampleDeck()
	raw, err := PDF(deck, OptionsFromQuery(url.Values{}))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(raw, []byte("%PDF-")), "output is not a PDF")

	// Two cards, front and back each. Page objects carry /Type /Page; the
	// page-tree node carries /Type /Pages.
	pages := bytes.Count(raw, []byte("/Type /Page")) - bytes.Count(raw, []byte("/Type /Pages"))
	require.Equal(t, 4, pages)
}

func TestPreview_RendersQuestionsAndSnippets(t *testing.T) {
	var buf bytes.Buffer
	err := Preview(&buf, sampleDeck(), OptionsFromQuery(url.Values{}))
	require.NoError(t, err)

	html := buf.String()
	require.Contains(t, html, "Git Essentials")
	require.Contains(t, html, "What is Git?")
	require.Contains(t, html, "git rebase -i HEAD~3")
	require.Contains(t, html, "layout-grid")
	require.Contains(t, html, "size-3x5")
}

func TestPreview_EscapesCardContent(t *testing.T) {
	deck := Deck{
		Name: "XSS",
		Cards: []models.Card{
			{Question: `<script>alert("x")</script>`, Answer: "safe"},
		},
	}

	var buf bytes.Buffer
	err := Preview(&buf, deck, OptionsFromQuery(url.Values{}))
	require.NoError(t, err)
	require.False(t, strings.Contains(buf.String(), "<script>alert"), "card content must be escaped")
}
