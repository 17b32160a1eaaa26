package render

import (
	"bytes"

	"github.com/go-pdf/fpdf"
)

const pageMargin = 0.3 // inches

// PDF renders the deck as printable index cards, one page per card face:
// question on the front, answer on the back so double-sided printing
// lines up.
func PDF(deck Deck, opts Options) ([]byte, error) {
	w, h := opts.pageDimensions()

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "in",
		Size:    fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)

	for _, card := range deck.Cards {
		writeFront(pdf, deck.Name, card.Question, opts, w)
		writeBack(pdf, card.Answer, card.ExampleCode, opts, w, h)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFront(pdf *fpdf.Fpdf, deckName, question string, opts Options, w float64) {
	pdf.AddPage()

	usable := w - 2*pageMargin
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if opts.Design == "classic" {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(usable, 0.2, tr(deckName), "", 1, "C", false, 0, "")
		pdf.Ln(0.1)
	}

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(usable, 0.28, tr(question), "", "C", false)
}

func writeBack(pdf *fpdf.Fpdf, answer string, exampleCode *string, opts Options, w, h float64) {
	pdf.AddPage()

	usable := w - 2*pageMargin
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(usable, 0.22, tr(answer), "", "L", false)

	if exampleCode != nil && *exampleCode != "" {
		pdf.Ln(0.1)
		pdf.SetFont("Courier", "", 9)
		pdf.SetFillColor(240, 240, 240)
		pdf.MultiCell(usable, 0.18, tr(*exampleCode), "", "L", opts.Design == "classic")
	}

	if opts.Design == "classic" {
		pdf.SetY(h - pageMargin - 0.15)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.SetTextColor(160, 160, 160)
		pdf.CellFormat(usable, 0.15, "deckforge", "", 0, "R", false, 0, "")
	}
}
