package qr

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"
)

func TestDataURL_ReturnsEmbeddablePNG(t *testing.T) {
	dataURL, err := DataURL("http://127.0.0.1:5173", "abc123")
	if err != nil {
		t.Fatalf("DataURL: %v", err)
	}

	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(dataURL, prefix) {
		t.Fatalf("expected data URL prefix, got %q", dataURL[:30])
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, prefix))
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("payload is not a PNG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != pngSize || bounds.Dy() != pngSize {
		t.Fatalf("expected %dx%d image, got %dx%d", pngSize, pngSize, bounds.Dx(), bounds.Dy())
	}
}

func TestDataURL_TrimsTrailingSlash(t *testing.T) {
	withSlash, err := DataURL("http://example.com/", "card1")
	if err != nil {
		t.Fatalf("DataURL: %v", err)
	}
	withoutSlash, err := DataURL("http://example.com", "card1")
	if err != nil {
		t.Fatalf("DataURL: %v", err)
	}
	if withSlash != withoutSlash {
		t.Fatalf("base URL normalization should make these identical")
	}
}
