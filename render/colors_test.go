package render

import (
	"image/color"
	"testing"
)

func TestParseHex(t *testing.T) {

	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{in: "#00BFFF", want: color.RGBA{R: 0, G: 191, B: 255, A: 255}},
		{in: "#FF1493", want: color.RGBA{R: 255, G: 20, B: 147, A: 255}},
		{in: "FFD700", want: color.RGBA{R: 255, G: 215, B: 0, A: 255}},
		{in: " #000000 ", want: color.RGBA{A: 255}},
		{in: "#FFF", wantErr: true},
		{in: "#GGGGGG", wantErr: true},
	}

	for _, tc := range tests {
		got, err := ParseHex(tc.in)

		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseHex(%q): expected error", tc.in)
			}
			continue
		}

		if err != nil {
			t.Errorf("ParseHex(%q): unexpected error %v", tc.in, err)
			continue
		}

		if got != tc.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPaletteByIndex(t *testing.T) {

	pal, err := ParsePalette(DefaultEllipseHex)

	if err != nil {
		t.Fatalf("failed parsing default palette: %v", err)
	}

	if len(pal) != 3 {
		t.Fatalf("expected 3 colors, got %d", len(pal))
	}

	// index cycles through the palette
	if pal.ByIndex(0) != pal.ByIndex(3) {
		t.Errorf("expected index to wrap around palette length")
	}

	// empty palette falls back to white
	var empty Palette

	if empty.ByIndex(2) != White {
		t.Errorf("expected white fallback for empty palette")
	}
}
