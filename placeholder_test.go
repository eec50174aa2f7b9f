package folio

import (
	"bytes"
	"image/png"
	"testing"
)

func TestPlaceholderSide(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 400},
		{"abc", 400},
		{"-5", 400},
		{"0", 400},
		{"250", 250},
		{"1200", 1200},
		{"99999", maxPlaceholderWidth},
	}
	for _, tt := range tests {
		if got := placeholderSide(tt.raw, 400, maxPlaceholderWidth); got != tt.want {
			t.Errorf("placeholderSide(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestPlaceholderPNG(t *testing.T) {
	for _, size := range [][2]int{{400, 300}, {1, 1}, {30, 10}} {
		data, err := placeholderPNG(size[0], size[1])
		if err != nil {
			t.Fatalf("placeholderPNG(%d, %d): %v", size[0], size[1], err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		b := img.Bounds()
		if b.Dx() != size[0] || b.Dy() != size[1] {
			t.Errorf("bounds = %v, want %dx%d", b, size[0], size[1])
		}
	}
}

func TestPlaceholderDrawsLabel(t *testing.T) {
	data, err := placeholderPNG(400, 300)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	var fg int
	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if uint8(r>>8) == placeholderFG.R && uint8(g>>8) == placeholderFG.G && uint8(b>>8) == placeholderFG.B {
				fg++
			}
		}
	}
	if fg == 0 {
		t.Error("no label pixels drawn")
	}
}
