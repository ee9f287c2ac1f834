package main

import (
	"image"
	"image/color"
	"testing"
)

func TestMaskRows(t *testing.T) {
	// west half dark (land), east half light (water)
	img := image.NewGray(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			c := color.Gray{Y: 240}
			if x < 20 {
				c = color.Gray{Y: 10}
			}
			img.SetGray(x, y, c)
		}
	}

	rows := maskRows(img, 8, 4, 128)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row != "####...." {
			t.Errorf("row %d = %q", i, row)
		}
	}
}
