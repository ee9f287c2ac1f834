package main

// Builds the land mask embedded in internal/globe from an equirectangular
// PNG of Earth. Dark pixels are land.
// Original projection borrowed from https://github.com/arscan/encom-globe

import (
	"bufio"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"
)

func main() {
	in := flag.String("in", "equirectangle_projection.png", "Equirectangular PNG of Earth")
	out := flag.String("out", "", "Output file (default stdout)")
	width := flag.Int("width", 120, "Mask width in cells")
	height := flag.Int("height", 60, "Mask height in cells")
	threshold := flag.Int("threshold", 128, "Grey level (0-255) below which a cell is land")
	flag.Parse()

	file, err := os.Open(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding PNG: %v\n", err)
		os.Exit(1)
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", *out, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	bw := bufio.NewWriter(w)
	for _, row := range maskRows(img, *width, *height, uint8(*threshold)) {
		fmt.Fprintln(bw, row)
	}
	if err := bw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing mask: %v\n", err)
		os.Exit(1)
	}
}

// maskRows scales img down to width x height cells and marks every cell
// darker than threshold as land ('#'), the rest as water ('.').
func maskRows(img image.Image, width, height int, threshold uint8) []string {
	grey := image.NewGray(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(grey, grey.Bounds(), img, img.Bounds(), draw.Src, nil)

	rows := make([]string, height)
	line := make([]byte, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if grey.GrayAt(x, y).Y < threshold {
				line[x] = '#'
			} else {
				line[x] = '.'
			}
		}
		rows[y] = string(line)
	}
	return rows
}
