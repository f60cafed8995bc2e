package main

// Renders the first page of a PDF to an image, the same way the analysis
// pipeline produces preview images:
//   go run ./cmd/renderdemo -in resume.pdf -out preview.png

import (
	"context"
	"flag"
	"fmt"
	"os"

	"reup-backend/internal/preview"
)

func main() {
	inPath := flag.String("in", "", "Path to input PDF")
	outPath := flag.String("out", "preview.png", "Path to output image")
	page := flag.Int("page", 1, "Page to render")
	scale := flag.Float64("scale", 1.5, "Render scale")
	format := flag.String("format", "png", "Output format (png or jpeg)")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "input path is required")
		os.Exit(1)
	}

	in, err := os.Open(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open input: %v\n", err)
		os.Exit(1)
	}
	defer in.Close()

	opts := preview.DefaultOptions()
	opts.Page = *page
	opts.Scale = *scale
	opts.Format = *format

	renderer := preview.NewPDFRenderer()
	img, err := renderer.Render(context.Background(), in, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outPath, img, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d bytes, %s)\n", *outPath, len(img), opts.ContentType())
}
