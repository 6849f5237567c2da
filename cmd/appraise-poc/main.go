package main

import (
	"context"
	"fmt"
	"os"

	"github.com/raine/balla/config"
	"github.com/raine/balla/internal/gateway"
	"github.com/raine/balla/internal/imageprep"
	"github.com/raine/balla/internal/region"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <image-path> [region]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY - Required\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_MODEL   - Optional, defaults to %s\n", gateway.DefaultModel)
		os.Exit(1)
	}
	config.LoadEnvFile()

	regionID := region.ID("baghdad")
	if len(os.Args) >= 3 {
		regionID = region.ID(os.Args[2])
	}
	reg, err := region.Lookup(regionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	raw, err := imageprep.NewSource().LoadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read image: %v\n", err)
		os.Exit(1)
	}
	img, err := imageprep.Prepare(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to prepare image: %v\n", err)
		os.Exit(1)
	}
	data, mimeType, err := imageprep.DecodeDataURI(img.DataURI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode prepared image: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	appraiser, err := gateway.NewGeminiAppraiser(ctx, os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"))
	if err != nil {
		fmt.Printf("Error creating Gemini appraiser: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Image:       %dx%d -> %dx%d (%d bytes)\n", img.SourceWidth, img.SourceHeight, img.Width, img.Height, img.EncodedSize)
	fmt.Printf("Region:      %s\n\n", reg.Name)

	reply, err := appraiser.Appraise(ctx, gateway.Input{Image: data, MIMEType: mimeType, Governorate: reg.Name})
	if err != nil {
		fmt.Printf("Error appraising image: %v\n", err)
		os.Exit(1)
	}
	if reply.NotSellable() {
		fmt.Printf("Not sellable: %s\n", reply.Message)
		return
	}
	if reply.Error != "" {
		fmt.Printf("Model error: %s %s\n", reply.Error, reply.Message)
		os.Exit(1)
	}

	r := reply.Result()
	fmt.Printf("Item:        %s (%s)\n", r.ItemName, r.ItemType)
	fmt.Printf("Condition:   %s (%d/100)\n", r.Condition, r.ConditionScore)
	fmt.Printf("Prices:      %d / %d / %d IQD\n", r.LowestPrice, r.AveragePrice, r.HighestPrice)
	fmt.Printf("Suggested:   %d IQD\n", r.SuggestedPrice)
	fmt.Printf("Strategy:    %s\n", r.Recommendation)
}
