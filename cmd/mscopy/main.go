// Command mscopy runs a sample-adaptive depth/stencil copy on a synthetic
// surface and prints the samples of one texel before and after.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/mscopy"
	_ "github.com/gogpu/mscopy/gpu" // GPU dispatcher, falls back to CPU
)

func main() {
	var (
		width      = flag.Int("width", 64, "surface width")
		height     = flag.Int("height", 64, "surface height")
		srcSamples = flag.String("src-samples", "8", "source sample count (1, 2, 4, 8)")
		dstSamples = flag.String("dst-samples", "4", "destination sample count (1, 2, 4, 8)")
		policy     = flag.String("policy", "", "reduction policy: min, max or select:N (default from -reversed-z)")
		reversedZ  = flag.Bool("reversed-z", false, "depth uses reversed Z (conservative policy becomes max)")
		workers    = flag.Int("workers", 0, "CPU workers (0 = GOMAXPROCS)")
		useGPU     = flag.Bool("gpu", true, "use the GPU dispatcher when available")
		texelX     = flag.Int("x", 3, "texel x to print")
		texelY     = flag.Int("y", 3, "texel y to print")
		tiffOut    = flag.String("tiff", "", "write destination sample -sample as 16-bit TIFF")
		tiffSample = flag.Int("sample", 0, "sample index for -tiff")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()
	defer mscopy.UnregisterDispatcher()

	if *verbose {
		mscopy.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	ns, err := mscopy.ParseSampleCount(*srcSamples)
	if err != nil {
		log.Fatalf("src-samples: %v", err)
	}
	nd, err := mscopy.ParseSampleCount(*dstSamples)
	if err != nil {
		log.Fatalf("dst-samples: %v", err)
	}

	pol := mscopy.ConservativePolicy(*reversedZ)
	if *policy != "" {
		if pol, err = mscopy.ParsePolicy(*policy); err != nil {
			log.Fatalf("policy: %v", err)
		}
	}

	format := gputypes.TextureFormatDepth24PlusStencil8
	src, err := mscopy.NewImage(*width, *height, ns, format)
	if err != nil {
		log.Fatalf("source: %v", err)
	}
	dst, err := mscopy.NewImage(*width, *height, nd, format)
	if err != nil {
		log.Fatalf("destination: %v", err)
	}
	fillDepthPattern(src)

	opts := []mscopy.CopierOption{mscopy.WithPolicy(pol), mscopy.WithWorkers(*workers)}
	if !*useGPU {
		opts = append(opts, mscopy.WithoutGPU())
	}
	c := mscopy.NewCopier(opts...)
	defer c.Close()

	start := time.Now()
	if err := c.Copy(context.Background(), dst, src, mscopy.FullRegion(src)); err != nil {
		log.Fatalf("copy: %v", err)
	}
	elapsed := time.Since(start)

	if src.Contains(*texelX, *texelY) {
		fmt.Printf("source      (%d,%d) %v: %v\n", *texelX, *texelY, src.Samples, src.Texel(*texelX, *texelY))
		fmt.Printf("destination (%d,%d) %v: %v\n", *texelX, *texelY, dst.Samples, dst.Texel(*texelX, *texelY))
	}
	fmt.Printf("copied %dx%d %v -> %v with policy %v in %v\n",
		*width, *height, src.Samples, dst.Samples, pol, elapsed)

	if *tiffOut != "" {
		if err := writeTIFF(*tiffOut, dst, *tiffSample); err != nil {
			log.Fatalf("tiff: %v", err)
		}
		log.Printf("sample %d written to %s", *tiffSample, *tiffOut)
	}
}

// fillDepthPattern fills each sample with a distinct 24-bit depth and an
// 8-bit stencil of (x + y) & 0xFF.
func fillDepthPattern(img *mscopy.Image) {
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			stencil := uint32((x + y) & 0xFF) //nolint:gosec // masked
			for s := 0; s < int(img.Samples); s++ {
				depth := uint32(x*4099+y*257+s*977) & 0x00FFFFFF //nolint:gosec // masked
				img.Set(x, y, s, stencil<<24|depth)
			}
		}
	}
}

func writeTIFF(path string, img *mscopy.Image, sample int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := mscopy.EncodeSampleTIFF(f, img, sample); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
