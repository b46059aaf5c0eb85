package entity

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ImageDecoder loads one image by asset path.
type ImageDecoder func(path string) (image.Image, error)

const maxParallelDecodes = 4

// PreloadImages decodes every path concurrently. The first failure cancels
// the remaining work and is returned.
func PreloadImages(ctx context.Context, paths []string, decode ImageDecoder) (map[string]image.Image, error) {
	out := make(map[string]image.Image, len(paths))
	if len(paths) == 0 {
		return out, nil
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDecodes)
	for _, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := decode(p)
			if err != nil {
				return fmt.Errorf("preload %s: %w", p, err)
			}
			mu.Lock()
			out[p] = img
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// solidImage is a w x h rectangle of c.
func solidImage(w, h int, c color.Color) image.Image {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}
