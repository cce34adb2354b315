// Package splash renders the extended splash screen shown while the first
// launch initializes.
package splash

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost/lifecycle"
)

// Presenter puts a rendered splash on screen. Closing the returned value
// takes it down again.
type Presenter interface {
	Present(img *image.RGBA) (io.Closer, error)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(img *image.RGBA) (io.Closer, error)

func (f PresenterFunc) Present(img *image.RGBA) (io.Closer, error) { return f(img) }

// Render rasterizes the SVG read from r, scaled to width x height.
func Render(r io.Reader, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("splash: invalid size %dx%d", width, height)
	}
	icon, err := oksvg.ReadIconStream(r, oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("splash: parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)
	return img, nil
}

// RenderFile is Render for an SVG file on disk.
func RenderFile(path string, width, height int) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("splash: %w", err)
	}
	defer f.Close()
	return Render(f, width, height)
}

// Factory returns a splash factory that renders the SVG at path and hands
// it to p. The file is read on every call so a replaced asset is picked up.
func Factory(path string, width, height int, p Presenter) lifecycle.SplashFactory {
	return func(ctx context.Context, _ *lifecycle.StartEvent) (io.Closer, error) {
		if p == nil {
			return nil, errors.New("splash: no presenter")
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := RenderFile(path, width, height)
		if err != nil {
			return nil, err
		}
		return p.Present(img)
	}
}
