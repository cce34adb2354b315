package splash

import (
	"context"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost/lifecycle"
)

const square = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
  <rect x="0" y="0" width="10" height="10" fill="#ff0000"/>
</svg>`

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestRenderFillsTarget(t *testing.T) {
	img, err := Render(strings.NewReader(square), 20, 20)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 20), img.Bounds())

	r, g, b, a := img.At(10, 10).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0), b)
	assert.Equal(t, uint32(0xffff), a)
}

func TestRenderRejectsBadInput(t *testing.T) {
	_, err := Render(strings.NewReader(square), 0, 10)
	assert.Error(t, err)

	_, err = Render(strings.NewReader("<svg"), 10, 10)
	assert.Error(t, err)
}

func TestFactoryPresentsRenderedImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splash.svg")
	require.NoError(t, os.WriteFile(path, []byte(square), 0o600))

	var presented *image.RGBA
	closed := 0
	p := PresenterFunc(func(img *image.RGBA) (io.Closer, error) {
		presented = img
		return closerFunc(func() error { closed++; return nil }), nil
	})

	surface, err := Factory(path, 8, 4, p)(context.Background(), lifecycle.NewStartEvent(lifecycle.Launch, nil))
	require.NoError(t, err)
	require.NotNil(t, presented)
	assert.Equal(t, 8, presented.Bounds().Dx())
	require.NoError(t, surface.Close())
	assert.Equal(t, 1, closed)
}

func TestFactoryMissingFile(t *testing.T) {
	p := PresenterFunc(func(*image.RGBA) (io.Closer, error) { t.Fatal("presented"); return nil, nil })
	_, err := Factory(filepath.Join(t.TempDir(), "none.svg"), 8, 8, p)(context.Background(), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
