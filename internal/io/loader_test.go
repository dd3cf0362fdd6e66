package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func newTestLoader() *ImageLoader {
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewImageLoader(logger)
}

func TestIsSupportedFormat(t *testing.T) {
	cases := map[string]bool{
		"finger.jpg":        true,
		"finger.JPEG":       true,
		"/tmp/a/finger.png": true,
		"finger.bmp":        true,
		"finger.tiff":       false,
		"finger.gif":        false,
		"finger":            false,
		"dir.png/finger":    false,
	}
	for path, want := range cases {
		assert.Equal(t, want, IsSupportedFormat(path), path)
	}
}

func TestLoadImage_UnsupportedFormat(t *testing.T) {
	_, err := newTestLoader().LoadImage("finger.gif")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadImage_MissingFile(t *testing.T) {
	_, err := newTestLoader().LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	require.ErrorIs(t, err, ErrLoadFailed)
}

func TestLoadImage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))

	_, err := newTestLoader().LoadImage(path)
	require.ErrorIs(t, err, ErrLoadFailed)
}

func TestLoadImage_KeepsGrayscale(t *testing.T) {
	loader := newTestLoader()
	src := gocv.NewMatWithSize(6, 9, gocv.MatTypeCV8UC1)
	defer src.Close()
	for r := 0; r < 6; r++ {
		for c := 0; c < 9; c++ {
			src.SetUCharAt(r, c, uint8(r*20+c))
		}
	}

	for _, name := range []string{"gray.png", "gray.bmp"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, loader.SaveImage(src, path))

		got, err := loader.LoadImage(path)
		require.NoError(t, err, name)
		assert.Equal(t, 1, got.Channels(), name)
		assert.Equal(t, 6, got.Rows(), name)
		assert.Equal(t, 9, got.Cols(), name)
		assert.Equal(t, uint8(3*20+4), got.GetUCharAt(3, 4), name)
		got.Close()
	}
}

func TestLoadImage_KeepsColorAndAlpha(t *testing.T) {
	loader := newTestLoader()

	bgr := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer bgr.Close()
	bgr.SetTo(gocv.NewScalar(10, 20, 30, 0))
	bgrPath := filepath.Join(t.TempDir(), "color.png")
	require.NoError(t, loader.SaveImage(bgr, bgrPath))

	got, err := loader.LoadImage(bgrPath)
	require.NoError(t, err)
	defer got.Close()
	assert.Equal(t, gocv.MatTypeCV8UC3, got.Type())

	bgra := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC4)
	defer bgra.Close()
	bgra.SetTo(gocv.NewScalar(10, 20, 30, 128))
	bgraPath := filepath.Join(t.TempDir(), "alpha.png")
	require.NoError(t, loader.SaveImage(bgra, bgraPath))

	withAlpha, err := loader.LoadImage(bgraPath)
	require.NoError(t, err)
	defer withAlpha.Close()
	assert.Equal(t, gocv.MatTypeCV8UC4, withAlpha.Type())
	assert.Equal(t, gocv.Vecb{10, 20, 30, 128}, withAlpha.GetVecbAt(1, 1))
}

func TestLoadImage_ReducesDeepImagesTo8Bit(t *testing.T) {
	loader := newTestLoader()
	deep := gocv.NewMatWithSize(3, 5, gocv.MatTypeCV16UC1)
	defer deep.Close()
	deep.SetTo(gocv.NewScalar(512, 0, 0, 0))

	path := filepath.Join(t.TempDir(), "deep.png")
	require.NoError(t, loader.SaveImage(deep, path))

	got, err := loader.LoadImage(path)
	require.NoError(t, err)
	defer got.Close()
	assert.Equal(t, gocv.MatTypeCV8UC1, got.Type())
	assert.Equal(t, 3, got.Rows())
	assert.Equal(t, 5, got.Cols())
}

func TestSaveImage_Rejects(t *testing.T) {
	loader := newTestLoader()
	empty := gocv.NewMat()
	defer empty.Close()
	assert.Error(t, loader.SaveImage(empty, filepath.Join(t.TempDir(), "x.png")))

	m := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC1)
	defer m.Close()
	assert.ErrorIs(t, loader.SaveImage(m, filepath.Join(t.TempDir(), "x.gif")), ErrUnsupportedFormat)
}
