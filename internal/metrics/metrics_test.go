package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func gradient(rows, cols int) gocv.Mat {
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m.SetUCharAt(r, c, uint8((r*31+c*17)%256))
		}
	}
	return m
}

func TestPSNR(t *testing.T) {
	a := gradient(8, 8)
	defer a.Close()

	same, err := NewPSNR().Calculate(a, a)
	require.NoError(t, err)
	assert.True(t, math.IsInf(same, 1))

	b := a.Clone()
	defer b.Close()
	b.SetUCharAt(0, 0, a.GetUCharAt(0, 0)^0xff)
	psnr, err := NewPSNR().Calculate(a, b)
	require.NoError(t, err)
	assert.Greater(t, psnr, 0.0)
	assert.False(t, math.IsInf(psnr, 1))
}

func TestPSNR_Mismatch(t *testing.T) {
	a := gradient(4, 4)
	defer a.Close()
	b := gradient(4, 5)
	defer b.Close()
	_, err := NewPSNR().Calculate(a, b)
	assert.Error(t, err)
}

func TestSharpness_FlatImage(t *testing.T) {
	flat := gocv.NewMatWithSize(6, 6, gocv.MatTypeCV8UC1)
	defer flat.Close()
	flat.SetTo(gocv.NewScalar(50, 0, 0, 0))

	ratio, err := NewSharpness().Calculate(flat, flat)
	require.NoError(t, err)
	assert.Equal(t, 1.0, ratio)
}

func TestInkRatio(t *testing.T) {
	binary := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC1)
	defer binary.Close()
	binary.SetUCharAt(0, 0, 0)
	binary.SetUCharAt(0, 1, 255)
	binary.SetUCharAt(1, 0, 255)
	binary.SetUCharAt(1, 1, 255)

	ratio, err := NewInkRatio().Calculate(binary, binary)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, ratio, 1e-9)
}

func TestEvaluateStage(t *testing.T) {
	e := NewEvaluator()
	for name, label := range map[string]string{"psnr": "PSNR", "sharpness": "Sharpness", "ink_ratio": "Ink Ratio"} {
		metric, ok := e.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, label, metric.GetName())
		assert.NotEmpty(t, metric.GetDescription())
	}
	_, ok := e.Get("ssim")
	assert.False(t, ok)

	img := gradient(10, 10)
	defer img.Close()

	refine := e.EvaluateStage(StageRefine, img, img)
	assert.Contains(t, refine, "psnr")
	assert.Contains(t, refine, "sharpness")
	assert.NotContains(t, refine, "ink_ratio")

	binarize := e.EvaluateStage(StageBinarize, img, img)
	assert.Contains(t, binarize, "ink_ratio")

	assert.Empty(t, e.EvaluateStage("unknown", img, img))

	_, err := e.Calculate("ssim", img, img)
	assert.Error(t, err)
}
