package algorithms

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// sharpenKernel is the classic 3x3 SHARPEN convolution, scaled by 1/16.
var sharpenKernel = [3][3]float32{
	{-2, -2, -2},
	{-2, 32, -2},
	{-2, -2, -2},
}

const sharpenScale = 16

// Sharpen implements the fixed fingerprint refinement filter. It takes no
// parameters and is deterministic; border pixels pass through unchanged.
type Sharpen struct{}

// NewSharpen creates a new sharpen algorithm
func NewSharpen() *Sharpen {
	return &Sharpen{}
}

func (s *Sharpen) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	kernel := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
	defer kernel.Close()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			kernel.SetFloatAt(r, c, sharpenKernel[r][c]/sharpenScale)
		}
	}

	// ddepth -1 keeps the 8-bit depth, so results saturate to 0..255.
	output := gocv.NewMat()
	err := gocv.Filter2D(input, &output, -1, kernel, image.Point{X: -1, Y: -1}, 0, gocv.BorderReplicate)
	if err != nil {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("sharpen filter: %w", err)
	}

	copyBorder(input, &output)
	return output, nil
}

// copyBorder restores the outermost rows and columns of dst from src. The
// kernel only applies where the full 3x3 neighbourhood lies inside the image.
func copyBorder(src gocv.Mat, dst *gocv.Mat) {
	rows, cols := src.Rows(), src.Cols()
	edges := []image.Rectangle{
		image.Rect(0, 0, cols, 1),
		image.Rect(0, rows-1, cols, rows),
		image.Rect(0, 0, 1, rows),
		image.Rect(cols-1, 0, cols, rows),
	}
	for _, rect := range edges {
		from := src.Region(rect)
		to := dst.Region(rect)
		from.CopyTo(&to)
		from.Close()
		to.Close()
	}
}

func (s *Sharpen) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{}
}

func (s *Sharpen) GetName() string {
	return "Sharpen"
}

func (s *Sharpen) GetDescription() string {
	return "Fixed 3x3 sharpening kernel to emphasise ridge edges"
}

func (s *Sharpen) Validate(params map[string]interface{}) error {
	return nil
}
