package metrics

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

// PSNR implements Peak Signal-to-Noise Ratio between stage input and output
type PSNR struct{}

func NewPSNR() *PSNR {
	return &PSNR{}
}

func (p *PSNR) Calculate(original, processed gocv.Mat) (float64, error) {
	if err := checkPair(original, processed); err != nil {
		return 0, err
	}

	gray1, release1, err := grayscale(original)
	if err != nil {
		return 0, err
	}
	defer release1()
	gray2, release2, err := grayscale(processed)
	if err != nil {
		return 0, err
	}
	defer release2()

	sumSquaredDiff := 0.0
	for y := 0; y < gray1.Rows(); y++ {
		for x := 0; x < gray1.Cols(); x++ {
			diff := float64(gray1.GetUCharAt(y, x)) - float64(gray2.GetUCharAt(y, x))
			sumSquaredDiff += diff * diff
		}
	}

	mse := sumSquaredDiff / float64(gray1.Rows()*gray1.Cols())
	if mse == 0 {
		return math.Inf(1), nil
	}
	return 20 * math.Log10(255.0/math.Sqrt(mse)), nil
}

func (p *PSNR) GetName() string {
	return "PSNR"
}

func (p *PSNR) GetDescription() string {
	return "Peak Signal-to-Noise Ratio between stage input and output"
}

// Sharpness is the ratio of Laplacian variance after and before a stage.
type Sharpness struct{}

func NewSharpness() *Sharpness {
	return &Sharpness{}
}

func (s *Sharpness) Calculate(original, processed gocv.Mat) (float64, error) {
	if err := checkPair(original, processed); err != nil {
		return 0, err
	}

	before, err := laplacianVariance(original)
	if err != nil {
		return 0, err
	}
	after, err := laplacianVariance(processed)
	if err != nil {
		return 0, err
	}

	if before == 0 {
		return 1.0, nil
	}
	return after / before, nil
}

func (s *Sharpness) GetName() string {
	return "Sharpness"
}

func (s *Sharpness) GetDescription() string {
	return "Laplacian variance ratio, above 1 when edges were emphasised"
}

// InkRatio is the fraction of black pixels in the processed (binary) image.
type InkRatio struct{}

func NewInkRatio() *InkRatio {
	return &InkRatio{}
}

func (r *InkRatio) Calculate(original, processed gocv.Mat) (float64, error) {
	if processed.Empty() {
		return 0, fmt.Errorf("empty images")
	}
	if processed.Channels() != 1 {
		return 0, fmt.Errorf("ink ratio needs a single-channel image")
	}

	total := processed.Rows() * processed.Cols()
	ink := total - gocv.CountNonZero(processed)
	return float64(ink) / float64(total), nil
}

func (r *InkRatio) GetName() string {
	return "Ink Ratio"
}

func (r *InkRatio) GetDescription() string {
	return "Fraction of ridge (black) pixels after binarization"
}

func checkPair(original, processed gocv.Mat) error {
	if original.Empty() || processed.Empty() {
		return fmt.Errorf("empty images")
	}
	if original.Rows() != processed.Rows() || original.Cols() != processed.Cols() {
		return fmt.Errorf("image dimensions mismatch")
	}
	return nil
}

// grayscale returns a single channel view of input and a release func for it.
func grayscale(input gocv.Mat) (gocv.Mat, func(), error) {
	if input.Channels() == 1 {
		return input, func() {}, nil
	}

	code := gocv.ColorBGRToGray
	if input.Channels() == 4 {
		code = gocv.ColorBGRAToGray
	}
	gray := gocv.NewMat()
	if err := gocv.CvtColor(input, &gray, code); err != nil {
		gray.Close()
		return gocv.NewMat(), func() {}, err
	}
	return gray, func() { gray.Close() }, nil
}

func laplacianVariance(input gocv.Mat) (float64, error) {
	gray, release, err := grayscale(input)
	if err != nil {
		return 0, err
	}
	defer release()

	laplacian := gocv.NewMat()
	defer laplacian.Close()
	gocv.Laplacian(gray, &laplacian, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)
	if laplacian.Empty() {
		return 0, fmt.Errorf("laplacian failed")
	}

	total := float64(laplacian.Rows() * laplacian.Cols())
	mean := 0.0
	for y := 0; y < laplacian.Rows(); y++ {
		for x := 0; x < laplacian.Cols(); x++ {
			mean += laplacian.GetDoubleAt(y, x)
		}
	}
	mean /= total

	variance := 0.0
	for y := 0; y < laplacian.Rows(); y++ {
		for x := 0; x < laplacian.Cols(); x++ {
			diff := laplacian.GetDoubleAt(y, x) - mean
			variance += diff * diff
		}
	}
	return variance / total, nil
}
