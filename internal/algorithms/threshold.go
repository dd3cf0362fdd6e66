package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"
)

// DefaultThreshold is the fixed binarization cut-off.
const DefaultThreshold = 128

const (
	// White is the binary value of background pixels.
	White uint8 = 255
	// Black is the binary value of ink (ridge) pixels.
	Black uint8 = 0
)

// BinaryValue applies the binarization rule to a single intensity: white iff p > t.
func BinaryValue(p, t uint8) uint8 {
	if p > t {
		return White
	}
	return Black
}

// Threshold implements fixed-threshold binarization of a grayscale image
type Threshold struct{}

// NewThreshold creates a new fixed-threshold binarizer
func NewThreshold() *Threshold {
	return &Threshold{}
}

func (th *Threshold) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	threshold := float64(DefaultThreshold)
	if val, ok := params["threshold"]; ok {
		if v, ok := val.(float64); ok {
			threshold = v
		}
	}

	gray, err := ensureGrayscale(input)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer func() {
		if gray.Ptr() != input.Ptr() {
			gray.Close()
		}
	}()

	// THRESH_BINARY: dst = maxval if src > thresh else 0
	output := gocv.NewMat()
	gocv.Threshold(gray, &output, float32(threshold), float32(White), gocv.ThresholdBinary)

	return output, nil
}

func (th *Threshold) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"threshold": float64(DefaultThreshold),
	}
}

func (th *Threshold) GetName() string {
	return "Fixed Threshold"
}

func (th *Threshold) GetDescription() string {
	return "Grayscale conversion followed by binary thresholding (white iff p > T)"
}

func (th *Threshold) Validate(params map[string]interface{}) error {
	if val, ok := params["threshold"]; ok {
		v, ok := val.(float64)
		if !ok {
			return fmt.Errorf("threshold must be a number")
		}
		if v < 0 || v > 255 {
			return fmt.Errorf("threshold must be between 0 and 255")
		}
	}
	return nil
}
