// Fingerprint preprocessing algorithms built on OpenCV
package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Algorithm defines the interface for image preprocessing stages
type Algorithm interface {
	Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error)
	GetDefaultParams() map[string]interface{}
	GetName() string
	GetDescription() string
	Validate(params map[string]interface{}) error
}

const (
	SharpenName   = "sharpen"
	ThresholdName = "threshold"
)

var algorithms = make(map[string]Algorithm)

func Register(name string, algorithm Algorithm) {
	algorithms[name] = algorithm
}

func Get(name string) (Algorithm, bool) {
	algorithm, exists := algorithms[name]
	return algorithm, exists
}

// Apply validates params against the named algorithm and runs it.
func Apply(name string, input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	algorithm, exists := algorithms[name]
	if !exists {
		return gocv.NewMat(), fmt.Errorf("algorithm not found: %s", name)
	}

	if err := algorithm.Validate(params); err != nil {
		return gocv.NewMat(), fmt.Errorf("invalid parameters for %s: %w", name, err)
	}

	return algorithm.Apply(input, params)
}

func init() {
	Register(SharpenName, NewSharpen())
	Register(ThresholdName, NewThreshold())
}

// ensureGrayscale returns input unchanged when it already has one channel.
// Otherwise the caller must close the returned Mat.
func ensureGrayscale(input gocv.Mat) (gocv.Mat, error) {
	var code gocv.ColorConversionCode
	switch input.Channels() {
	case 1:
		return input, nil
	case 3:
		code = gocv.ColorBGRToGray
	case 4:
		code = gocv.ColorBGRAToGray
	default:
		return gocv.NewMat(), fmt.Errorf("unsupported channel count: %d", input.Channels())
	}

	gray := gocv.NewMat()
	if err := gocv.CvtColor(input, &gray, code); err != nil {
		gray.Close()
		return gocv.NewMat(), fmt.Errorf("grayscale conversion: %w", err)
	}
	return gray, nil
}
