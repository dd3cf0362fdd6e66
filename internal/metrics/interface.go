// Quality metrics reported for the preprocessing stages
package metrics

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Metric compares a stage input with its output
type Metric interface {
	// Calculate computes the metric value
	Calculate(original, processed gocv.Mat) (float64, error)

	GetName() string
	GetDescription() string
}

// Stage names understood by EvaluateStage.
const (
	StageRefine   = "refine"
	StageBinarize = "binarize"
)

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates an evaluator with the default metrics registered
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}
	e.Register("psnr", NewPSNR())
	e.Register("sharpness", NewSharpness())
	e.Register("ink_ratio", NewInkRatio())
	return e
}

func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

func (e *Evaluator) Calculate(name string, original, processed gocv.Mat) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("metric not found: %s", name)
	}
	return metric.Calculate(original, processed)
}

// Get returns the metric registered under name.
func (e *Evaluator) Get(name string) (Metric, bool) {
	metric, exists := e.metrics[name]
	return metric, exists
}

// EvaluateStage calculates the metrics relevant to a pipeline stage.
// Metrics that fail are left out of the result.
func (e *Evaluator) EvaluateStage(stage string, before, after gocv.Mat) map[string]float64 {
	var names []string
	switch stage {
	case StageRefine:
		names = []string{"psnr", "sharpness"}
	case StageBinarize:
		names = []string{"ink_ratio"}
	}

	results := make(map[string]float64, len(names))
	for _, name := range names {
		if value, err := e.Calculate(name, before, after); err == nil {
			results[name] = value
		}
	}
	return results
}
