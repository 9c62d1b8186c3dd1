// Package regression evaluates a regression model trained elsewhere and
// exported as a JSON artifact.
//
// Two kinds are supported. "linear" is intercept + coefficients. "forest" is
// a list of decision trees in the scikit-learn array layout
// (children_left/children_right/feature/threshold/value, -1 marks a leaf);
// a sample goes left when x[feature] <= threshold and the forest output is the
// mean of its trees.
package regression

import (
	"errors"
	"fmt"
	"math"

	"github.com/Alias1177/GoldPredictor/models"
)

// Kind names the model family stored in an artifact
type Kind string

const (
	KindLinear Kind = "linear"
	KindForest Kind = "forest"
)

// ErrNonFinite is returned when the model produces NaN or Inf.
var ErrNonFinite = errors.New("prediction is not a finite number")

// ModelError wraps any failure while evaluating the model.
type ModelError struct {
	Op  string
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model %s: %v", e.Op, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

type estimator interface {
	predict(x []float64) float64
}

// Model is a loaded, ready to use regression model.
type Model struct {
	kind      Kind
	order     []int // order[i] = index into Features.Vector() for model column i
	estimator estimator
}

var _ models.Predictor = (*Model)(nil)

// Kind returns the model family.
func (m *Model) Kind() Kind { return m.kind }

// Predict returns the model output for one feature vector.
func (m *Model) Predict(f models.Features) (float64, error) {
	in := f.Vector()
	x := make([]float64, len(m.order))
	for i, src := range m.order {
		x[i] = in[src]
	}

	y := m.estimator.predict(x)
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, &ModelError{Op: "predict", Err: ErrNonFinite}
	}
	return y, nil
}

type linear struct {
	intercept float64
	coef      []float64
}

func (l linear) predict(x []float64) float64 {
	y := l.intercept
	for i, c := range l.coef {
		y += c * x[i]
	}
	return y
}

type tree struct {
	left, right []int
	feature     []int
	threshold   []float64
	value       []float64
}

func (t tree) predict(x []float64) float64 {
	node := 0
	for t.left[node] != leaf {
		if x[t.feature[node]] <= t.threshold[node] {
			node = t.left[node]
		} else {
			node = t.right[node]
		}
	}
	return t.value[node]
}

type forest struct {
	trees []tree
}

func (f forest) predict(x []float64) float64 {
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.trees))
}
