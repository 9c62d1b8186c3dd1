package regression

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Alias1177/GoldPredictor/models"
)

const leaf = -1

type artifact struct {
	Kind         Kind           `json:"kind"`
	Features     []string       `json:"features,omitempty"`
	Intercept    float64        `json:"intercept"`
	Coefficients []float64      `json:"coefficients,omitempty"`
	Trees        []treeArtifact `json:"trees,omitempty"`
}

type treeArtifact struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

// LoadFromFile reads a model artifact from path.
func LoadFromFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model: %w", err)
	}
	defer f.Close()

	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return m, nil
}

// Load decodes and validates a model artifact.
func Load(r io.Reader) (*Model, error) {
	var a artifact
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("decoding artifact: %w", err)
	}

	order, err := columnOrder(a.Features)
	if err != nil {
		return nil, err
	}

	m := &Model{kind: a.Kind, order: order}
	switch a.Kind {
	case KindLinear:
		if len(a.Coefficients) != len(order) {
			return nil, fmt.Errorf("linear model has %d coefficients, want %d", len(a.Coefficients), len(order))
		}
		m.estimator = linear{intercept: a.Intercept, coef: a.Coefficients}
	case KindForest:
		if len(a.Trees) == 0 {
			return nil, fmt.Errorf("forest model has no trees")
		}
		trees := make([]tree, 0, len(a.Trees))
		for i, ta := range a.Trees {
			t, err := buildTree(ta, len(order))
			if err != nil {
				return nil, fmt.Errorf("tree %d: %w", i, err)
			}
			trees = append(trees, t)
		}
		m.estimator = forest{trees: trees}
	default:
		return nil, fmt.Errorf("unsupported model kind %q", a.Kind)
	}

	return m, nil
}

// columnOrder maps the artifact's training columns onto Features.Vector().
// Without a list the columns are taken as SPX, USO, EUR/USD, SLV.
func columnOrder(names []string) ([]int, error) {
	if len(names) == 0 {
		return []int{0, 1, 2, 3}, nil
	}
	if len(names) != len(models.FeatureNames) {
		return nil, fmt.Errorf("artifact lists %d features, want %d", len(names), len(models.FeatureNames))
	}

	index := make(map[string]int, len(models.FeatureNames))
	for i, n := range models.FeatureNames {
		index[normalizeName(n)] = i
	}

	order := make([]int, len(names))
	seen := make(map[int]bool, len(names))
	for i, n := range names {
		src, ok := index[normalizeName(n)]
		if !ok {
			return nil, fmt.Errorf("unknown feature %q", n)
		}
		if seen[src] {
			return nil, fmt.Errorf("duplicate feature %q", n)
		}
		seen[src] = true
		order[i] = src
	}
	return order, nil
}

// normalizeName folds "EUR/USD", "eur_usd" and "EURUSD" together.
func normalizeName(s string) string {
	return strings.NewReplacer("/", "", "_", "", "-", "", " ", "").Replace(strings.ToUpper(s))
}

func buildTree(a treeArtifact, nFeatures int) (tree, error) {
	n := len(a.ChildrenLeft)
	if n == 0 {
		return tree{}, fmt.Errorf("no nodes")
	}
	if len(a.ChildrenRight) != n || len(a.Feature) != n || len(a.Threshold) != n || len(a.Value) != n {
		return tree{}, fmt.Errorf("node arrays differ in length")
	}

	for node := 0; node < n; node++ {
		l, r := a.ChildrenLeft[node], a.ChildrenRight[node]
		if l == leaf || r == leaf {
			if l != r {
				return tree{}, fmt.Errorf("node %d has a single child", node)
			}
			continue
		}
		// children always come after their parent, so traversal cannot loop
		if l <= node || l >= n || r <= node || r >= n {
			return tree{}, fmt.Errorf("node %d has child out of range", node)
		}
		if f := a.Feature[node]; f < 0 || f >= nFeatures {
			return tree{}, fmt.Errorf("node %d splits on feature %d", node, f)
		}
	}

	return tree{
		left:      a.ChildrenLeft,
		right:     a.ChildrenRight,
		feature:   a.Feature,
		threshold: a.Threshold,
		value:     a.Value,
	}, nil
}
