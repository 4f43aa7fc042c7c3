package kde

import (
	"context"

	"github.com/uyouii/density-estimation/common"
	"github.com/uyouii/density-estimation/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Evaluator computes (1/N) * sum_i K((x - X_i)/h_i) / h_i for every point x.
//
// The pairwise matrix is built chunk by chunk: at most memoryBudget cells are
// alive at once, whatever the grid size. Every row is computed independently,
// so the chunk size never changes the result.
type Evaluator struct {
	kernel       Kernel
	memoryBudget int
}

func NewEvaluator(kernel Kernel, memoryBudget int) *Evaluator {
	if kernel == nil {
		kernel = NewGaussianKernel()
	}
	if memoryBudget <= 0 {
		memoryBudget = DefaultMemoryBudget
	}
	return &Evaluator{
		kernel:       kernel,
		memoryBudget: memoryBudget,
	}
}

// ChunkSize is the number of grid rows processed together for n sample points.
func (e *Evaluator) ChunkSize(n int) int {
	if n <= 0 {
		return 1
	}
	return max(e.memoryBudget/n, 1)
}

func (e *Evaluator) Evaluate(ctx context.Context, grid *model.Grid,
	xs []float64, bw Bandwidth) ([]float64, error) {
	if grid.Len() == 0 {
		return nil, common.InvalidValuef("grid is empty")
	}
	return e.evaluatePoints(ctx, grid.Points(), xs, bw)
}

func (e *Evaluator) evaluatePoints(ctx context.Context, points []float64,
	xs []float64, bw Bandwidth) ([]float64, error) {
	n, m := len(xs), len(points)
	if n == 0 {
		return nil, common.InvalidValuef("sample is empty")
	}
	if m == 0 {
		return nil, common.InvalidValuef("no evaluation points")
	}
	if err := bw.validate(n); err != nil {
		return nil, err
	}

	hs := make([]float64, n)
	invH := make([]float64, n)
	for i := range xs {
		hs[i] = bw.At(i)
		invH[i] = 1 / hs[i]
	}

	chunk := min(e.ChunkSize(n), m)
	buf := mat.NewDense(chunk, n, nil)
	dens := make([]float64, m)

	for start := 0; start < m; start += chunk {
		// cancellation is only checked between chunks
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+chunk, m)
		for r := 0; r < end-start; r++ {
			x := points[start+r]
			row := buf.RawRowView(r)
			for j, xj := range xs {
				row[j] = (x - xj) / hs[j]
			}
			applyKernel(e.kernel, row)
			dens[start+r] = floats.Dot(row, invH) / float64(n)
		}
	}

	return dens, nil
}
