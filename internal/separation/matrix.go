// Package separation provides minimum wake-turbulence time gaps between two
// consecutive operations on the same runway.
package separation

import (
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
)

// Table maps [predecessor category][successor category] to a gap in seconds
type Table [models.NumWakeCategories][models.NumWakeCategories]float64

// Tables holds one table per (predecessor kind, successor kind) pair
type Tables struct {
	ArrArr Table
	ArrDep Table
	DepArr Table
	DepDep Table
}

// Matrix is an immutable separation model
type Matrix struct {
	tables [2][2]Table // [pred kind][succ kind]
}

// New validates the tables and builds a Matrix. Gaps must be finite and
// non-negative.
func New(t Tables) (*Matrix, error) {
	m := &Matrix{}
	m.tables[models.Arrival][models.Arrival] = t.ArrArr
	m.tables[models.Arrival][models.Departure] = t.ArrDep
	m.tables[models.Departure][models.Arrival] = t.DepArr
	m.tables[models.Departure][models.Departure] = t.DepDep

	for pk := range m.tables {
		for sk := range m.tables[pk] {
			for pc, row := range m.tables[pk][sk] {
				for sc, gap := range row {
					if gap < 0 || math.IsNaN(gap) || math.IsInf(gap, 0) {
						return nil, &models.ConfigurationError{
							Field: "separation",
							Reason: fmt.Sprintf("%s->%s gap for %s->%s must be a non-negative number, got %g",
								models.OperationKind(pk), models.OperationKind(sk),
								models.WakeCategory(pc), models.WakeCategory(sc), gap),
						}
					}
				}
			}
		}
	}
	return m, nil
}

// MinimumGap returns the required time between a predecessor and a
// successor operation on the same runway.
func (m *Matrix) MinimumGap(predKind, succKind models.OperationKind, predCat, succCat models.WakeCategory) (float64, error) {
	if !predKind.Valid() || !succKind.Valid() {
		return 0, &models.InvariantViolation{Reason: fmt.Sprintf("separation lookup with undeclared kind pair %s->%s", predKind, succKind)}
	}
	if !predCat.Valid() || !succCat.Valid() {
		return 0, &models.InvariantViolation{Reason: fmt.Sprintf("separation lookup with undeclared category pair %s->%s", predCat, succCat)}
	}
	return m.tables[predKind][succKind][predCat][succCat], nil
}

// MustMinimumGap is like MinimumGap but panics on an undeclared combination
func (m *Matrix) MustMinimumGap(predKind, succKind models.OperationKind, predCat, succCat models.WakeCategory) float64 {
	gap, err := m.MinimumGap(predKind, succKind, predCat, succCat)
	if err != nil {
		panic(err)
	}
	return gap
}

// Tables returns a copy of the underlying tables
func (m *Matrix) Tables() Tables {
	return Tables{
		ArrArr: m.tables[models.Arrival][models.Arrival],
		ArrDep: m.tables[models.Arrival][models.Departure],
		DepArr: m.tables[models.Departure][models.Arrival],
		DepDep: m.tables[models.Departure][models.Departure],
	}
}
