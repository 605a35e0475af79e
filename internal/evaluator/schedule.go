package evaluator

import (
	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
)

// Schedule decodes x into one assignment per flight, in registry order.
// Sequence is the 0-based rank of the flight on its runway by time.
func (e *Evaluator) Schedule(x []float64) ([]models.Assignment, error) {
	c, err := e.enc.Decode(x)
	if err != nil {
		return nil, err
	}

	out := make([]models.Assignment, e.reg.Len())
	for i := range out {
		f := e.reg.Flight(i)
		out[i] = models.Assignment{
			Index:    i,
			FlightID: f.ID,
			Kind:     f.Kind,
			Category: f.Category,
			Target:   f.Target,
			Runway:   c.Runways[i],
			Position: c.Positions[i],
			Time:     c.Times[i],
			Delay:    e.delay(i, c.Times[i]),
		}
	}
	for _, seq := range e.runwaySequences(c) {
		for rank, i := range seq {
			out[i].Sequence = rank
		}
	}
	return out, nil
}
