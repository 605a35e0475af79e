// Package report renders a decoded schedule for people and spreadsheets
package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/GoSim-25-26J-441/runway-core/internal/encoding"
	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
)

// Report is everything printed at the end of a run
type Report struct {
	RunID       string
	Algorithm   string
	Schedule    []models.Assignment
	Breakdown   models.Breakdown
	Mode        encoding.DepartureMode
	Generations int
	Evaluations int
	Elapsed     time.Duration
}

// NetDeviation is the signed sum of deviations from target in each
// flight's permitted direction. Unlike the delay term it goes negative
// when flights sit on the wrong side of their target.
func NetDeviation(schedule []models.Assignment, mode encoding.DepartureMode) float64 {
	total := 0.0
	for _, a := range schedule {
		if a.Kind == models.Departure && mode != encoding.DepartureDelay {
			total += a.Target - a.Time
		} else {
			total += a.Time - a.Target
		}
	}
	return total
}

// ByRunway returns a copy of schedule ordered by runway, then sequence
func ByRunway(schedule []models.Assignment) []models.Assignment {
	out := slices.Clone(schedule)
	slices.SortStableFunc(out, func(a, b models.Assignment) int {
		if c := cmp.Compare(a.Runway, b.Runway); c != 0 {
			return c
		}
		return cmp.Compare(a.Sequence, b.Sequence)
	})
	return out
}

// WriteTable prints one aligned row per flight, grouped by runway
func WriteTable(w io.Writer, schedule []models.Assignment) error {
	tw := tabwriter.NewWriter(w, 0, 1, 2, ' ', 0)
	fmt.Fprintln(tw, "RUNWAY\tSEQ\tFLIGHT\tKIND\tCATEGORY\tTARGET\tTIME\tDELAY\t")
	for _, a := range ByRunway(schedule) {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			a.Runway, a.Sequence, a.FlightID, a.Kind, a.Category,
			seconds(a.Target), seconds(a.Time), seconds(a.Delay))
	}
	return tw.Flush()
}

// WriteSummary prints the cost line and violation counts
func WriteSummary(w io.Writer, r *Report) error {
	b := r.Breakdown
	status := "feasible"
	if !b.Feasible() {
		status = "INFEASIBLE"
	}
	_, err := fmt.Fprintf(w,
		"run %s (%s): cost %s, total delay %ss, net deviation %ss, penalty %s [%s]\n"+
			"  position conflicts %d, window violations %d, separation conflicts %d, dedication violations %d\n"+
			"  %d generations, %d evaluations in %s\n",
		r.RunID, r.Algorithm, seconds(b.Cost), seconds(b.TotalDelay),
		seconds(NetDeviation(r.Schedule, r.Mode)), seconds(b.Penalty), status,
		b.PositionConflicts, b.WindowViolations, b.SeparationConflicts, b.DedicationViolations,
		r.Generations, r.Evaluations, r.Elapsed.Round(time.Millisecond))
	return err
}

// Write prints the summary followed by the schedule table
func Write(w io.Writer, r *Report) error {
	if err := WriteSummary(w, r); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return WriteTable(w, r.Schedule)
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
