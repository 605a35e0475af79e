// Package store persists best-known solutions so a later run can warm-start
// from them. Files are msgpack records compressed with zstd.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
)

// DefaultFilename is the conventional name for a saved solution
const DefaultFilename = "best_solution.msgpack.zst"

// Solution is a persisted best vector and its cost. FlightIDs records the
// registry order the vector was built against.
type Solution struct {
	RunID     string    `msgpack:"run_id"`
	Algorithm string    `msgpack:"algorithm"`
	Seed      int64     `msgpack:"seed"`
	FlightIDs []string  `msgpack:"flight_ids"`
	Vector    []float64 `msgpack:"vector"`
	Cost      float64   `msgpack:"cost"`
	CreatedAt time.Time `msgpack:"created_at"`
}

// Encode writes s to w as zstd-compressed msgpack
func Encode(w io.Writer, s *Solution) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	defer zw.Close()

	if err := msgpack.NewEncoder(zw).Encode(s); err != nil {
		return fmt.Errorf("failed to encode solution: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}
	return nil
}

// Decode reads a solution written by Encode
func Decode(r io.Reader) (*Solution, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var s Solution
	if err := msgpack.NewDecoder(zr).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode solution: %w", err)
	}
	return &s, nil
}

// Save writes s to path, creating parent directories as needed. The file
// is written to a temporary name first and renamed into place.
func Save(path string, s *Solution) error {
	if s == nil || len(s.Vector) == 0 {
		return &models.ConfigurationError{Field: "solution", Reason: "nothing to save"}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, s); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads a solution from path. The vector must have expectedDim
// entries; a mismatch means the file was produced for a different flight
// set and is reported as a *models.ConfigurationError.
func Load(path string, expectedDim int) (*Solution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open solution: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(s.Vector) != expectedDim {
		return nil, &models.ConfigurationError{
			Field:  "warm_start",
			Reason: fmt.Sprintf("%s holds %d values, the current flight set needs %d", path, len(s.Vector), expectedDim),
		}
	}
	return s, nil
}

// CheckFlights reports whether the solution was built for ids, in order
func (s *Solution) CheckFlights(ids []string) error {
	if len(s.FlightIDs) == 0 {
		return nil
	}
	if len(s.FlightIDs) != len(ids) {
		return &models.ConfigurationError{Field: "warm_start", Reason: fmt.Sprintf("saved for %d flights, have %d", len(s.FlightIDs), len(ids))}
	}
	for i := range ids {
		if s.FlightIDs[i] != ids[i] {
			return &models.ConfigurationError{Field: "warm_start", Reason: fmt.Sprintf("flight %d is %s in the saved solution, %s now", i, s.FlightIDs[i], ids[i])}
		}
	}
	return nil
}
