// Package report writes drive runs to a terminal or pipe.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/rotorsim/internal/dynamo"
	"github.com/san-kum/rotorsim/internal/experiment"
)

const (
	FormatSummary = "summary"
	FormatCSV     = "csv"
	FormatJSON    = "json"
)

var csvHeader = []string{"time", "omega", "rpm", "voltage", "me", "mload", "m0"}

// Write renders run in the given format.
func Write(w io.Writer, format string, run *experiment.Run) error {
	switch format {
	case FormatSummary, "":
		return WriteSummary(w, run)
	case FormatCSV:
		return WriteCSV(w, run)
	case FormatJSON:
		return WriteJSON(w, run)
	default:
		return fmt.Errorf("%w: unknown output format %q", dynamo.ErrInvalidArgument, format)
	}
}

func WriteCSV(w io.Writer, run *experiment.Run) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, s := range run.Samples {
		row := []string{
			formatFloat(s.Time),
			formatFloat(s.Omega),
			formatFloat(s.RPM),
			formatFloat(s.Voltage),
			formatFloat(s.Moment),
			formatFloat(s.LoadMoment),
			formatFloat(s.BrakingMoment),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func WriteJSON(w io.Writer, run *experiment.Run) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(run)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
