package cbs

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// CSVName is the artifact name of the cast listing.
const CSVName = "nameSeasonBio.csv"

// WriteCSV writes the cast listing with its original column titles.
func WriteCSV(w io.Writer, cast []survivor.CastMember) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Name", "Season Number", "Link to Bio"}); err != nil {
		return fmt.Errorf("write cast header: %w", err)
	}
	for _, m := range cast {
		if err := cw.Write([]string{m.Name, strconv.Itoa(m.SeasonNumber), m.BioURL}); err != nil {
			return fmt.Errorf("write cast row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush cast csv: %w", err)
	}
	return nil
}
