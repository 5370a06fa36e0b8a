package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// StateHeader is the header of stateQuestionsDataFrame.csv.
var StateHeader = []string{
	"State Name", "Number of Contestants from State", "Percentage of Contestants by State",
	"Number of Jury Members By State", "Percentage of Jury Members by State", "Percentage of Jury Members Out of State Total",
	"Number of Finalists by State", "Percentages of Finalists by State", "Percentage of Finalists Out of State Total",
	"Number of Winners by State", "Percentage of Winners by State", "Percentage of Winners Out of State Total",
}

// AgeHeader is the header of ageQuestionDataFrame.csv.
var AgeHeader = []string{
	"Difference From Median Season Age", "Players From Age Group", "Percentage Players from Age Group",
	"Jury Members From Age Group", "Percentage of Jury Members From Age Group", "Percentage of Age Group that Make Jury",
	"Finalists From Age Group", "Percentage of Finalists From Age Group", "Percentage of Age Group that Become Finalists",
	"Winners From Age Group", "Percentage of Winners From Age Group", "Percentage of Age Group that Become Winners",
}

// WriteBreakdownCSV writes rows under header, one row per Breakdown.
func WriteBreakdownCSV(w io.Writer, header []string, rows []Breakdown) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, b := range rows {
		rec := []string{
			b.Key,
			strconv.Itoa(b.Players), pct(b.PlayerShare),
			strconv.Itoa(b.Jury), pct(b.JuryShare), pct(b.JuryRate),
			strconv.Itoa(b.Finalists), pct(b.FinalistShare), pct(b.FinalistRate),
			strconv.Itoa(b.Winners), pct(b.WinnerShare), pct(b.WinnerRate),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write %s: %w", b.Key, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
