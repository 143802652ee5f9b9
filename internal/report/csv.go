package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/ZanMander/Forensic-linguistics/internal/analysis"
)

// WriteCSV writes one "RSID,Word Count" row per RSID, largest first.
func WriteCSV(w io.Writer, res *analysis.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"RSID", "Word Count"}); err != nil {
		return err
	}
	for _, row := range WordShares(res.RSID) {
		if err := cw.Write([]string{row.RSID, strconv.Itoa(row.WordCount)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
