package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/emizp/IFCAtom/internal/dataset"
)

const noDataPlaceholder = "No data extracted."

// RenderTable writes the dataset as an aligned table with one header
// line. An empty dataset renders only the placeholder line.
func RenderTable(w io.Writer, ds *dataset.Dataset) error {
	if ds == nil || ds.Len() == 0 {
		_, err := fmt.Fprintln(w, noDataPlaceholder)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 8, 1, '\t', 0)
	fmt.Fprintln(tw, strings.Join(ds.Columns(), "\t"))
	for i := 0; i < ds.Len(); i++ {
		fmt.Fprintln(tw, strings.Join(ds.Row(i), "\t"))
	}
	return tw.Flush()
}
