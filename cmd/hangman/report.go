package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/japaniel/hangman/pkg/dictionary"
	"github.com/japaniel/hangman/pkg/scenario"
)

// writeReport prints the most/least probable words side by side, the word
// right after the top list, then one line per scenario.
func writeReport(w io.Writer, ex dictionary.Extremes, results []scenario.Result) error {
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "MOST:\tLEAST:\n")
	for i := range ex.Most {
		fmt.Fprintf(bw, "%s\t%s\n", ex.Most[i].Word, ex.Least[i].Word)
	}
	if ex.Middle != nil {
		fmt.Fprintln(bw, ex.Middle.Word)
	}
	for _, r := range results {
		fmt.Fprintln(bw, r.Line())
	}
	return bw.Flush()
}
