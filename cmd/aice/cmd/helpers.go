package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/salesaice/aice-go/transport"
)

// sessionError translates an API failure into a user-facing error,
// distinguishing an expired session from other failures.
func sessionError(a *app, err error) error {
	if errors.Is(err, transport.ErrUnauthorized) && a.session.Expired() {
		return fmt.Errorf("your session has expired; run 'aice login' again")
	}
	return err
}

// table writes rows in aligned columns to stdout.
func table(header []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, col := range header {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, col)
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, cell)
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}
