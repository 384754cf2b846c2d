package cli

import (
	"context"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/progress-table/internal/dataset"
	"github.com/calvinalkan/progress-table/internal/editor"
	"github.com/calvinalkan/progress-table/internal/store"
)

// ShowCmd returns the show command.
func ShowCmd(session withSession) *Command {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.Bool("json", false, "Print the normalized JSON that would be saved")
	fs.BoolP("all", "a", false, "Include hidden rows")

	return &Command{
		Flags: fs,
		Usage: "show [flags]",
		Short: "Print the table",
		Long: "Print the table. Hidden rows are left out unless --all is given, " +
			"in which case they are marked. Values that do not parse show as NaN.",
		Exec: func(ctx context.Context, io *IO, _ []string) error {
			return session(ctx, io, func(s *editor.Session) error {
				return execShow(io, fs, s.Dataset())
			})
		},
	}
}

func execShow(io *IO, fs *flag.FlagSet, ds dataset.Dataset) error {
	asJSON, _ := fs.GetBool("json")
	if asJSON {
		data, err := store.Encode(ds)
		if err != nil {
			return err
		}

		io.Printf("%s", data)

		return nil
	}

	all, _ := fs.GetBool("all")

	io.Printf("%s", formatTable(ds, all))

	return nil
}

// formatTable renders ds as aligned columns. Row numbers are 1-based so
// they can be passed back to row commands.
func formatTable(ds dataset.Dataset, all bool) string {
	var buf strings.Builder

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	header := append([]string{"#", "date"}, ds.Headers...)
	if all {
		header = append(header, "")
	}

	_, _ = tw.Write([]byte(strings.Join(header, "\t") + "\n"))

	hidden := 0

	for i, row := range ds.Rows {
		if row.Hidden {
			hidden++

			if !all {
				continue
			}
		}

		cells := make([]string, 0, len(header))
		cells = append(cells, strconv.Itoa(i+1), row.Date.String())

		for _, h := range ds.Headers {
			cells = append(cells, formatValue(row.Values, h))
		}

		if all {
			marker := ""
			if row.Hidden {
				marker = "hidden"
			}

			cells = append(cells, marker)
		}

		_, _ = tw.Write([]byte(strings.Join(cells, "\t") + "\n"))
	}

	_ = tw.Flush()

	if len(ds.Rows) == 0 {
		buf.WriteString("(no rows)\n")
	}

	if hidden > 0 && !all {
		buf.WriteString("(" + strconv.Itoa(hidden) + " hidden, use --all to show)\n")
	}

	return buf.String()
}

func formatValue(values map[string]float64, header string) string {
	v, ok := values[header]

	switch {
	case !ok:
		return "-"
	case math.IsNaN(v):
		return "NaN"
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}
