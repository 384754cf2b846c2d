package cli

import (
	"context"
	"fmt"
	"math"
	"strconv"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/progress-table/internal/dataset"
	"github.com/calvinalkan/progress-table/internal/editor"
	"github.com/calvinalkan/progress-table/internal/table"
)

// AddRowCmd returns the add-row command.
func AddRowCmd(session withSession) *Command {
	return &Command{
		Flags: flag.NewFlagSet("add-row", flag.ContinueOnError),
		Usage: "add-row",
		Short: "Append a row",
		Long: "Append a row three months after the last one, copying its values. " +
			"The new row starts hidden. On an empty table the first row is " +
			dataset.SeedDate.String() + " with every value set to 1.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if err := wantArgs(args, 0); err != nil {
				return err
			}

			return session(ctx, io, func(s *editor.Session) error {
				if err := s.Table().AddRow(); err != nil {
					return err
				}

				ds := s.Dataset()
				last := ds.Rows[len(ds.Rows)-1]
				io.Println("Added row", len(ds.Rows), last.Date)

				return nil
			})
		},
	}
}

// AddColumnCmd returns the add-column command.
func AddColumnCmd(session withSession) *Command {
	return &Command{
		Flags: flag.NewFlagSet("add-column", flag.ContinueOnError),
		Usage: "add-column",
		Short: "Append a column",
		Long:  `Append a column named "Lab <n>" with every value set to 1.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if err := wantArgs(args, 0); err != nil {
				return err
			}

			return session(ctx, io, func(s *editor.Session) error {
				name, err := s.Table().AddColumn()
				if err != nil {
					return err
				}

				io.Println("Added column", name)

				return nil
			})
		},
	}
}

// RemoveColumnCmd returns the remove-column command.
func RemoveColumnCmd(session withSession) *Command {
	return &Command{
		Flags: flag.NewFlagSet("remove-column", flag.ContinueOnError),
		Usage: "remove-column <name>",
		Short: "Remove a column",
		Long:  "Remove a column and its values. Removing a column that does not exist does nothing.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if err := wantArgs(args, 1); err != nil {
				return err
			}

			return session(ctx, io, func(s *editor.Session) error {
				existed := s.Dataset().HasHeader(args[0])

				if err := s.Table().RemoveColumn(args[0]); err != nil {
					return err
				}

				if existed {
					io.Println("Removed column", args[0])
				} else {
					io.Warn(fmt.Sprintf("no column %q, nothing removed", args[0]))
				}

				return nil
			})
		},
	}
}

// RenameColumnCmd returns the rename-column command.
func RenameColumnCmd(session withSession) *Command {
	return &Command{
		Flags: flag.NewFlagSet("rename-column", flag.ContinueOnError),
		Usage: "rename-column <old> <new>",
		Short: "Rename a column",
		Long:  "Rename a column in place. The new name must not be empty or already in use.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if err := wantArgs(args, 2); err != nil {
				return err
			}

			return session(ctx, io, func(s *editor.Session) error {
				if err := s.Table().RenameColumn(args[0], args[1]); err != nil {
					return err
				}

				io.Println("Renamed column", args[0], "to", args[1])

				return nil
			})
		},
	}
}

// SetCmd returns the set command.
func SetCmd(session withSession) *Command {
	return &Command{
		Flags: flag.NewFlagSet("set", flag.ContinueOnError),
		Usage: "set <row> <column> <value>",
		Short: "Set a cell value",
		Long: "Set a cell value. A value that is not a number is kept as NaN " +
			"while editing and saved as 0, as are negative values. Put -- before " +
			"the arguments to pass a negative value.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if err := wantArgs(args, 3); err != nil {
				return err
			}

			return session(ctx, io, func(s *editor.Session) error {
				row, err := rowIndex(s.Dataset(), args[0])
				if err != nil {
					return err
				}

				if err := s.Table().SetCellValue(row, args[1], args[2]); err != nil {
					return err
				}

				if v := table.ParseValue(args[2]); math.IsNaN(v) {
					io.Warn(fmt.Sprintf("%q is not a number and will be saved as 0", args[2]))
				}

				io.Println("Set row", args[0], args[1], "=", formatValue(s.Dataset().Rows[row].Values, args[1]))

				return nil
			})
		},
	}
}

// ShiftCmd returns the shift command.
func ShiftCmd(session withSession) *Command {
	fs := flag.NewFlagSet("shift", flag.ContinueOnError)
	fs.BoolP("back", "b", false, "Move one month earlier instead of later")

	return &Command{
		Flags: fs,
		Usage: "shift <row> [flags]",
		Short: "Move a row's date by one month",
		Long: "Move a row's date one calendar month later (or earlier with --back). " +
			"The day is clamped to the end of shorter months. A row cannot be moved " +
			"onto or past its neighbor.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if err := wantArgs(args, 1); err != nil {
				return err
			}

			direction := 1
			if back, _ := fs.GetBool("back"); back {
				direction = -1
			}

			return session(ctx, io, func(s *editor.Session) error {
				row, err := rowIndex(s.Dataset(), args[0])
				if err != nil {
					return err
				}

				if err := s.Table().ShiftRowDate(row, direction); err != nil {
					return err
				}

				io.Println("Moved row", args[0], "to", s.Dataset().Rows[row].Date)

				return nil
			})
		},
	}
}

// RemoveRowCmd returns the remove-row command.
func RemoveRowCmd(session withSession) *Command {
	return &Command{
		Flags: flag.NewFlagSet("remove-row", flag.ContinueOnError),
		Usage: "remove-row <row>",
		Short: "Remove a row",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if err := wantArgs(args, 1); err != nil {
				return err
			}

			return session(ctx, io, func(s *editor.Session) error {
				row, err := rowIndex(s.Dataset(), args[0])
				if err != nil {
					return err
				}

				date := s.Dataset().Rows[row].Date

				if err := s.Table().RemoveRow(row); err != nil {
					return err
				}

				io.Println("Removed row", args[0], date)

				return nil
			})
		},
	}
}

// ToggleHiddenCmd returns the toggle-hidden command.
func ToggleHiddenCmd(session withSession) *Command {
	return &Command{
		Flags: flag.NewFlagSet("toggle-hidden", flag.ContinueOnError),
		Usage: "toggle-hidden <row>",
		Short: "Hide or unhide a row",
		Long:  "Flip a row's hidden flag. Hidden rows are still saved and published.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if err := wantArgs(args, 1); err != nil {
				return err
			}

			return session(ctx, io, func(s *editor.Session) error {
				row, err := rowIndex(s.Dataset(), args[0])
				if err != nil {
					return err
				}

				if err := s.Table().ToggleRowHidden(row); err != nil {
					return err
				}

				state := "visible"
				if s.Dataset().Rows[row].Hidden {
					state = "hidden"
				}

				io.Println("Row", args[0], "is now", state)

				return nil
			})
		},
	}
}

// ResetCmd returns the reset command.
func ResetCmd(session withSession) *Command {
	return &Command{
		Flags: flag.NewFlagSet("reset", flag.ContinueOnError),
		Usage: "reset",
		Short: "Replace the table with the default",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if err := wantArgs(args, 0); err != nil {
				return err
			}

			return session(ctx, io, func(s *editor.Session) error {
				s.Table().ResetToDefault()
				io.Println("Reset to default table")

				return nil
			})
		},
	}
}

func wantArgs(args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: want %d, got %d", errArgCount, n, len(args))
	}

	return nil
}

// rowIndex converts a 1-based row argument to an engine index.
func rowIndex(ds dataset.Dataset, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", errInvalidRow, arg)
	}

	if n > len(ds.Rows) {
		return 0, fmt.Errorf("%w: row %d, table has %d rows", dataset.ErrRowIndexOutOfRange, n, len(ds.Rows))
	}

	return n - 1, nil
}
