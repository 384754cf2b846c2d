package cli

import (
	"context"
	"errors"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/progress-table/internal/editor"
)

var errPathRequired = errors.New("a file path is required")

// OpenCmd returns the open command.
func OpenCmd(session withSession, cwd string) *Command {
	return &Command{
		Flags: flag.NewFlagSet("open", flag.ContinueOnError),
		Usage: "open [path]",
		Short: "Load a table file",
		Long: "Load a table file and make it the current table. The file is validated " +
			"first; on failure the current table is kept. In the shell the path is " +
			"prompted for when omitted.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			path, err := pathArg(args, cwd)
			if err != nil {
				return err
			}

			return session(ctx, io, func(s *editor.Session) error {
				s.OpenFile(ctx, path)

				return nil
			})
		},
	}
}

// SaveCmd returns the save command.
func SaveCmd(session withSession, cwd string) *Command {
	return &Command{
		Flags: flag.NewFlagSet("save", flag.ContinueOnError),
		Usage: "save [path]",
		Short: "Write the table to a file",
		Long: "Write the table as indented JSON. Values that are not finite numbers " +
			"or are negative are saved as 0. The directory must exist. In the shell " +
			"the path is prompted for when omitted.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			path, err := pathArg(args, cwd)
			if err != nil {
				return err
			}

			return session(ctx, io, func(s *editor.Session) error {
				s.SaveFile(ctx, path)

				return nil
			})
		},
	}
}

// pathArg returns the optional path argument resolved against cwd, or ""
// when it was omitted.
func pathArg(args []string, cwd string) (string, error) {
	switch len(args) {
	case 0:
		return "", nil
	case 1:
		return resolvePath(args[0], cwd), nil
	default:
		return "", errArgCount
	}
}

func resolvePath(path, cwd string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(cwd, path)
}
