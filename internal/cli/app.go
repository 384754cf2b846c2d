package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/calvinalkan/progress-table/internal/config"
	"github.com/calvinalkan/progress-table/internal/editor"
	"github.com/calvinalkan/progress-table/internal/fs"
	"github.com/calvinalkan/progress-table/internal/notify"
	"github.com/calvinalkan/progress-table/internal/store"
)

// app carries what every command needs: resolved config, process streams
// and the logger.
type app struct {
	cfg    config.Config
	env    map[string]string
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
}

// withSession runs fn against an editor session. One-shot commands open a
// session per invocation; the shell hands out its long-lived one.
type withSession func(ctx context.Context, o *IO, fn func(s *editor.Session) error) error

func (a *app) newStore() *store.Store {
	return store.New(fs.NewReal(), store.Options{CacheDir: a.cfg.CacheDirAbs, Env: a.env})
}

func (a *app) startSession(ctx context.Context, dialog editor.Dialog, pub notify.Publisher) (*editor.Session, error) {
	return editor.Start(ctx, editor.Options{
		Store:     a.newStore(),
		Dialog:    dialog,
		Publisher: pub,
		Logger:    a.logger,
		LockCache: true,
	})
}

// oneShot starts a session for a single command and closes it afterwards,
// which waits for the cache write of the last commit.
func (a *app) oneShot(ctx context.Context, o *IO, fn func(s *editor.Session) error) error {
	s, err := a.startSession(ctx, &ioDialog{o: o}, nil)
	if err != nil {
		return err
	}

	err = fn(s)

	return errors.Join(err, s.Close())
}

// commands returns fresh command instances bound to sessions. Fresh
// instances matter for the shell: a FlagSet keeps values between parses.
func (a *app) commands(session withSession) []*Command {
	return []*Command{
		ShowCmd(session),
		AddRowCmd(session),
		AddColumnCmd(session),
		RemoveColumnCmd(session),
		RenameColumnCmd(session),
		SetCmd(session),
		ShiftCmd(session),
		RemoveRowCmd(session),
		ToggleHiddenCmd(session),
		ResetCmd(session),
		OpenCmd(session, a.cfg.EffectiveCwd),
		SaveCmd(session, a.cfg.EffectiveCwd),
		PrintConfigCmd(&a.cfg, a.env),
		ShellCmd(a),
	}
}
