package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/progress-table/internal/config"
	"github.com/calvinalkan/progress-table/internal/fs"
	"github.com/calvinalkan/progress-table/internal/store"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(cfg *config.Config, env map[string]string) *Command {
	flags := flag.NewFlagSet("print-config", flag.ContinueOnError)
	flags.Bool("json", false, "Print the merged settings as a config file")

	return &Command{
		Flags: flags,
		Usage: "print-config [flags]",
		Short: "Show resolved configuration",
		Long: "Display the effective configuration, the cache file and which config files were loaded. " +
			"With --json the merged settings are printed in config file form.",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			if asJSON, _ := flags.GetBool("json"); asJSON {
				out, err := config.Format(*cfg)
				if err != nil {
					return err
				}

				io.Println(out)

				return nil
			}

			return execPrintConfig(io, cfg, env)
		},
	}
}

func execPrintConfig(io *IO, cfg *config.Config, env map[string]string) error {
	io.Println("effective_cwd=" + cfg.EffectiveCwd)

	cachePath, err := store.New(fs.NewReal(), store.Options{CacheDir: cfg.CacheDirAbs, Env: env}).CachePath()
	if err != nil {
		io.Warn(err.Error())
	} else {
		io.Println("cache_file=" + cachePath)
	}

	io.Println("log_level=" + cfg.LogLevel)
	io.Println("log_format=" + cfg.LogFormat)

	if cfg.Listen != "" {
		io.Println("listen=" + cfg.Listen)
	}

	io.Println("")
	io.Println("# sources")

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		io.Println("(defaults only)")
	} else {
		if cfg.Sources.Global != "" {
			io.Println("global_config=" + cfg.Sources.Global)
		}

		if cfg.Sources.Project != "" {
			io.Println("project_config=" + cfg.Sources.Project)
		}
	}

	return nil
}
