// Package bootstrap builds the lazyplaylist command line: global flags,
// configuration loading and the subcommands around the interactive menu.
package bootstrap

import (
	urfavecli "github.com/urfave/cli/v3"

	"github.com/chmouel/lazyplaylist/internal/validate"
)

// globalFlags returns all global flags for the application.
// Note: --version is provided automatically by urfave/cli via Command.Version
func globalFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:    "work-dir",
			Aliases: []string{"d"},
			Usage:   "Directory holding the playlists (default: current directory)",
		},
		&urfavecli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&urfavecli.StringFlag{
			Name:    "theme",
			Aliases: []string{"t"},
			Usage:   "Override the colour theme",
		},
		&urfavecli.StringFlag{
			Name:  "config-file",
			Usage: "Path to configuration file",
		},
		&urfavecli.StringSliceFlag{
			Name:    "config",
			Aliases: []string{"C"},
			Usage:   "Override config values (repeatable): --config=lp.key=value",
		},
	}
}

func validateFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringSliceFlag{
			Name:    "source",
			Aliases: []string{"s"},
			Usage:   "Source playlist to read (repeatable, default: every playlist but the primary)",
		},
		&urfavecli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Playlist to write the working channels to (default: the primary file)",
		},
		&urfavecli.StringSliceFlag{
			Name:    "group",
			Aliases: []string{"g"},
			Usage:   "Keep only channels of this group-title (repeatable)",
		},
		&urfavecli.StringSliceFlag{
			Name:  "lang",
			Usage: "Keep only channels of this language, also matched as (xx) in the name (repeatable)",
		},
		&urfavecli.StringSliceFlag{
			Name:  "country",
			Usage: "Keep only channels of this country, also matched as [XX] in the name (repeatable)",
		},
		&urfavecli.StringSliceFlag{
			Name:    "remote",
			Usage:   "Playlist URL to download and read after the local sources (repeatable)",
			Sources: urfavecli.EnvVars("M3U_SOURCES"),
		},
		&urfavecli.StringFlag{
			Name:  "remote-list",
			Usage: "CSV file whose first column lists playlist URLs to download",
		},
		&urfavecli.StringFlag{
			Name:  "csv-dir",
			Usage: "Directory to write " + validate.ValidCSVName + " and " + validate.RejectedCSVName + " to",
		},
		&urfavecli.BoolFlag{
			Name:  "dedupe",
			Usage: "Drop repeated channels before probing",
		},
		&urfavecli.BoolFlag{
			Name:  "skip-probe",
			Usage: "Keep every channel without checking its stream",
		},
	}
}
