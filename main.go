package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dtnitsch/cinii-translator/internal/db"
	"github.com/dtnitsch/cinii-translator/internal/detect"
	"github.com/dtnitsch/cinii-translator/internal/fetch"
	"github.com/dtnitsch/cinii-translator/internal/importris"
	"github.com/dtnitsch/cinii-translator/models"
	"github.com/dtnitsch/cinii-translator/pkg/help"
	"github.com/dtnitsch/cinii-translator/pkg/translator"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(c.App.Writer, "%s %s\n", c.App.Name, c.App.Version)
		fmt.Fprintf(c.App.Writer, "translator: %s (%s)\ntarget: %s\npriority: %d\n",
			translator.Info.Label, translator.Info.ID, translator.Info.Target, translator.Info.Priority)
	}

	app := &cli.App{
		Name:    "cinii",
		Usage:   "Import citations from CiNii Research pages",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML config file (host, user_agent, timeout, format, db_path)",
			},
			&cli.StringFlag{
				Name:  "host",
				Value: models.DefaultHost,
				Usage: "CiNii host whose /crid/ pages count as records",
			},
			&cli.StringFlag{
				Name:  "user-agent",
				Value: models.DefaultUserAgent,
				Usage: "User-Agent header for all requests",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: models.DefaultTimeout,
				Usage: "Per-request timeout",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "yaml",
				Usage:   "Output format: yaml or json",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Library database path; fetch and import save items when set",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log debug output",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "quickstart",
				Usage: "Print a YAML quick-start guide",
				Action: func(c *cli.Context) error {
					fmt.Fprint(c.App.Writer, help.ColdstartYAML)
					return nil
				},
			},
			{
				Name:      "detect",
				Usage:     "Classify a page as journalArticle, book, multiple or none",
				ArgsUsage: "<url>",
				Action:    detect.DetectAction,
			},
			{
				Name:      "search",
				Usage:     "List the results of a search page",
				ArgsUsage: "<url>",
				Action:    detect.SearchAction,
			},
			{
				Name:      "fetch",
				Usage:     "Import the record or the selected search results of a page",
				ArgsUsage: "<url>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "select",
						Usage: "Result positions to import, e.g. 1,3-5 (skips the interactive list)",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Import every result on a search page",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write items to this file instead of stdout",
					},
					&cli.StringFlag{
						Name:  "manifest",
						Usage: "Write a YAML run manifest to this file",
					},
				},
				Action: fetch.FetchAction,
			},
			{
				Name:      "import",
				Usage:     "Import a local RIS file",
				ArgsUsage: "<file.ris>",
				Action:    importris.ImportAction,
			},
			{
				Name:  "library",
				Usage: "Inspect the local item library",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List stored items, newest first",
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:  "limit",
								Value: 50,
								Usage: "Maximum number of items",
							},
						},
						Action: db.ListAction,
					},
					{
						Name:      "show",
						Usage:     "Print one stored item",
						ArgsUsage: "<id>",
						Action:    db.ShowAction,
					},
				},
			},
		},
		Compiled: time.Now(),
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
