// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ems/internal/services"
)

func outputFlags(prettyDefault bool) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: prettyDefault,
		},
	}
}

func employeeFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "first",
			Aliases:  []string{"f"},
			Usage:    "First name",
			Required: required,
		},
		&cli.StringFlag{
			Name:     "last",
			Aliases:  []string{"l"},
			Usage:    "Last name",
			Required: required,
		},
		&cli.StringFlag{
			Name:     "email",
			Aliases:  []string{"e"},
			Usage:    "Email address",
			Required: required,
		},
	}
}

func idArg() []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: "id", UsageText: "employee ID"}}
}

// setupCommand handles database and configuration setup
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the database",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
			{
				Name:   "config",
				Usage:  "Write an example config.toml",
				Action: r.SetupConfig,
			},
		},
	}
}

// serveCommand starts the REST API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the employee REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides server.port)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the employees endpoint in a browser",
			},
		},
		Action: r.Serve,
	}
}

// employeesCommand handles employee CRUD, lookups and bulk transfer
func employeesCommand(r *Runner) *cli.Command {
	kinds := make([]string, 0, len(services.QueryKinds))
	for _, k := range services.QueryKinds {
		kinds = append(kinds, string(k))
	}

	return &cli.Command{
		Name:    "employees",
		Aliases: []string{"emp"},
		Usage:   "Employee operations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all employees",
				Flags:  outputFlags(false),
				Action: r.EmployeesList,
			},
			{
				Name:      "get",
				Usage:     "Show an employee",
				Arguments: idArg(),
				Flags:     outputFlags(false),
				Action:    r.EmployeesGet,
			},
			{
				Name:   "create",
				Usage:  "Create an employee",
				Flags:  append(employeeFlags(true), outputFlags(false)...),
				Action: r.EmployeesCreate,
			},
			{
				Name:      "update",
				Usage:     "Update an employee's fields",
				Arguments: idArg(),
				Flags:     append(employeeFlags(false), outputFlags(false)...),
				Action:    r.EmployeesUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete an employee",
				Arguments: idArg(),
				Action:    r.EmployeesDelete,
			},
			{
				Name:  "find",
				Usage: "Find an employee by first and last name",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "first",
						Aliases:  []string{"f"},
						Usage:    "First name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "last",
						Aliases:  []string{"l"},
						Usage:    "Last name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Lookup to run: " + strings.Join(kinds, ", ") + " or all",
						Value: string(services.QueryDerived),
					},
				}, outputFlags(false)...),
				Action: r.EmployeesFind,
			},
			{
				Name:      "import",
				Usage:     "Create employees from a CSV or JSON file",
				Arguments: []cli.Argument{&cli.StringArg{Name: "file", UsageText: "CSV or JSON file"}},
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "csv or json (default: from the file extension)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent workers (overrides export.workers)",
					},
					&cli.FloatFlag{
						Name:  "rate-limit",
						Usage: "Saves per second (overrides export.rate_limit)",
					},
				}, outputFlags(false)...),
				Action: r.EmployeesImport,
			},
			{
				Name:  "export",
				Usage: "Write all employees to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "csv, json or text (overrides export.format)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Directory for a timestamped file (overrides export.output_dir)",
					},
					&cli.BoolFlag{
						Name:  "sftp",
						Usage: "Upload the file to [export.sftp]",
					},
				},
				Action: r.EmployeesExport,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive employee management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive employee browser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI is running",
				Value: "./tmp/ems-tui.log",
			},
		},
		Action: r.TUI,
	}
}
