package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"expensetracker/internal/cli"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cli.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		// No subcommand starts the interactive menu.
		if err := flag.CommandLine.Parse([]string{"menu"}); err != nil {
			os.Exit(int(subcommands.ExitUsageError))
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}
