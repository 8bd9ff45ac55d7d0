// Command checkctl manages stored uptime checks directly in the record store.
package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/cli"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], &cli.BasicUi{Reader: os.Stdin, Writer: os.Stdout, ErrorWriter: os.Stderr}))
}

func run(args []string, ui cli.Ui) int {
	c := cli.NewCLI("checkctl", version)
	c.Args = args
	c.Commands = commands(ui, openStore)

	code, err := c.Run()
	if err != nil {
		ui.Error(fmt.Sprintf("Error executing CLI: %s", err))
		return 1
	}
	return code
}

func commands(ui cli.Ui, open storeOpener) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"create": func() (cli.Command, error) { return newCreate(ui, open), nil },
		"list":   func() (cli.Command, error) { return newList(ui, open), nil },
		"show":   func() (cli.Command, error) { return newShow(ui, open), nil },
		"delete": func() (cli.Command, error) { return newDelete(ui, open), nil },
	}
}
