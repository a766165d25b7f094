package main

import (
	"os"

	"github.com/Makepad-fr/forcelist/internal/cli"
)

func main() {
	// Hand the args to the CLI; it picks the exit code.
	os.Exit(cli.Execute(os.Args[1:]))
}
