package main

import (
	"os"

	"github.com/baaaaaaaka/jdeps/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
