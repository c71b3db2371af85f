package main

import (
	"os"

	"github.com/serveropenmc/openmc/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
