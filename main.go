package main

import (
	"os"

	"github.com/Chative-core-poc-v1/sheetsql/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
