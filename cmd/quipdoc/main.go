package main

import (
	"os"

	"github.com/hashicorp-forge/quipdoc/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
