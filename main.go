package main

import (
	"os"

	"github.com/KuratZero/c-png-to-pnm/src/cli"
	_ "github.com/KuratZero/c-png-to-pnm/src/inspect/cmd"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
