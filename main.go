package main

import (
	"os"

	"github.com/marykravets/ks-email-parser/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
