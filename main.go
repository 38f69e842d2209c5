package main

import (
	"fmt"
	"os"

	"github.com/Techlead-ANKAN/ems/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "ems: %v\n", err)
		os.Exit(1)
	}
}
