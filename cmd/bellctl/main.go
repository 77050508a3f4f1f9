package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newCLI(os.Stdin, os.Stdout, os.Stderr).execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
