// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"combo/repl"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: combo-repl <file.ir>")
		os.Exit(1)
	}

	if err := repl.Start(os.Stdin, os.Stdout, os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
