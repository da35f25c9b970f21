// Package repl is an interactive stepper over the COMBO solver: each
// command pops one worklist item and prints the resulting lattice/
// partition delta, for teaching or debugging the two-worklist interleaving
// of spec.md §4.3.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"combo/internal/combo"
	"combo/internal/ir"
	"combo/internal/irtext"
)

const PROMPT = ">> "

// Start loads the graph in path and runs the stepper loop against in/out.
// Commands:
//
//	step (or blank line) - pop and apply one worklist item
//	run                  - drain both worklists to the fixed point
//	print                - print the graph's current textual form
//	quit                 - rewrite the graph and exit
func Start(in io.Reader, out io.Writer, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("repl: failed to read %s: %w", path, err)
	}

	result, err := irtext.BuildFirst(path, string(source))
	if err != nil {
		return fmt.Errorf("repl: failed to parse %s: %w", path, err)
	}

	ctx := combo.NewContext(result.Graph, combo.DefaultConfig(), nil)
	defer ctx.Close()
	ctx.Seed()

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			return nil
		}

		switch scanner.Text() {
		case "", "step":
			printStep(out, ctx.Step())
		case "run":
			for {
				r := ctx.Step()
				printStep(out, r)
				if r.Done {
					break
				}
			}
		case "print":
			fmt.Fprint(out, ir.Print(result.Graph))
		case "quit", "exit":
			changed := ctx.Rewrite()
			fmt.Fprintf(out, "rewrite changed graph: %v\n", changed)
			fmt.Fprint(out, ir.Print(result.Graph))
			return nil
		default:
			fmt.Fprintln(out, "commands: step, run, print, quit")
		}
	}
}

func printStep(out io.Writer, r combo.StepResult) {
	switch {
	case r.Done:
		fmt.Fprintln(out, "both worklists empty")
	case r.Queue == "C":
		fmt.Fprintf(out, "C: %%%d  %s -> %s\n", r.Node.ID, r.TypeBefore, r.TypeAfter)
	case r.Queue == "W":
		fmt.Fprintf(out, "W: P%d  %d members -> %d (split into %d new partitions)\n",
			r.PartitionID, r.MembersBefore, r.MembersAfter, r.SplitInto)
	}
}
