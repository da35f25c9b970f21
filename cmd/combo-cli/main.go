// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"combo/internal/combo"
	"combo/internal/diagnostics"
	"combo/internal/ir"
	"combo/internal/irtext"
)

func main() {
	dump := flag.Bool("dump", false, "print a plain-text partition/lattice table after running the pass")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: combo-cli [-dump] <file.ir>")
		os.Exit(1)
	}
	path := args[0]

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read file: %s", err)
		os.Exit(1)
	}

	result, err := irtext.BuildFirst(path, string(source))
	if err != nil {
		fmt.Print(diagnostics.Format(string(source), diagnostics.FromParseError(err)))
		os.Exit(1)
	}

	before := ir.Print(result.Graph)

	info, changed, err := combo.Inspect(result.Graph, combo.DefaultConfig(), nil)
	if err != nil {
		fmt.Print(diagnostics.Format(string(source), diagnostics.Diagnostic{
			Severity: diagnostics.SeverityError,
			Source:   "combo",
			Message:  err.Error(),
		}))
		os.Exit(1)
	}

	for _, d := range diagnostics.ScanUnoptCF(result.Graph) {
		fmt.Print(diagnostics.Format(string(source), d))
	}

	fmt.Println("--- before ---")
	fmt.Print(before)
	fmt.Println("--- after ---")
	fmt.Print(ir.Print(result.Graph))

	if *dump {
		printPartitionTable(result.Graph, info)
	}

	if changed {
		color.Green("✅ %s rewritten by combo", path)
	} else {
		color.Green("✅ %s already at fixed point", path)
	}
}

// printPartitionTable is the -dump flag's Graphviz-less plain-text
// partition/lattice table: every surviving node, its final congruence
// class, and its lattice type.
func printPartitionTable(g *ir.Graph, info map[*ir.Node]combo.PartitionInfo) {
	fmt.Println("--- partitions ---")
	for _, blk := range g.Blocks {
		attr := blk.Attr.(*ir.BlockAttr)
		fmt.Printf("block bb%d:\n", blk.ID)
		for _, phi := range attr.Phis {
			printPartitionRow(phi, info)
		}
		for _, n := range attr.Members {
			printPartitionRow(n, info)
		}
	}
}

func printPartitionRow(n *ir.Node, info map[*ir.Node]combo.PartitionInfo) {
	pi, ok := info[n]
	if !ok {
		fmt.Printf("  %%%d %-8s %-4s  (no partition: created by rewrite)\n", n.ID, n.Op, n.Mode)
		return
	}
	fmt.Printf("  %%%d %-8s %-4s  P%-4d %s\n", n.ID, n.Op, n.Mode, pi.PartitionID, pi.Type)
}
