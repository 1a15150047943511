package main

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"github.com/spf13/cobra"

	"yamui/schema"
	"yamui/yamltree"
)

var flagBenchIterations int

var benchCmd = &cobra.Command{
	Use:   "bench <schema.yaml>",
	Short: "Measure parse and compile cost of a document",
	Long: "Parse and compile the document repeatedly and report timing and\n" +
		"process memory, a quick sizing check before targeting a small device.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		iters := flagBenchIterations
		if iters < 1 {
			iters = 1
		}
		parseStart := time.Now()
		var root *yamltree.Node
		for i := 0; i < iters; i++ {
			root, err = yamltree.Parse(data)
			if err != nil {
				return err
			}
		}
		parseDur := time.Since(parseStart)

		compileStart := time.Now()
		var s *schema.Schema
		for i := 0; i < iters; i++ {
			s, err = schema.Compile(root)
			if err != nil {
				return err
			}
		}
		compileDur := time.Since(compileStart)

		fmt.Printf("%s: %d bytes, %d styles, %d templates, %d components\n",
			args[0], len(data), len(s.Styles()), len(s.Templates()), len(s.Components()))
		fmt.Printf("parse:   %s total, %s per pass (%d passes)\n",
			parseDur, parseDur/time.Duration(iters), iters)
		fmt.Printf("compile: %s total, %s per pass (%d passes)\n",
			compileDur, compileDur/time.Duration(iters), iters)

		proc, err := process.NewProcess(int32(os.Getpid()))
		if err != nil {
			return err
		}
		if mem, err := proc.MemoryInfo(); err == nil {
			fmt.Printf("rss:     %.2f MiB\n", float64(mem.RSS)/(1024*1024))
		}
		if cpu, err := proc.Times(); err == nil {
			fmt.Printf("cpu:     %.3fs user, %.3fs system\n", cpu.User, cpu.System)
		}
		return nil
	},
}

func init() {
	benchCmd.Flags().IntVarP(&flagBenchIterations, "iterations", "n", 1000,
		"number of parse/compile passes")
}
