// Command riscvsim is a thin CLI over the sim package: assemble RISC-V
// source, run it headless for a fixed number of cycles, or drive it
// interactively through the debugger TUI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"riscvsim/debugger"
	"riscvsim/sim"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "riscvsim",
		Short: "A cycle-level RV32I simulator with single-cycle, multi-cycle, and pipelined backends",
	}

	var outPath string
	assembleCmd := &cobra.Command{
		Use:   "assemble [file.s]",
		Short: "Assemble a RISC-V source file to a raw little-endian binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			a := sim.New(1, sim.ModelSingleCycle, sim.DefaultConfig())
			defer a.Close()
			program, err := a.Assemble(string(src))
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = args[0] + ".bin"
			}
			return os.WriteFile(outPath, program, 0o644)
		},
	}
	assembleCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output binary path (default: <input>.bin)")

	var modelName string
	var memSize uint32
	var maxCycles int

	runCmd := &cobra.Command{
		Use:   "run [file.s]",
		Short: "Assemble and run a program headlessly, printing the final register file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			model, err := parseModel(modelName)
			if err != nil {
				return err
			}

			s := sim.New(memSize, model, sim.DefaultConfig())
			defer s.Close()
			if err := s.LoadProgramText(string(src)); err != nil {
				return fmt.Errorf("assemble: %w", err)
			}
			s.Reset(model, 0)

			for i := 0; i < maxCycles; i++ {
				if err := s.Step(); err != nil {
					return fmt.Errorf("step %d: %w", i, err)
				}
			}

			regs := s.GetAllRegisters()
			for i, v := range regs {
				fmt.Printf("x%-2d = 0x%08x\n", i, v)
			}
			return nil
		},
	}
	runCmd.Flags().StringVar(&modelName, "model", "single", "Datapath backend: single, multi, pipelined, general")
	runCmd.Flags().Uint32Var(&memSize, "mem", 4096, "Instruction/data memory size in bytes (power of two)")
	runCmd.Flags().IntVar(&maxCycles, "cycles", 1000, "Maximum number of cycles to execute")

	debugCmd := &cobra.Command{
		Use:   "debug [file.s]",
		Short: "Assemble a program and step through it interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			model, err := parseModel(modelName)
			if err != nil {
				return err
			}

			s := sim.New(memSize, model, sim.DefaultConfig())
			defer s.Close()
			program, err := s.Assemble(string(src))
			if err != nil {
				return fmt.Errorf("assemble: %w", err)
			}
			return debugger.Run(s, model, program)
		},
	}
	debugCmd.Flags().StringVar(&modelName, "model", "single", "Datapath backend: single, multi, pipelined, general")
	debugCmd.Flags().Uint32Var(&memSize, "mem", 4096, "Instruction/data memory size in bytes (power of two)")

	rootCmd.AddCommand(assembleCmd, runCmd, debugCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseModel(name string) (sim.Model, error) {
	switch name {
	case "single", "":
		return sim.ModelSingleCycle, nil
	case "multi":
		return sim.ModelMultiCycle, nil
	case "pipelined":
		return sim.ModelPipelined, nil
	case "general":
		return sim.ModelGeneral, nil
	default:
		return 0, fmt.Errorf("unknown model %q: want single, multi, pipelined, or general", name)
	}
}
