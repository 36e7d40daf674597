package main

import (
	"fmt"

	"scriptrt/pkg/driver"
	"scriptrt/pkg/errors"

	"github.com/spf13/cobra"
)

// transpileCommand strips type annotations and emits plain JavaScript,
// mirroring the engine's role as a TypeScript-flavored front end over an
// ECMAScript runtime (see SPEC_FULL.md's front-end section).
func transpileCommand() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "transpile <file>",
		Short: "emit JavaScript for a source file with type syntax removed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if outFile != "" {
				if !driver.WriteJavaScriptFile(input, outFile) {
					return &exitErr{code: exitSyntax, msg: "scriptrt: transpile failed"}
				}
				return nil
			}

			jsCode, errs := driver.EmitJavaScriptFile(input)
			if len(errs) > 0 {
				errors.DisplayErrors(errs, "")
				return &exitErr{code: exitSyntax, msg: "scriptrt: transpile failed"}
			}
			fmt.Print(jsCode)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "write the emitted JavaScript to this file instead of stdout")
	return cmd
}

// moduleCommand runs a file through the module loader, resolving its
// import/export graph instead of treating it as a single top-level script.
func moduleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "module <file>",
		Short: "run a file as an ES module, resolving its import graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := driver.NewScriptrt()
			if !rt.RunModule(args[0]) {
				return &exitErr{code: exitException, msg: "scriptrt: module evaluation failed"}
			}
			return nil
		},
	}
}
