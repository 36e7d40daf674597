// Command scriptrt is a thin CLI around the engine. Per SPEC_FULL.md this
// binary is an out-of-scope external collaborator: the engine core never
// calls into it, and it never exits the process on its own behalf.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"scriptrt/pkg/driver"
	"scriptrt/pkg/errors"
	"scriptrt/pkg/parser"
	"scriptrt/pkg/vm"

	"github.com/spf13/cobra"
)

// Exit codes per SPEC_FULL.md §6: 0 on success, 1 on an uncaught ECMAScript
// exception, 2 on a parse/syntax error surfaced before evaluation.
const (
	exitOK        = 0
	exitException = 1
	exitSyntax    = 2
)

func main() {
	var (
		exprFlag       string
		showCacheStats bool
		showBytecode   bool
		showAST        bool
		strictTypes    bool
	)

	root := &cobra.Command{
		Use:           "scriptrt [script]",
		Short:         "scriptrt runs ECMAScript source text",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser.DumpASTEnabled = showAST

			if exprFlag != "" {
				return runSource(exprFlag, showCacheStats, showBytecode, strictTypes)
			}
			if len(args) == 1 {
				return runFile(args[0], showCacheStats, showBytecode, strictTypes)
			}
			runRepl(showCacheStats, showBytecode, strictTypes)
			return nil
		},
	}
	root.Flags().StringVarP(&exprFlag, "eval", "e", "", "run the given expression and exit")
	root.Flags().BoolVar(&showCacheStats, "cache-stats", false, "show inline cache statistics after execution")
	root.Flags().BoolVar(&showBytecode, "bytecode", false, "show compiled bytecode before execution")
	root.Flags().BoolVar(&showAST, "ast", false, "show the parsed AST before compilation")
	root.Flags().BoolVar(&strictTypes, "strict-types", false, "fail evaluation on static type errors instead of treating the checker as a non-blocking diagnostics pass (see SPEC_FULL.md)")

	root.AddCommand(transpileCommand())
	root.AddCommand(moduleCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitErr carries the exit code a RunE handler wants the process to use,
// distinguishing a parse/syntax failure from an uncaught runtime exception.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitCodeFor(err error) int {
	if ee, ok := err.(*exitErr); ok {
		return ee.code
	}
	return exitException
}

func errsToExit(sourceCode string, errs []errors.ScriptrtError) error {
	if len(errs) == 0 {
		return nil
	}
	errors.DisplayErrors(errs, sourceCode)
	code := exitException
	for _, e := range errs {
		if e.Kind() == "Syntax" {
			code = exitSyntax
			break
		}
	}
	return &exitErr{code: code, msg: "scriptrt: evaluation failed"}
}

func runSource(src string, showCacheStats, showBytecode, strictTypes bool) error {
	rt := driver.NewScriptrt()
	rt.SetIgnoreTypeErrors(!strictTypes)
	options := driver.RunOptions{ShowCacheStats: showCacheStats, ShowBytecode: showBytecode}
	value, errs := rt.RunCode(src, options)
	if err := errsToExit(src, errs); err != nil {
		return err
	}
	if value != vm.Undefined {
		fmt.Println(value.Inspect())
	}
	return nil
}

func runFile(filename string, showCacheStats, showBytecode, strictTypes bool) error {
	sourceBytes, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scriptrt: failed to read %q: %s\n", filename, err)
		return &exitErr{code: exitSyntax, msg: "scriptrt: could not read source file"}
	}
	return runSource(string(sourceBytes), showCacheStats, showBytecode, strictTypes)
}

func runRepl(showCacheStats, showBytecode, strictTypes bool) {
	reader := bufio.NewReader(os.Stdin)
	rt := driver.NewScriptrt()
	rt.SetIgnoreTypeErrors(!strictTypes)

	fmt.Println("scriptrt (Ctrl+D to exit)")
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Println("\ngoodbye")
				return
			}
			fmt.Fprintf(os.Stderr, "scriptrt: %s\n", err)
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		var value = vm.Undefined
		var evalErrs []errors.ScriptrtError
		if looksLikeModule(line) {
			value, evalErrs = rt.RunStringWithModules(line)
		} else {
			options := driver.RunOptions{ShowCacheStats: showCacheStats, ShowBytecode: showBytecode}
			value, evalErrs = rt.RunCode(line, options)
		}
		if len(evalErrs) > 0 {
			errors.DisplayErrors(evalErrs, line)
			continue
		}
		if value != vm.Undefined {
			fmt.Println(value.Inspect())
		}
	}
}

// looksLikeModule is a lightweight REPL heuristic to route input containing
// `import` statements through the module loader instead of plain script
// evaluation, avoiding a full parse just to make that routing decision.
func looksLikeModule(input string) bool {
	trimmed := strings.TrimSpace(input)
	return strings.HasPrefix(trimmed, "import ") || strings.Contains(trimmed, "\nimport ")
}
