package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/topstack/topstack/internal/config"
	"github.com/topstack/topstack/internal/engine"
	"github.com/topstack/topstack/internal/snapshot"
)

var (
	flagExportOutput string
	flagExportCopy   bool
	flagImportYes    bool
	flagClearYes     bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the stack as JSON",
	Long: `Print the stack as indented JSON, the same format import accepts.

Use -o to write a file instead and --copy to put it on the clipboard.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Replace the stack with an exported JSON file",
	Long: `Replace the whole stack with the todos in an exported JSON file ("-" reads
stdin). Comments and trailing commas are tolerated. The file is validated
first; nothing changes unless every item is valid and the replacement is
confirmed.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var validateCmd = &cobra.Command{
	Use:   "validate <file|->",
	Short: "Check an exported JSON file against the stack schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every todo",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOutput, "output", "o", "", "write to file instead of stdout")
	exportCmd.Flags().BoolVar(&flagExportCopy, "copy", false, "copy to the clipboard")
	importCmd.Flags().BoolVarP(&flagImportYes, "yes", "y", false, "replace without asking")
	clearCmd.Flags().BoolVarP(&flagClearYes, "yes", "y", false, "clear without asking")
}

func readInput(cmd *cobra.Command, name string) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := a.engine.Export()
	if err != nil {
		return err
	}

	if flagExportCopy {
		if err := clipboard.WriteAll(string(data)); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), styleSuccess.Render("✓ Copied to clipboard"))
	}

	switch {
	case flagExportOutput != "":
		if err := config.WriteFileAtomic(flagExportOutput, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", flagExportOutput)
	case !flagExportCopy:
		_, err = cmd.OutOrStdout().Write(data)
	}
	return err
}

func runImport(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.engine.ProposeImport(text)
	if err != nil {
		return fmt.Errorf("import rejected: %w", err)
	}
	return commitPending(cmd, a, p, flagImportYes,
		fmt.Sprintf("Imported %d todos", len(p.Tasks())))
}

func runClear(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	return commitPending(cmd, a, a.engine.ProposeClear(), flagClearYes, "Stack cleared")
}

// commitPending applies p once the user agrees, and discards it otherwise.
func commitPending(cmd *cobra.Command, a *app, p *engine.Pending, yes bool, done string) error {
	ok, err := confirm(cmd, p.Prompt(), yes)
	if err != nil || !ok {
		p.Discard()
		if err == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		}
		return err
	}
	if err := a.engine.Commit(p); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("✓ "+done))
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	problems := snapshot.Validate(text)
	for _, p := range problems {
		fmt.Fprintf(out, "%s %s\n", styleError.Render("✗"), p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d problem(s) found", len(problems))
	}

	tasks, err := snapshot.Parse(text)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s valid (%d todos)\n", styleSuccess.Render("✓"), len(tasks))
	return nil
}
