package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/topstack/topstack/internal/models"
	"github.com/topstack/topstack/internal/view"
)

var (
	flagListDone bool
	flagListIDs  bool
	flagRmDone   bool
)

var addCmd = &cobra.Command{
	Use:   "add <title...>",
	Short: "Put a new todo on top of the stack",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List active todos, top first",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var doneCmd = &cobra.Command{
	Use:   "done [ref]",
	Short: "Mark a todo done (the top one by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDone,
}

var undoneCmd = &cobra.Command{
	Use:   "undone <ref>",
	Short: "Move a done todo back to the active list",
	Long: `Move a done todo back to the active list.

Positions count in the done list, most recently finished first.`,
	Args: cobra.ExactArgs(1),
	RunE: runUndone,
}

var rmCmd = &cobra.Command{
	Use:     "rm <ref>",
	Aliases: []string{"delete"},
	Short:   "Delete a todo",
	Args:    cobra.ExactArgs(1),
	RunE:    runRm,
}

var editCmd = &cobra.Command{
	Use:   "edit <ref> <title...>",
	Short: "Rename a todo",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runEdit,
}

var mvCmd = &cobra.Command{
	Use:   "mv <ref> <position>",
	Short: "Move an active todo to a 1-based position",
	Args:  cobra.ExactArgs(2),
	RunE:  runMv,
}

func init() {
	listCmd.Flags().BoolVar(&flagListDone, "done", false, "list done todos, most recent first")
	listCmd.Flags().BoolVar(&flagListIDs, "ids", false, "show todo ids")
	rmCmd.Flags().BoolVar(&flagRmDone, "done", false, "count positions in the done list")
}

// Reference resolution errors.
var (
	errNoMatch   = errors.New("no todo matches")
	errAmbiguous = errors.New("ambiguous todo reference")
)

// resolveRef finds the task a user reference names: a 1-based position in
// list, a full id, or a unique id prefix anywhere in the stack.
func resolveRef(ref string, list, all []models.Task) (models.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Task{}, fmt.Errorf("%w %q", errNoMatch, ref)
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(list) {
			return models.Task{}, fmt.Errorf("%w position %d (have %d)", errNoMatch, n, len(list))
		}
		return list[n-1], nil
	}

	var matches []models.Task
	for _, t := range all {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.Task{}, fmt.Errorf("%w %q", errNoMatch, ref)
	case 1:
		return matches[0], nil
	default:
		return models.Task{}, fmt.Errorf("%w %q matches %d todos", errAmbiguous, ref, len(matches))
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return fmt.Errorf("title is required")
	}

	// An untouched placeholder takes the title instead of staying under it.
	frame := a.engine.Frame()
	if frame.Stack.Placeholder && frame.Stack.HasTop {
		err = a.engine.Rename(frame.Stack.Top.ID, title)
	} else {
		_, err = a.engine.Add(title, false)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", styleSuccess.Render("✓ Added"), title)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	stack := a.engine.Frame().Stack
	out := cmd.OutOrStdout()
	if flagListDone {
		if len(stack.Done) == 0 {
			fmt.Fprintln(out, "No finished todos yet.")
			return nil
		}
		printTasks(out, stack.Done, true, a.engine.Now)
		return nil
	}

	printTasks(out, stack.Active, stack.Placeholder, nil)
	return nil
}

func printTasks(out io.Writer, tasks []models.Task, emptyState bool, now func() time.Time) {
	width := len(strconv.Itoa(len(tasks)))
	for i, t := range tasks {
		box := "[ ]"
		if t.Done {
			box = badgeDone.Render("[✓]")
		}

		title := t.Title
		if view.IsBlank(t) {
			title = styleHint.Render(view.DisplayTitle(t, emptyState))
		}

		line := fmt.Sprintf("  %*d. %s %s", width, i+1, box, title)
		if now != nil {
			line += "  " + styleLabel.Render(view.FormatDoneAt(t.CompletedAt(), now()))
		}
		if flagListIDs {
			line += "  " + styleHint.Render(t.ID)
		}
		fmt.Fprintln(out, line)
	}
}

func runDone(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	stack := a.engine.Frame().Stack
	target := stack.Top
	if len(args) == 1 {
		target, err = resolveRef(args[0], stack.Active, a.engine.Tasks())
		if err != nil {
			return err
		}
	} else if !stack.HasTop {
		return fmt.Errorf("nothing to do")
	}

	if err := a.engine.SetDone(target.ID, true); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", styleSuccess.Render("✓ Done"), view.DisplayTitle(target, false))
	return nil
}

func runUndone(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	target, err := resolveRef(args[0], a.engine.Frame().Stack.Done, a.engine.Tasks())
	if err != nil {
		return err
	}
	if err := a.engine.SetDone(target.ID, false); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reopened %s\n", view.DisplayTitle(target, false))
	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	stack := a.engine.Frame().Stack
	list := stack.Active
	if flagRmDone {
		list = stack.Done
	}
	target, err := resolveRef(args[0], list, a.engine.Tasks())
	if err != nil {
		return err
	}
	if err := a.engine.Delete(target.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", view.DisplayTitle(target, false))
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	target, err := resolveRef(args[0], a.engine.Frame().Stack.Active, a.engine.Tasks())
	if err != nil {
		return err
	}
	title := strings.Join(args[1:], " ")
	if err := a.engine.Rename(target.ID, title); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed to %s\n", strings.TrimSpace(title))
	return nil
}

func runMv(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	active := a.engine.Frame().Stack.Active
	target, err := resolveRef(args[0], active, a.engine.Tasks())
	if err != nil {
		return err
	}
	if target.Done {
		return fmt.Errorf("only active todos can be moved")
	}
	to, err := strconv.Atoi(args[1])
	if err != nil || to < 1 || to > len(active) {
		return fmt.Errorf("invalid position %q (1-%d)", args[1], len(active))
	}

	from := -1
	for i, t := range active {
		if t.ID == target.ID {
			from = i
		}
	}
	if err := a.engine.Reorder(from, to-1); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to position %d\n", view.DisplayTitle(target, false), to)
	return nil
}
