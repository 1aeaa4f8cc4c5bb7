package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/sunpark333/topicwala/internal/core/rules"
	"github.com/sunpark333/topicwala/internal/printer"
)

type RulesCmd struct {
	flags *Flags
}

// NewRulesCmd creates a new rules command
func NewRulesCmd(flags *Flags) *RulesCmd {
	return &RulesCmd{flags: flags}
}

// Register adds the rules command to the application
func (cmd *RulesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rules",
		Usage:     "Manage caption rewrite rules",
		UsageText: "topicwala rules [command]",
		Description: `Rewrite rules replace literal text in the captions of replayed messages.
Rules apply in the order they were added, each one to the output of the last.`,
		Action: cmd.runList,
		Commands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Add or change a rule",
				UsageText: "topicwala rules set <old> <new text...>",
				Action:    cmd.runSet,
			},
			{
				Name:      "rm",
				Usage:     "Remove a rule",
				UsageText: "topicwala rules rm <old>",
				Action:    cmd.runRemove,
			},
		},
	})

	return app
}

func (cmd *RulesCmd) runList(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	set, err := cmd.flags.Store.Rules(ctx)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	if len(set) == 0 {
		p.Infof("No rewrite rules")
		return nil
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tOLD\tNEW")
	for i, r := range set {
		_, _ = fmt.Fprintf(w, "%d\t%q\t%q\n", i+1, r.Old, r.New)
	}
	return w.Flush()
}

func (cmd *RulesCmd) runSet(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	args := c.Args().Slice()
	if len(args) < 2 {
		return fmt.Errorf("usage: topicwala rules set <old> <new text...>")
	}
	if args[0] == "" {
		return fmt.Errorf("old text must not be empty")
	}

	from, to := args[0], strings.Join(args[1:], " ")
	if err := cmd.flags.Store.PutRule(ctx, from, to); err != nil {
		return fmt.Errorf("save rule: %w", err)
	}

	p.Successf("%s → %s", from, to)
	return nil
}

func (cmd *RulesCmd) runRemove(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if c.Args().Len() != 1 {
		return fmt.Errorf("usage: topicwala rules rm <old>")
	}
	old := c.Args().First()

	err := cmd.flags.Store.DeleteRule(ctx, old)
	if errors.Is(err, rules.ErrNotFound) {
		return fmt.Errorf("no rule for %q", old)
	}
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}

	p.Successf("Removed the rule for %q", old)
	return nil
}
