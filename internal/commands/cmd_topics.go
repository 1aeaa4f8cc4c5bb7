package commands

import (
	"context"
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/sunpark333/topicwala/internal/core/topic"
	"github.com/sunpark333/topicwala/internal/printer"
)

type TopicsCmd struct {
	flags *Flags

	destination int64
	all         bool
}

// NewTopicsCmd creates a new topics command
func NewTopicsCmd(flags *Flags) *TopicsCmd {
	return &TopicsCmd{flags: flags}
}

// Register adds the topics command to the application
func (cmd *TopicsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "topics",
		Usage:       "List topic threads",
		UsageText:   "topicwala topics [--destination CHAT_ID | --all]",
		Description: "Prints the topic directory of the stored destination, a given chat, or every chat.",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:        "destination",
				Aliases:     []string{"d"},
				Usage:       "destination chat (defaults to the stored route)",
				Destination: &cmd.destination,
			},
			&cli.BoolFlag{
				Name:        "all",
				Aliases:     []string{"a"},
				Usage:       "list every destination",
				Destination: &cmd.all,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *TopicsCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	var destinations []int64
	switch {
	case cmd.all:
		all, err := cmd.flags.Store.Destinations(ctx)
		if err != nil {
			return fmt.Errorf("list destinations: %w", err)
		}
		destinations = all
	case cmd.destination != 0:
		destinations = []int64{cmd.destination}
	default:
		rt, err := cmd.flags.Store.Route(ctx)
		if err != nil {
			return fmt.Errorf("load route: %w", err)
		}
		if rt.Destination == 0 {
			return fmt.Errorf("no destination set: pass --destination or run 'topicwala route set'")
		}
		destinations = []int64{rt.Destination}
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DESTINATION\tTOPIC\tTHREAD")

	count := 0
	for _, dest := range destinations {
		threads, err := cmd.flags.Store.Topics(ctx, dest)
		if err != nil {
			return fmt.Errorf("load topics of %d: %w", dest, err)
		}

		labels := make([]topic.Label, 0, len(threads))
		for l := range threads {
			labels = append(labels, l)
		}
		slices.Sort(labels)

		for _, l := range labels {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%d\n", dest, l, threads[l])
			count++
		}
	}

	if count == 0 {
		p.Infof("No topic threads found")
		return nil
	}
	return w.Flush()
}
