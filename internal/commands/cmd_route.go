package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/sunpark333/topicwala/internal/printer"
)

type RouteCmd struct {
	flags *Flags

	source      int64
	destination int64
}

// NewRouteCmd creates a new route command
func NewRouteCmd(flags *Flags) *RouteCmd {
	return &RouteCmd{flags: flags}
}

// Register adds the route command to the application
func (cmd *RouteCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "route",
		Usage:     "Show or change the source and destination chats",
		UsageText: "topicwala route [command]",
		Action:    cmd.runShow,
		Commands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Set the source and/or destination chat",
				UsageText: "topicwala route set [--source CHAT_ID] [--destination CHAT_ID]",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:        "source",
						Usage:       "chat to relay from",
						Destination: &cmd.source,
					},
					&cli.Int64Flag{
						Name:        "destination",
						Usage:       "forum chat to relay into",
						Destination: &cmd.destination,
					},
				},
				Action: cmd.runSet,
			},
		},
	})

	return app
}

func (cmd *RouteCmd) runShow(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	rt, err := cmd.flags.Store.Route(ctx)
	if err != nil {
		return fmt.Errorf("load route: %w", err)
	}

	p.Printf("Source:      %s", chatOrUnset(rt.Source))
	p.Printf("Destination: %s", chatOrUnset(rt.Destination))
	if !rt.Complete() {
		p.Warnf("Relay is inactive until both chats are set")
	}
	return nil
}

func (cmd *RouteCmd) runSet(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if !c.IsSet("source") && !c.IsSet("destination") {
		return fmt.Errorf("nothing to set: pass --source and/or --destination")
	}

	if c.IsSet("source") {
		if err := cmd.flags.Store.SetSource(ctx, cmd.source); err != nil {
			return fmt.Errorf("save source: %w", err)
		}
		p.Successf("Source set: %d", cmd.source)
	}
	if c.IsSet("destination") {
		if err := cmd.flags.Store.SetDestination(ctx, cmd.destination); err != nil {
			return fmt.Errorf("save destination: %w", err)
		}
		p.Successf("Destination set: %d", cmd.destination)
	}
	return nil
}

func chatOrUnset(id int64) string {
	if id == 0 {
		return "not set"
	}
	return fmt.Sprint(id)
}
