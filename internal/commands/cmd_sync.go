package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/sunpark333/topicwala/internal/core/route"
	"github.com/sunpark333/topicwala/internal/integration/telegram"
	"github.com/sunpark333/topicwala/internal/printer"
	"github.com/sunpark333/topicwala/internal/relay"
)

type SyncCmd struct {
	flags *Flags

	token   string
	start   int
	end     int
	staging int64
}

// NewSyncCmd creates a new sync command
func NewSyncCmd(flags *Flags) *SyncCmd {
	return &SyncCmd{flags: flags}
}

// Register adds the sync command to the application
func (cmd *SyncCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "sync",
		Usage:     "Replay a range of source messages into topic threads",
		UsageText: "topicwala sync --start ID --end ID --staging CHAT_ID",
		Description: `Copies every message id from --start to --end (inclusive, either order) from
the stored source chat into the destination, one at a time. Each message is
first forwarded into the staging chat to read its caption, and that copy is
deleted again. Messages without a "Topic:" line go to the fallback topic.

Ids must be between 1 and 2147483647 and one run covers at most 10000
messages. Failed messages are reported and skipped.`,
		Flags: []cli.Flag{
			tokenFlag(&cmd.token),
			&cli.IntFlag{
				Name:        "start",
				Usage:       "first message id",
				Required:    true,
				Destination: &cmd.start,
			},
			&cli.IntFlag{
				Name:        "end",
				Usage:       "last message id",
				Required:    true,
				Destination: &cmd.end,
			},
			&cli.Int64Flag{
				Name:        "staging",
				Usage:       "chat id the bot may forward into and delete from, usually your private chat with it",
				Required:    true,
				Destination: &cmd.staging,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SyncCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	bounds := relay.Job{Start: cmd.start, End: cmd.end}
	if err := bounds.Validate(); err != nil {
		return fmt.Errorf("--start and --end: %w", err)
	}

	rt, err := cmd.flags.Store.Route(ctx)
	if err != nil {
		return fmt.Errorf("load route: %w", err)
	}
	if !rt.Complete() {
		return fmt.Errorf("%w: run 'topicwala route set' first", route.ErrIncomplete)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	api, err := telegram.Connect(cmd.token, cmd.flags.Config.Telegram.Debug, cmd.flags.Logger("telegram"))
	if err != nil {
		return err
	}
	engine := cmd.flags.Engine(telegram.NewClient(api))

	job := relay.Job{
		Source:      rt.Source,
		Destination: rt.Destination,
		Staging:     cmd.staging,
		Start:       cmd.start,
		End:         cmd.end,
	}.Normalized()

	p.Infof("Syncing %d-%d from %d to %d", job.Start, job.End, job.Source, job.Destination)

	sum, runErr := engine.Sync(ctx, job)
	printSummary(p, c, sum)
	return runErr
}

func printSummary(p *printer.Printer, c *cli.Command, sum relay.Summary) {
	failed := sum.Failed()
	if len(failed) > 0 {
		w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "MESSAGE\tSTAGE\tERROR")
		for _, r := range failed {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%v\n", r.MessageID, r.Stage, r.Err)
		}
		_ = w.Flush()
	}

	took := sum.Duration.Round(time.Millisecond)
	if sum.Delivered == sum.Requested() {
		p.Successf("Delivered %d of %d messages in %s", sum.Delivered, sum.Requested(), took)
		return
	}
	p.Warnf("Delivered %d of %d messages in %s", sum.Delivered, sum.Requested(), took)
}
