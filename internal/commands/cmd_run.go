package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/sunpark333/topicwala/internal/bot"
	"github.com/sunpark333/topicwala/internal/integration/telegram"
	"github.com/sunpark333/topicwala/internal/telemetry"
)

type RunCmd struct {
	flags *Flags

	token       string
	metricsAddr string
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{flags: flags}
}

// Register adds the run command to the application
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Start the bot",
		UsageText: "topicwala run [--token TOKEN] [--metrics-addr ADDR]",
		Description: `Long polls Telegram for updates. Posts in the source chat are copied into
forum topics of the destination chat, picked by the post's "Topic:" line.
Operators configure the relay and start replays with bot commands; send /help
to the bot for the list.

Stops on SIGINT or SIGTERM. Running replays stop early and report what they
delivered.`,
		Flags: []cli.Flag{
			tokenFlag(&cmd.token),
			&cli.StringFlag{
				Name:        "metrics-addr",
				Usage:       "address to serve Prometheus metrics on (disabled when empty)",
				Sources:     cli.EnvVars("TOPICWALA_METRICS_ADDR"),
				Destination: &cmd.metricsAddr,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	cfg.Telegram.Token = cmd.token

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	api, err := telegram.Connect(cfg.Telegram.Token, cfg.Telegram.Debug, cmd.flags.Logger("telegram"))
	if err != nil {
		return err
	}

	var (
		client = telegram.NewClient(api)
		engine = cmd.flags.Engine(client)
		b      = bot.New(cmd.flags.Store, client, engine, cmd.flags.Authorizer(), cmd.flags.Logger("bot"))
		poller = telegram.NewPoller(api, cfg.Telegram.PollTimeout, cmd.flags.Logger("poller"))
	)

	g, ctx := errgroup.WithContext(ctx)

	if cmd.metricsAddr != "" {
		g.Go(func() error {
			if err := telemetry.Serve(ctx, cmd.metricsAddr, cmd.flags.Logger("metrics")); err != nil {
				return fmt.Errorf("serve metrics: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		// the metrics server stops with the poller
		defer cancel()
		err := poller.Run(ctx, b.Handle)
		b.Wait()
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	return g.Wait()
}
