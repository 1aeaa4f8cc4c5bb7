package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/sunpark333/topicwala/internal/commands/doctor"
	"github.com/sunpark333/topicwala/internal/integration/telegram"
	"github.com/sunpark333/topicwala/internal/printer"
)

type DoctorCmd struct {
	flags  *Flags
	format string
	token  string
}

func NewDoctorCmd(flags *Flags) *DoctorCmd {
	return &DoctorCmd{flags: flags}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "doctor",
		Usage:     "Run health checks on your topicwala setup",
		UsageText: "topicwala doctor [options]",
		Description: `Runs diagnostic checks on configuration and stored state. With a bot token it
also checks that the bot can see the source chat and manage topics in the
destination chat.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.StringFlag{
				Name:        "token",
				Usage:       "Telegram bot token (Telegram checks are skipped without one)",
				Sources:     cli.EnvVars("TOPICWALA_BOT_TOKEN", "BOT_TOKEN"),
				Destination: &cmd.token,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	checks := []doctor.Check{
		doctor.NewConfigCheck(cmd.flags.Config),
		doctor.NewStoreCheck(cmd.flags.Store),
	}

	if cmd.token != "" {
		check, err := cmd.telegramCheck(ctx)
		if err != nil {
			return err
		}
		checks = append(checks, check)
	}

	results := doctor.RunAll(ctx, checks)

	if cmd.format == "json" {
		return cmd.outputJSON(c, results)
	}

	return cmd.outputText(ctx, results)
}

func (cmd *DoctorCmd) telegramCheck(ctx context.Context) (doctor.Check, error) {
	rt, err := cmd.flags.Store.Route(ctx)
	if err != nil {
		return nil, fmt.Errorf("load route: %w", err)
	}

	api, err := telegram.Connect(cmd.token, false, cmd.flags.Logger("telegram"))
	if err != nil {
		return nil, err
	}

	return doctor.NewTelegramCheck(telegram.NewClient(api), api.Self.ID, rt.Source, rt.Destination), nil
}

func (cmd *DoctorCmd) outputJSON(c *cli.Command, results []doctor.Result) error {
	passed, warned, failed := doctor.Summary(results)

	out := struct {
		Healthy bool            `json:"healthy"`
		Summary summaryJSON     `json:"summary"`
		Checks  []doctor.Result `json:"checks"`
	}{
		Healthy: failed == 0,
		Summary: summaryJSON{Passed: passed, Warned: warned, Failed: failed},
		Checks:  results,
	}

	enc := json.NewEncoder(c.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

type summaryJSON struct {
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

func (cmd *DoctorCmd) outputText(ctx context.Context, results []doctor.Result) error {
	p := printer.Ctx(ctx)

	for _, result := range results {
		p.Section(result.Name)

		for _, item := range result.Items {
			switch item.Status {
			case doctor.StatusPass:
				p.CheckItem(item.Label, item.Detail)
			case doctor.StatusWarn:
				p.WarnItem(item.Label, item.Detail)
			case doctor.StatusFail:
				p.FailItem(item.Label, item.Detail)
			}
		}

		p.Printf("")
	}

	passed, warned, failed := doctor.Summary(results)
	p.Printf("Summary: %d passed, %d warnings, %d failed", passed, warned, failed)

	if failed > 0 {
		return cli.Exit("", 1)
	}

	return nil
}
