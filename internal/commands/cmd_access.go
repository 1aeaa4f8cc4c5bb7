package commands

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/sunpark333/topicwala/internal/core/access"
	"github.com/sunpark333/topicwala/internal/printer"
)

type AccessCmd struct {
	flags *Flags

	chat int64
	user int64
}

// NewAccessCmd creates a new access command
func NewAccessCmd(flags *Flags) *AccessCmd {
	return &AccessCmd{flags: flags}
}

// Register adds the access command to the application
func (cmd *AccessCmd) Register(app *cli.Command) *cli.Command {
	memberFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.Int64Flag{
				Name:        "chat",
				Usage:       "chat id of the allow list",
				Required:    true,
				Destination: &cmd.chat,
			},
			&cli.Int64Flag{
				Name:        "user",
				Usage:       "user id",
				Required:    true,
				Destination: &cmd.user,
			},
		}
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:      "access",
		Usage:     "Manage who may operate the bot",
		UsageText: "topicwala access [command]",
		Description: `Users are authorized by a super admin entry in the config file, an unexpired
time-boxed grant, or membership in a chat's allow list (for commands sent in
that chat and for posts in the source chat).`,
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List grants and super admins",
				UsageText: "topicwala access ls [--chat CHAT_ID]",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:        "chat",
						Usage:       "also list the allow list of this chat",
						Destination: &cmd.chat,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:      "grant",
				Usage:     "Grant a user access for a number of days",
				UsageText: "topicwala access grant <user_id> <days>",
				Action:    cmd.runGrant,
			},
			{
				Name:      "allow",
				Usage:     "Add a user to a chat's allow list",
				UsageText: "topicwala access allow --chat CHAT_ID --user USER_ID",
				Flags:     memberFlags(),
				Action:    cmd.runAllow,
			},
			{
				Name:      "revoke",
				Usage:     "Remove a user from a chat's allow list",
				UsageText: "topicwala access revoke --chat CHAT_ID --user USER_ID",
				Flags:     memberFlags(),
				Action:    cmd.runRevoke,
			},
		},
	})

	return app
}

func (cmd *AccessCmd) runList(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)
	now := time.Now()

	for _, id := range cmd.flags.Config.Access.SuperAdmins {
		p.Printf("%s %d (super admin)", printer.Dot, id)
	}

	grants, err := cmd.flags.Store.Grants(ctx)
	if err != nil {
		return fmt.Errorf("load grants: %w", err)
	}
	slices.SortFunc(grants, func(a, b access.Grant) int {
		return a.ExpiresAt.Compare(b.ExpiresAt)
	})

	if len(grants) > 0 {
		w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "USER\tEXPIRES\tSTATUS")
		for _, g := range grants {
			status := p.StatusOK()
			if !g.ActiveAt(now) {
				status = p.StatusFailed("expired")
			}
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", g.UserID, g.ExpiresAt.Format(time.RFC3339), status)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	} else {
		p.Infof("No grants")
	}

	if cmd.chat != 0 {
		members, err := cmd.flags.Store.GroupMembers(ctx, cmd.chat)
		if err != nil {
			return fmt.Errorf("load members: %w", err)
		}
		p.Section(fmt.Sprintf("Allow list of %d", cmd.chat))
		if len(members) == 0 {
			p.Infof("empty")
		}
		for _, id := range members {
			p.Printf("%s %d", printer.Dot, id)
		}
	}
	return nil
}

func (cmd *AccessCmd) runGrant(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if c.Args().Len() != 2 {
		return fmt.Errorf("usage: topicwala access grant <user_id> <days>")
	}
	userID, err := strconv.ParseInt(c.Args().Get(0), 10, 64)
	if err != nil {
		return fmt.Errorf("user_id must be an integer: %w", err)
	}
	days, err := strconv.Atoi(c.Args().Get(1))
	if err != nil || days < 1 {
		return fmt.Errorf("days must be a positive integer")
	}

	grant := access.NewGrant(userID, days, time.Now())
	if err := cmd.flags.Store.PutGrant(ctx, grant); err != nil {
		return fmt.Errorf("save grant: %w", err)
	}

	p.Successf("User %d has access until %s", userID, grant.ExpiresAt.Format(time.RFC3339))
	return nil
}

func (cmd *AccessCmd) runAllow(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.Store.AddGroupMember(ctx, cmd.chat, cmd.user); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	printer.Ctx(ctx).Successf("User %d allowed in %d", cmd.user, cmd.chat)
	return nil
}

func (cmd *AccessCmd) runRevoke(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.Store.RemoveGroupMember(ctx, cmd.chat, cmd.user); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	printer.Ctx(ctx).Successf("User %d removed from %d", cmd.user, cmd.chat)
	return nil
}
