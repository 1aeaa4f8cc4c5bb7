package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sunpark333/topicwala/internal/core/access"
	"github.com/sunpark333/topicwala/internal/core/chat"
	"github.com/sunpark333/topicwala/internal/core/rules"
	"github.com/sunpark333/topicwala/internal/core/topic"
	"github.com/sunpark333/topicwala/internal/relay"
)

// maxReportedFailures caps the failed ids listed in a replay report.
const maxReportedFailures = 5

func (b *Bot) registerCommands() {
	b.commands = make(map[string]command)
	add := func(name string, c command) {
		b.commands[name] = c
		b.order = append(b.order, name)
	}

	add("start", command{usage: "/start", help: "introduction", run: b.start})
	add("help", command{usage: "/help", help: "list commands", run: b.help})
	add("adduser", command{
		usage: "/adduser <user_id> <days>", help: "grant a user access for a number of days",
		level: levelSuperAdmin, privateOnly: true, run: b.addUser,
	})
	add("auth", command{
		usage: "/auth <user_id>", help: "allow a user in this chat",
		level: levelSuperAdmin, run: b.authUser,
	})
	add("revokeauth", command{
		usage: "/revokeauth <user_id>", help: "remove a user from this chat",
		level: levelSuperAdmin, run: b.revokeUser,
	})
	add("whoauth", command{
		usage: "/whoauth", help: "list users allowed in this chat",
		level: levelAuthorized, run: b.whoAuth,
	})
	add("setsource", command{
		usage: "/setsource <chat_id>", help: "set the chat to relay from",
		level: levelAuthorized, privateOnly: true, run: b.setSource,
	})
	add("setdestination", command{
		usage: "/setdestination <chat_id>", help: "set the forum chat to relay into",
		level: levelAuthorized, privateOnly: true, run: b.setDestination,
	})
	add("replace", command{
		usage: "/replace <old> <new text>", help: "rewrite a word in replayed captions",
		level: levelAuthorized, privateOnly: true, run: b.replace,
	})
	add("unreplace", command{
		usage: "/unreplace <old>", help: "remove a rewrite rule",
		level: levelAuthorized, privateOnly: true, run: b.unreplace,
	})
	add("rules", command{
		usage: "/rules", help: "list rewrite rules in the order they apply",
		level: levelAuthorized, privateOnly: true, run: b.listRules,
	})
	add("status", command{
		usage: "/status", help: "show the source and destination",
		level: levelAuthorized, privateOnly: true, run: b.status,
	})
	add("topics", command{
		usage: "/topics", help: "list topic threads of the destination",
		level: levelAuthorized, privateOnly: true, run: b.topics,
	})
	add("sync", command{
		usage: "/sync <start_id> <end_id>", help: "replay a range of source messages",
		level: levelAuthorized, privateOnly: true, run: b.sync,
	})
}

func (b *Bot) start(ctx context.Context, msg chat.Message) (string, error) {
	return "Hi! I copy posts from a source chat into forum topics named by their \"Topic:\" line.\n" +
		"Once you have access, use /setsource, /setdestination, /replace, /status and /sync. Send /help for details.", nil
}

func (b *Bot) help(ctx context.Context, msg chat.Message) (string, error) {
	var sb strings.Builder
	sb.WriteString("Commands:\n")
	for _, name := range b.order {
		c := b.commands[name]
		fmt.Fprintf(&sb, "%s - %s\n", c.usage, c.help)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func (b *Bot) addUser(ctx context.Context, msg chat.Message) (string, error) {
	if len(msg.Args) != 2 {
		return "", errArgCount
	}
	userID, err := parseID(msg.Args[0], "user_id")
	if err != nil {
		return "", err
	}
	days, err := strconv.Atoi(msg.Args[1])
	if err != nil || days < 1 {
		return "", badUsage("days must be a positive integer.")
	}

	grant := access.NewGrant(userID, days, b.now())
	if err := b.store.PutGrant(ctx, grant); err != nil {
		return "", fmt.Errorf("save grant: %w", err)
	}

	return fmt.Sprintf("User %d has access for %d days. Expires: %s",
		userID, days, grant.ExpiresAt.Format(time.RFC3339)), nil
}

func (b *Bot) authUser(ctx context.Context, msg chat.Message) (string, error) {
	userID, err := singleID(msg, "user_id")
	if err != nil {
		return "", err
	}
	if err := b.store.AddGroupMember(ctx, msg.ChatID, userID); err != nil {
		return "", fmt.Errorf("add member: %w", err)
	}
	return fmt.Sprintf("User %d is now allowed in this chat.", userID), nil
}

func (b *Bot) revokeUser(ctx context.Context, msg chat.Message) (string, error) {
	userID, err := singleID(msg, "user_id")
	if err != nil {
		return "", err
	}
	if err := b.store.RemoveGroupMember(ctx, msg.ChatID, userID); err != nil {
		return "", fmt.Errorf("remove member: %w", err)
	}
	return fmt.Sprintf("User %d is no longer allowed in this chat.", userID), nil
}

func (b *Bot) whoAuth(ctx context.Context, msg chat.Message) (string, error) {
	members, err := b.store.GroupMembers(ctx, msg.ChatID)
	if err != nil {
		return "", fmt.Errorf("load members: %w", err)
	}
	if len(members) == 0 {
		return "No users are allowed in this chat.", nil
	}

	var sb strings.Builder
	sb.WriteString("Allowed users:")
	for _, id := range members {
		fmt.Fprintf(&sb, "\n- %d", id)
	}
	return sb.String(), nil
}

func (b *Bot) setSource(ctx context.Context, msg chat.Message) (string, error) {
	chatID, err := singleID(msg, "chat_id")
	if err != nil {
		return "", err
	}
	if err := b.store.SetSource(ctx, chatID); err != nil {
		return "", fmt.Errorf("save source: %w", err)
	}
	return fmt.Sprintf("Source set: %d", chatID), nil
}

func (b *Bot) setDestination(ctx context.Context, msg chat.Message) (string, error) {
	chatID, err := singleID(msg, "chat_id")
	if err != nil {
		return "", err
	}
	if err := b.store.SetDestination(ctx, chatID); err != nil {
		return "", fmt.Errorf("save destination: %w", err)
	}
	return fmt.Sprintf("Destination set: %d", chatID), nil
}

func (b *Bot) replace(ctx context.Context, msg chat.Message) (string, error) {
	if len(msg.Args) < 2 {
		return "", errArgCount
	}
	from, to := msg.Args[0], strings.Join(msg.Args[1:], " ")
	if err := b.store.PutRule(ctx, from, to); err != nil {
		return "", fmt.Errorf("save rule: %w", err)
	}
	return fmt.Sprintf("%s → %s", from, to), nil
}

func (b *Bot) unreplace(ctx context.Context, msg chat.Message) (string, error) {
	if len(msg.Args) != 1 {
		return "", errArgCount
	}
	err := b.store.DeleteRule(ctx, msg.Args[0])
	switch {
	case errors.Is(err, rules.ErrNotFound):
		return fmt.Sprintf("There is no rule for %q.", msg.Args[0]), nil
	case err != nil:
		return "", fmt.Errorf("delete rule: %w", err)
	}
	return fmt.Sprintf("Removed the rule for %q.", msg.Args[0]), nil
}

func (b *Bot) listRules(ctx context.Context, msg chat.Message) (string, error) {
	set, err := b.store.Rules(ctx)
	if err != nil {
		return "", fmt.Errorf("load rules: %w", err)
	}
	if len(set) == 0 {
		return "No rewrite rules. Add one with /replace.", nil
	}

	var sb strings.Builder
	sb.WriteString("Rewrite rules:")
	for i, r := range set {
		fmt.Fprintf(&sb, "\n%d. %s → %s", i+1, r.Old, r.New)
	}
	return sb.String(), nil
}

func (b *Bot) status(ctx context.Context, msg chat.Message) (string, error) {
	rt, err := b.store.Route(ctx)
	if err != nil {
		return "", fmt.Errorf("load route: %w", err)
	}
	set, err := b.store.Rules(ctx)
	if err != nil {
		return "", fmt.Errorf("load rules: %w", err)
	}

	topics := 0
	if rt.Destination != 0 {
		threads, err := b.store.Topics(ctx, rt.Destination)
		if err != nil {
			return "", fmt.Errorf("load topics: %w", err)
		}
		topics = len(threads)
	}

	return fmt.Sprintf("Source: %s\nDestination: %s\nTopics: %d\nRewrite rules: %d",
		chatOrUnset(rt.Source), chatOrUnset(rt.Destination), topics, len(set)), nil
}

func (b *Bot) topics(ctx context.Context, msg chat.Message) (string, error) {
	rt, err := b.store.Route(ctx)
	if err != nil {
		return "", fmt.Errorf("load route: %w", err)
	}
	if rt.Destination == 0 {
		return "Set a destination with /setdestination first.", nil
	}

	threads, err := b.store.Topics(ctx, rt.Destination)
	if err != nil {
		return "", fmt.Errorf("load topics: %w", err)
	}
	if len(threads) == 0 {
		return "No topic threads yet.", nil
	}

	labels := make([]topic.Label, 0, len(threads))
	for l := range threads {
		labels = append(labels, l)
	}
	slices.Sort(labels)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Topics in %d:", rt.Destination)
	for _, l := range labels {
		fmt.Fprintf(&sb, "\n- %s (thread %d)", l, threads[l])
	}
	return sb.String(), nil
}

func (b *Bot) sync(ctx context.Context, msg chat.Message) (string, error) {
	if len(msg.Args) != 2 {
		return "", errArgCount
	}

	rt, err := b.store.Route(ctx)
	if err != nil {
		return "", fmt.Errorf("load route: %w", err)
	}
	if !rt.Complete() {
		return "Set /setsource and /setdestination first.", nil
	}

	start, err := strconv.Atoi(msg.Args[0])
	if err != nil {
		return "", badUsage("start_id and end_id must be integers.")
	}
	end, err := strconv.Atoi(msg.Args[1])
	if err != nil {
		return "", badUsage("start_id and end_id must be integers.")
	}

	job := relay.Job{
		Source:      rt.Source,
		Destination: rt.Destination,
		Staging:     msg.ChatID,
		Start:       start,
		End:         end,
	}.Normalized()
	if err := job.Validate(); err != nil {
		return "", badUsage("Message ids must be between 1 and %d, and one /sync covers at most %d messages.",
			relay.MaxMessageID, relay.MaxRangeSize)
	}

	b.jobs.Add(1)
	go func() {
		defer b.jobs.Done()
		sum, err := b.engine.Sync(ctx, job)
		// the report still goes out when the job was cut short by shutdown
		b.reply(context.WithoutCancel(ctx), msg, syncReport(sum, err))
	}()

	return fmt.Sprintf("Syncing %d-%d from %d to %d.", job.Start, job.End, job.Source, job.Destination), nil
}

func syncReport(sum relay.Summary, err error) string {
	var sb strings.Builder
	if err != nil {
		fmt.Fprintf(&sb, "Stopped early: %v. ", err)
	} else {
		sb.WriteString("Done. ")
	}
	fmt.Fprintf(&sb, "Delivered %d of %d messages.", sum.Delivered, sum.Requested())

	failed := sum.Failed()
	for i, r := range failed {
		if i == maxReportedFailures {
			fmt.Fprintf(&sb, "\n...and %d more", len(failed)-i)
			break
		}
		fmt.Fprintf(&sb, "\n- %d failed while %s: %v", r.MessageID, r.Stage, r.Err)
	}
	return sb.String()
}

func singleID(msg chat.Message, name string) (int64, error) {
	if len(msg.Args) != 1 {
		return 0, errArgCount
	}
	return parseID(msg.Args[0], name)
}

func parseID(s, name string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, badUsage("%s must be an integer.", name)
	}
	return id, nil
}

func chatOrUnset(id int64) string {
	if id == 0 {
		return "not set"
	}
	return strconv.FormatInt(id, 10)
}
