package commands

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/sunpark333/topicwala/internal/core/config"
	"github.com/sunpark333/topicwala/internal/printer"
	"github.com/sunpark333/topicwala/internal/relay"
	"github.com/sunpark333/topicwala/internal/store/jsonfile"
)

type testApp struct {
	flags *Flags
	out   *bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg, err := config.Load("", t.TempDir())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Access.SuperAdmins = []int64{1}

	return &testApp{
		flags: &Flags{
			Config: cfg,
			Store:  jsonfile.New(filepath.Join(cfg.DataDir, "state.json")),
		},
		out: &bytes.Buffer{},
	}
}

// run executes args against a fresh command tree sharing the app's flags.
func (a *testApp) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a.out.Reset()

	app := &cli.Command{Name: "topicwala", Writer: a.out, ErrWriter: a.out}
	app = NewRouteCmd(a.flags).Register(app)
	app = NewTopicsCmd(a.flags).Register(app)
	app = NewRulesCmd(a.flags).Register(app)
	app = NewAccessCmd(a.flags).Register(app)
	app = NewConfigCmd(a.flags).Register(app)
	app = NewDoctorCmd(a.flags).Register(app)
	app = NewSyncCmd(a.flags).Register(app)

	ctx := printer.NewContext(context.Background(), printer.New(a.out))
	err := app.Run(ctx, append([]string{"topicwala"}, args...))
	return a.out.String(), err
}

func (a *testApp) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := a.run(t, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func TestRouteCmd(t *testing.T) {
	a := newTestApp(t)

	out := a.mustRun(t, "route")
	if !strings.Contains(out, "Source:      not set") || !strings.Contains(out, "Relay is inactive") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := a.run(t, "route", "set"); err == nil {
		t.Error("expected error when no flag is given")
	}

	a.mustRun(t, "route", "set", "--source=-100", "--destination=-200")

	rt, err := a.flags.Store.Route(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rt.Source != -100 || rt.Destination != -200 {
		t.Errorf("route = %+v", rt)
	}

	// setting one end keeps the other
	a.mustRun(t, "route", "set", "--destination=-300")
	rt, _ = a.flags.Store.Route(context.Background())
	if rt.Source != -100 || rt.Destination != -300 {
		t.Errorf("route = %+v", rt)
	}
}

func TestRulesCmd(t *testing.T) {
	a := newTestApp(t)

	if out := a.mustRun(t, "rules"); !strings.Contains(out, "No rewrite rules") {
		t.Errorf("unexpected output:\n%s", out)
	}

	a.mustRun(t, "rules", "set", "foo", "bar")
	a.mustRun(t, "rules", "set", "bar", "baz", "qux")

	out := a.mustRun(t, "rules")
	fooAt := strings.Index(out, `"foo"`)
	barAt := strings.Index(out, `"baz qux"`)
	if fooAt < 0 || barAt < 0 || fooAt > barAt {
		t.Errorf("rules not listed in order:\n%s", out)
	}

	a.mustRun(t, "rules", "rm", "foo")
	if _, err := a.run(t, "rules", "rm", "foo"); err == nil || !strings.Contains(err.Error(), "no rule") {
		t.Errorf("expected missing rule error, got %v", err)
	}

	set, err := a.flags.Store.Rules(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(set) != 1 || set[0].Old != "bar" || set[0].New != "baz qux" {
		t.Errorf("rules = %+v", set)
	}
}

func TestAccessCmd(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	if _, err := a.run(t, "access", "grant", "5", "zero"); err == nil {
		t.Error("expected error for non-integer days")
	}

	a.mustRun(t, "access", "grant", "5", "7")
	if _, err := a.flags.Store.GetGrant(ctx, 5); err != nil {
		t.Errorf("grant not stored: %v", err)
	}

	a.mustRun(t, "access", "allow", "--chat=-700", "--user=9")
	a.mustRun(t, "access", "allow", "--chat=-700", "--user=8")
	a.mustRun(t, "access", "revoke", "--chat=-700", "--user=9")

	members, err := a.flags.Store.GroupMembers(ctx, -700)
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 1 || members[0] != 8 {
		t.Errorf("members = %v", members)
	}

	out := a.mustRun(t, "access", "ls", "--chat=-700")
	for _, want := range []string{"1 (super admin)", "5", "✔ ok", "Allow list of -700", "• 8"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTopicsCmd(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	if _, err := a.run(t, "topics"); err == nil {
		t.Error("expected error without a destination")
	}

	if err := a.flags.Store.PutTopic(ctx, -200, "News", 11); err != nil {
		t.Fatal(err)
	}
	if err := a.flags.Store.PutTopic(ctx, -300, "Alerts", 12); err != nil {
		t.Fatal(err)
	}

	out := a.mustRun(t, "topics", "--destination=-200")
	if !strings.Contains(out, "News") || strings.Contains(out, "Alerts") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out = a.mustRun(t, "topics", "--all")
	if !strings.Contains(out, "News") || !strings.Contains(out, "Alerts") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestConfigCmd(t *testing.T) {
	a := newTestApp(t)

	out := a.mustRun(t, "config", "validate", "--format", "json")
	if !strings.Contains(out, `"valid": true`) {
		t.Errorf("unexpected output:\n%s", out)
	}

	out = a.mustRun(t, "config", "show")
	if !strings.Contains(out, "driver: jsonfile") || !strings.Contains(out, "fallback_label: General") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestDoctorCmd(t *testing.T) {
	t.Setenv("TOPICWALA_BOT_TOKEN", "")
	t.Setenv("BOT_TOKEN", "")
	a := newTestApp(t)

	out := a.mustRun(t, "doctor", "--format", "json")
	for _, want := range []string{`"healthy": true`, `"name": "Configuration"`, `"name": "State"`, `"warned": 1`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, `"name": "Telegram"`) {
		t.Errorf("telegram checks ran without a token:\n%s", out)
	}
}

func TestSyncCmdRejectsInvalidRange(t *testing.T) {
	a := newTestApp(t)

	tests := [][]string{
		{"--start=0", "--end=5"},
		{"--start=-9223372036854775808", "--end=9223372036854775807"},
		{"--start=1", "--end=9223372036854775807"},
		{"--start=1", "--end=100000000000000"},
		{"--start=1", "--end=10001"},
	}
	for _, bounds := range tests {
		args := append([]string{"sync", "--token=123:abc", "--staging=42"}, bounds...)
		_, err := a.run(t, args...)
		if !errors.Is(err, relay.ErrInvalidRange) {
			t.Errorf("%v: err = %v, want %v", bounds, err, relay.ErrInvalidRange)
		}
	}
}
