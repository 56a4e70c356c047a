package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/Abraham77967/Taskmate-Web/apps/shared"
	"github.com/Abraham77967/Taskmate-Web/core"
	"github.com/Abraham77967/Taskmate-Web/core/homework"
	"github.com/Abraham77967/Taskmate-Web/core/session"
	"github.com/Abraham77967/Taskmate-Web/core/viewmodel"
	"github.com/Abraham77967/Taskmate-Web/services/identity"
)

const tokenEnv = "TASKMATE_TOKEN"

var (
	readPasswordFunc = term.ReadPassword // mockable

	// how long a resumed session may take to receive its first snapshots
	attachTimeout = 5 * time.Second

	errHelp = errors.New("help provided")
)

type commandLine struct {
	app *shared.App
	out io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  hashpassword - hash a password for the auth.passwordHash setting; the password is prompted")
	fmt.Fprintln(cli.out, "  signin -username USERNAME - sign in and print a session token; the password is prompted")
	fmt.Fprintln(cli.out, "  dashboard [-token TOKEN] - upcoming homework and recent classes")
	fmt.Fprintln(cli.out, "  classes [-token TOKEN] - list classes")
	fmt.Fprintln(cli.out, "  homework [-token TOKEN] [-class ID] [-status STATUS] - list homework")
	fmt.Fprintln(cli.out, "  toggle [-token TOKEN] -id ID - toggle homework completion")
	fmt.Fprintln(cli.out, "  delete [-token TOKEN] -id ID - delete homework")
	fmt.Fprintf(cli.out, "The token defaults to $%s.\n", tokenEnv)
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	hashPasswordCmd := flag.NewFlagSet("hashpassword", flag.ContinueOnError)

	signInCmd := flag.NewFlagSet("signin", flag.ContinueOnError)
	signInUname := signInCmd.String("username", "", "The account's username. The password will be prompted next.")

	dashboardCmd := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	dashboardToken := tokenFlag(dashboardCmd)

	classesCmd := flag.NewFlagSet("classes", flag.ContinueOnError)
	classesToken := tokenFlag(classesCmd)

	homeworkCmd := flag.NewFlagSet("homework", flag.ContinueOnError)
	homeworkToken := tokenFlag(homeworkCmd)
	homeworkClass := homeworkCmd.String("class", "", "Only list homework of this class ID.")
	homeworkStatus := homeworkCmd.String("status", "", "Only list homework with this status: pending, in_progress or completed.")

	toggleCmd := flag.NewFlagSet("toggle", flag.ContinueOnError)
	toggleToken := tokenFlag(toggleCmd)
	toggleID := toggleCmd.String("id", "", "The homework ID.")

	deleteCmd := flag.NewFlagSet("delete", flag.ContinueOnError)
	deleteToken := tokenFlag(deleteCmd)
	deleteID := deleteCmd.String("id", "", "The homework ID.")

	for _, cmd := range []*flag.FlagSet{hashPasswordCmd, signInCmd, dashboardCmd, classesCmd, homeworkCmd, toggleCmd, deleteCmd} {
		cmd.SetOutput(cli.out)
	}

	ctx := context.Background()

	switch args[1] {
	case "hashpassword":
		if err := hashPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			hashPasswordCmd.Usage()
			return errHelp
		}
		hash, err := identity.HashPassword(pwd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cli.out, hash)
		return nil

	case "signin":
		if err := signInCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *signInUname == "" {
			signInCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			signInCmd.Usage()
			return errHelp
		}
		return cli.signIn(ctx, *signInUname, pwd)

	case "dashboard":
		if err := dashboardCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if err := cli.resume(ctx, *dashboardToken); err != nil {
			return err
		}
		cli.printDashboard()
		return nil

	case "classes":
		if err := classesCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if err := cli.resume(ctx, *classesToken); err != nil {
			return err
		}
		cli.printClasses()
		return nil

	case "homework":
		if err := homeworkCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		f := viewmodel.Filter{
			ClassID: strings.TrimSpace(*homeworkClass),
			Status:  homework.Status(core.CleanString(*homeworkStatus, true /* lower */)),
		}
		if !validStatus(f.Status) {
			homeworkCmd.Usage()
			return errHelp
		}
		if err := cli.resume(ctx, *homeworkToken); err != nil {
			return err
		}
		cli.printHomework(f)
		return nil

	case "toggle":
		if err := toggleCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *toggleID == "" {
			toggleCmd.Usage()
			return errHelp
		}
		if err := cli.resume(ctx, *toggleToken); err != nil {
			return err
		}
		return cli.app.Tracker.ToggleHomework(ctx, *toggleID)

	case "delete":
		if err := deleteCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *deleteID == "" {
			deleteCmd.Usage()
			return errHelp
		}
		if err := cli.resume(ctx, *deleteToken); err != nil {
			return err
		}
		return cli.app.Tracker.DeleteHomework(ctx, *deleteID)

	default:
		cli.printUsage()
		return errHelp
	}
}

func tokenFlag(cmd *flag.FlagSet) *string {
	return cmd.String("token", os.Getenv(tokenEnv), "A session token printed by signin.")
}

func validStatus(status homework.Status) bool {
	if status == "" {
		return true
	}
	for _, s := range homework.AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) signIn(ctx context.Context, username, pwd string) error {
	if err := cli.app.Tracker.SignIn(ctx, session.Credentials{Username: username, Password: pwd}); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, cli.app.Identity.Token())
	return nil
}

// resume restores the session of token and waits for its first snapshots.
func (cli *commandLine) resume(ctx context.Context, token string) error {
	if token == "" {
		return identity.ErrInvalidToken
	}
	if err := cli.app.Identity.Resume(ctx, token); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, attachTimeout)
	defer cancel()
	return cli.app.Tracker.WaitReady(waitCtx)
}

func (cli *commandLine) printDashboard() {
	dash := cli.app.Tracker.Dashboard(cli.app.Tracker.Now())
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "UPCOMING")
	if len(dash.Upcoming) == 0 {
		fmt.Fprintln(w, "  nothing due")
	}
	for _, item := range dash.Upcoming {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", item.Title, className(item.Class), item.DueInLabel)
	}
	fmt.Fprintln(w, "RECENT CLASSES")
	if len(dash.RecentClasses) == 0 {
		fmt.Fprintln(w, "  no classes")
	}
	for _, cls := range dash.RecentClasses {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", cls.Name, cls.TimeRange, strings.Join(cls.WeekdayLabels, ", "))
	}
}

func (cli *commandLine) printClasses() {
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tNAME\tTIME\tDAYS\tLOCATION")
	for _, cls := range cli.app.Tracker.Classes() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", cls.ID, cls.Name, cls.TimeRange, strings.Join(cls.WeekdayLabels, ", "), cls.Location)
	}
}

func (cli *commandLine) printHomework(f viewmodel.Filter) {
	list := cli.app.Tracker.Homework(f, cli.app.Tracker.Now())
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tTITLE\tCLASS\tDUE\tPRIORITY\tSTATUS")
	for _, item := range list.Items {
		due := item.DueLabel
		if item.IsOverdue {
			due += " (overdue)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", item.ID, item.Title, className(item.Class), due, item.Priority, item.Status)
	}
	fmt.Fprintf(w, "%d of %d\n", len(list.Items), list.Total)
}

func className(ref *viewmodel.ClassRef) string {
	if ref == nil {
		return "-"
	}
	return ref.Name
}
