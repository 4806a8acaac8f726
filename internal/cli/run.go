package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"

	"docarchive/internal/domain"
)

// Exit codes
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Commands returns every command in listing order
func Commands() []*Command {
	var all []*Command
	all = append(all, adminCommands()...)
	all = append(all, folderCommands()...)
	all = append(all, documentCommands()...)
	all = append(all, userCommands()...)
	return all
}

// Run parses global flags, dispatches to the matching command and returns
// the process exit code
func Run(ctx context.Context, app *App, args []string) int {
	global := flag.NewFlagSet("archive", flag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(&strings.Builder{})
	global.StringVarP(&app.Username, "user", "u", app.Username, "Username for commands that change the archive")
	global.StringVarP(&app.Password, "password", "p", app.Password, "Password for --user")
	help := global.BoolP("help", "h", false, "Show help")

	if err := global.Parse(args); err != nil {
		fmt.Fprintln(app.ErrOut, "error:", err)
		printUsage(app, global)
		return ExitUsage
	}

	rest := global.Args()
	if *help || len(rest) == 0 {
		printUsage(app, global)
		if *help {
			return ExitOK
		}
		return ExitUsage
	}

	cmd, cmdArgs := lookup(Commands(), rest)
	if cmd == nil {
		fmt.Fprintf(app.ErrOut, "error: unknown command %q\n", strings.Join(rest[:min(2, len(rest))], " "))
		printUsage(app, global)
		return ExitUsage
	}

	if err := cmd.run(ctx, app, cmdArgs); err != nil {
		fmt.Fprintln(app.ErrOut, "error:", err)
		return exitCode(err)
	}
	return ExitOK
}

// lookup matches the longest command name that prefixes args
func lookup(cmds []*Command, args []string) (*Command, []string) {
	sorted := append([]*Command{}, cmds...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(strings.Fields(sorted[i].Name())) > len(strings.Fields(sorted[j].Name()))
	})

	for _, cmd := range sorted {
		words := strings.Fields(cmd.Name())
		if len(args) < len(words) {
			continue
		}
		if strings.Join(args[:len(words)], " ") == cmd.Name() {
			return cmd, args[len(words):]
		}
	}
	return nil, nil
}

func exitCode(err error) int {
	if errors.Is(err, domain.ErrValidation) {
		return ExitUsage
	}
	return ExitError
}

func printUsage(app *App, global *flag.FlagSet) {
	out := app.ErrOut
	fmt.Fprintln(out, "Usage: archive [--user <name> --password <pw>] <command> [args]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, cmd := range Commands() {
		fmt.Fprintln(out, cmd.HelpLine())
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Global flags:")
	var buf strings.Builder
	global.SetOutput(&buf)
	global.PrintDefaults()
	fmt.Fprint(out, buf.String())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run 'archive <command> --help' for command flags.")
}
