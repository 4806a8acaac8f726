// Package cli implements the archive command line on top of the archive
// services.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	"docarchive/internal/domain"
)

// Command is one "archive <group> <name>" invocation
type Command struct {
	// Flags holds command-specific flags. Nil means the command takes none.
	Flags *flag.FlagSet

	// Usage is shown after "archive" in help, e.g. "folder rename <path> <new-name>"
	Usage string

	// Short is the one-line description in the command listing
	Short string

	// Args is the exact number of positional arguments, or -1 for any
	Args int

	Exec func(ctx context.Context, app *App, args []string) error
}

// Name returns the words of Usage up to the first argument or flag
func (c *Command) Name() string {
	var words []string
	for _, w := range strings.Fields(c.Usage) {
		if strings.ContainsAny(w[:1], "<[-") {
			break
		}
		words = append(words, w)
	}
	return strings.Join(words, " ")
}

// HelpLine returns the entry shown in the command listing
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-40s %s", c.Usage, c.Short)
}

func (c *Command) printHelp(app *App) {
	app.Println("Usage: archive", c.Usage)
	app.Println()
	app.Println(c.Short)

	if c.Flags != nil && c.Flags.HasFlags() {
		app.Println()
		app.Println("Flags:")
		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		app.Printf("%s", buf.String())
	}
}

// run parses flags, checks the argument count and executes the command
func (c *Command) run(ctx context.Context, app *App, args []string) error {
	if c.Flags == nil {
		c.Flags = flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	}
	c.Flags.SetOutput(&strings.Builder{})

	if err := c.Flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.printHelp(app)
			return nil
		}
		return &domain.ValidationError{Message: fmt.Sprintf("%v\nusage: archive %s", err, c.Usage)}
	}

	rest := c.Flags.Args()
	if c.Args >= 0 && len(rest) != c.Args {
		return &domain.ValidationError{
			Message: fmt.Sprintf("expected %d argument(s), got %d\nusage: archive %s", c.Args, len(rest), c.Usage),
		}
	}

	return c.Exec(ctx, app, rest)
}
