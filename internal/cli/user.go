package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	models "docarchive/internal/domain/models/archive"
	archiveSvc "docarchive/internal/domain/services/archive"
)

func userCommands() []*Command {
	add := flag.NewFlagSet("user add", flag.ContinueOnError)
	password := add.String("new-password", "", "Password for the new account")
	role := add.String("role", string(models.RoleViewer), "Role: admin, editor or viewer")

	return []*Command{
		{
			Flags: add,
			Usage: "user add <username> --new-password <pw> [--role <role>]",
			Short: "Create an account (admin only)",
			Args:  1,
			Exec: func(ctx context.Context, app *App, args []string) error {
				actor, err := app.Actor(ctx)
				if err != nil {
					return err
				}
				user, err := app.Users.CreateUser(ctx, actor, &archiveSvc.CreateUserRequest{
					Username: args[0],
					Password: *password,
					Role:     models.Role(*role),
				})
				if err != nil {
					return err
				}
				app.Printf("created %s (%s)\n", user.Username, user.Role)
				return nil
			},
		},
		{
			Usage: "user ls",
			Short: "List accounts",
			Args:  0,
			Exec: func(ctx context.Context, app *App, _ []string) error {
				users, err := app.Users.ListUsers(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "USERNAME\tROLE\tCREATED")
				for _, u := range users {
					fmt.Fprintf(w, "%s\t%s\t%s\n", u.Username, u.Role, u.CreatedAt.Format("2006-01-02"))
				}
				return w.Flush()
			},
		},
		{
			Usage: "user rm <username>",
			Short: "Delete an account (admin only)",
			Args:  1,
			Exec: func(ctx context.Context, app *App, args []string) error {
				actor, err := app.Actor(ctx)
				if err != nil {
					return err
				}
				return app.Users.DeleteUser(ctx, actor, args[0])
			},
		},
	}
}

func adminCommands() []*Command {
	return []*Command{
		{
			Usage: "init",
			Short: "Create tables and the default admin if missing",
			Args:  0,
			Exec: func(ctx context.Context, app *App, _ []string) error {
				if err := app.Initialize(ctx); err != nil {
					return err
				}
				app.Println("archive ready")
				return nil
			},
		},
		{
			Usage: "stats",
			Short: "Show archive totals",
			Args:  0,
			Exec: func(ctx context.Context, app *App, _ []string) error {
				stats, err := app.Stats.Stats(ctx)
				if err != nil {
					return err
				}
				app.Printf("documents: %d\nfolders:   %d\nusers:     %d\n", stats.Documents, stats.Folders, stats.Users)
				return nil
			},
		},
	}
}
