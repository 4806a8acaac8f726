package cli

import (
	"context"
	"strings"

	flag "github.com/spf13/pflag"

	models "docarchive/internal/domain/models/archive"
	archiveSvc "docarchive/internal/domain/services/archive"
	"docarchive/internal/pathutil"
)

func folderCommands() []*Command {
	create := flag.NewFlagSet("folder create", flag.ContinueOnError)
	parent := create.StringP("parent", "p", "", "Parent folder path (default: root)")

	move := flag.NewFlagSet("folder move", flag.ContinueOnError)
	to := move.String("to", "", "New parent folder path (default: root)")

	return []*Command{
		{
			Flags: create,
			Usage: "folder create <name> [--parent <path>]",
			Short: "Create a folder",
			Args:  1,
			Exec: func(ctx context.Context, app *App, args []string) error {
				actor, err := app.Actor(ctx)
				if err != nil {
					return err
				}
				req := &archiveSvc.CreateFolderRequest{Name: args[0]}
				if *parent != "" {
					req.ParentPath = parent
				}
				folder, err := app.Folders.CreateFolder(ctx, actor, req)
				if err != nil {
					return err
				}
				app.Println(folder.Path)
				return nil
			},
		},
		{
			Usage: "folder rename <path> <new-name>",
			Short: "Rename a folder and everything below it",
			Args:  2,
			Exec: func(ctx context.Context, app *App, args []string) error {
				actor, err := app.Actor(ctx)
				if err != nil {
					return err
				}
				folder, err := app.Folders.RenameFolder(ctx, actor, args[0], args[1])
				if err != nil {
					return err
				}
				app.Println(folder.Path)
				return nil
			},
		},
		{
			Flags: move,
			Usage: "folder move <path> [--to <path>]",
			Short: "Move a folder under a new parent",
			Args:  1,
			Exec: func(ctx context.Context, app *App, args []string) error {
				actor, err := app.Actor(ctx)
				if err != nil {
					return err
				}
				var target *string
				if *to != "" {
					target = to
				}
				folder, err := app.Folders.MoveFolder(ctx, actor, args[0], target)
				if err != nil {
					return err
				}
				app.Println(folder.Path)
				return nil
			},
		},
		{
			Usage: "folder delete <path>",
			Short: "Delete an empty folder",
			Args:  1,
			Exec: func(ctx context.Context, app *App, args []string) error {
				actor, err := app.Actor(ctx)
				if err != nil {
					return err
				}
				return app.Folders.DeleteFolder(ctx, actor, args[0])
			},
		},
		{
			Usage: "folder ls [path]",
			Short: "List direct subfolders (default: root)",
			Args:  -1,
			Exec: func(ctx context.Context, app *App, args []string) error {
				path := pathutil.Root
				if len(args) > 0 {
					path = args[0]
				}
				children, err := app.Folders.ListChildren(ctx, path)
				if err != nil {
					return err
				}
				for _, child := range children {
					app.Println(child)
				}
				return nil
			},
		},
		{
			Usage: "folder tree",
			Short: "Print the folder hierarchy",
			Args:  0,
			Exec: func(ctx context.Context, app *App, _ []string) error {
				tree, err := app.Folders.Tree(ctx)
				if err != nil {
					return err
				}
				printTree(app, tree, 0)
				return nil
			},
		},
	}
}

func printTree(app *App, node *models.FolderTree, depth int) {
	app.Printf("%s%s\n", strings.Repeat("  ", depth), node.Name)
	for _, child := range node.Folders {
		printTree(app, child, depth+1)
	}
}
