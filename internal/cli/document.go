package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	models "docarchive/internal/domain/models/archive"
	archiveSvc "docarchive/internal/domain/services/archive"
)

// documentFields are the editable document flags shared by add and update
type documentFields struct {
	flags       *flag.FlagSet
	title       *string
	description *string
	file        *string
	folder      *string
	status      *string
	author      *string
	cabinet     *string
	shelf       *string
	box         *string
	tags        *[]string
}

func newDocumentFields(name string) *documentFields {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &documentFields{
		flags:       fs,
		title:       fs.StringP("title", "t", "", "Title"),
		description: fs.StringP("description", "d", "", "Description"),
		file:        fs.StringP("file", "f", "", "File reference (local path or s3://bucket/key)"),
		folder:      fs.String("folder", "", "Folder path"),
		status:      fs.StringP("status", "s", "", "Status label"),
		author:      fs.StringP("author", "a", "", "Author"),
		cabinet:     fs.String("cabinet", "", "Cabinet (physical location)"),
		shelf:       fs.String("shelf", "", "Shelf (physical location)"),
		box:         fs.String("box", "", "Box (physical location)"),
		tags:        fs.StringSlice("tag", nil, "Tag (repeatable or comma-separated)"),
	}
}

// changed returns the flag value when it was given on the command line
func (f *documentFields) changed(name string, value *string) *string {
	if !f.flags.Changed(name) {
		return nil
	}
	v := *value
	return &v
}

// patch builds a partial update from the flags that were set
func (f *documentFields) patch() *models.DocumentPatch {
	patch := &models.DocumentPatch{
		Title:       f.changed("title", f.title),
		Description: f.changed("description", f.description),
		FilePath:    f.changed("file", f.file),
		FolderPath:  f.changed("folder", f.folder),
		Status:      f.changed("status", f.status),
		Author:      f.changed("author", f.author),
		Cabinet:     f.changed("cabinet", f.cabinet),
		Shelf:       f.changed("shelf", f.shelf),
		Box:         f.changed("box", f.box),
	}
	if f.flags.Changed("tag") {
		tags := append([]string{}, (*f.tags)...)
		patch.Tags = &tags
	}
	return patch
}

func (f *documentFields) createRequest() *archiveSvc.CreateDocumentRequest {
	return &archiveSvc.CreateDocumentRequest{
		Title:       *f.title,
		Description: *f.description,
		FilePath:    *f.file,
		FolderPath:  *f.folder,
		Status:      *f.status,
		Author:      *f.author,
		Cabinet:     f.changed("cabinet", f.cabinet),
		Shelf:       f.changed("shelf", f.shelf),
		Box:         f.changed("box", f.box),
		Tags:        *f.tags,
	}
}

func documentCommands() []*Command {
	add := newDocumentFields("doc add")
	update := newDocumentFields("doc update")

	list := flag.NewFlagSet("doc ls", flag.ContinueOnError)
	listStatus := list.String("status", "", "Only documents with this status")
	listSort := list.String("sort", string(models.SortByDate), "Sort by date, title or status")

	search := flag.NewFlagSet("doc search", flag.ContinueOnError)
	searchFolder := search.String("folder", "", "Only documents directly in this folder")
	searchText := search.Bool("text", false, "Also search extracted file text")

	return []*Command{
		{
			Flags: add.flags,
			Usage: "doc add --title <t> --folder <path> --status <s> --author <a> [flags]",
			Short: "Add a document",
			Args:  0,
			Exec: func(ctx context.Context, app *App, _ []string) error {
				actor, err := app.Actor(ctx)
				if err != nil {
					return err
				}
				doc, err := app.Documents.AddDocument(ctx, actor, add.createRequest())
				if err != nil {
					return err
				}
				app.Println(doc.ID)
				return nil
			},
		},
		{
			Flags: list,
			Usage: "doc ls <folder> [--status <s>] [--sort date|title|status]",
			Short: "List documents in a folder (not recursive)",
			Args:  1,
			Exec: func(ctx context.Context, app *App, args []string) error {
				docs, err := app.Documents.ListByFolder(ctx, args[0], &models.ListOptions{
					Status: *listStatus,
					Sort:   models.SortField(*listSort),
				})
				if err != nil {
					return err
				}
				printDocuments(app, docs)
				return nil
			},
		},
		{
			Usage: "doc show <id>",
			Short: "Show every field of a document",
			Args:  1,
			Exec: func(ctx context.Context, app *App, args []string) error {
				doc, err := app.Documents.GetDocument(ctx, args[0])
				if err != nil {
					return err
				}
				printDocument(app, doc)
				return nil
			},
		},
		{
			Flags: update.flags,
			Usage: "doc update <id> [flags]",
			Short: "Change the given fields of a document",
			Args:  1,
			Exec: func(ctx context.Context, app *App, args []string) error {
				actor, err := app.Actor(ctx)
				if err != nil {
					return err
				}
				doc, err := app.Documents.UpdateDocument(ctx, actor, args[0], update.patch())
				if err != nil {
					return err
				}
				printDocument(app, doc)
				return nil
			},
		},
		{
			Usage: "doc rm <id>",
			Short: "Delete a document and its file",
			Args:  1,
			Exec: func(ctx context.Context, app *App, args []string) error {
				actor, err := app.Actor(ctx)
				if err != nil {
					return err
				}
				return app.Documents.DeleteDocument(ctx, actor, args[0])
			},
		},
		{
			Flags: search,
			Usage: "doc search <query> [--folder <path>] [--text]",
			Short: "Search document metadata",
			Args:  1,
			Exec: func(ctx context.Context, app *App, args []string) error {
				opts := &models.SearchOptions{Query: args[0], IncludeText: *searchText}
				if *searchFolder != "" {
					opts.FolderPath = searchFolder
				}
				docs, err := app.Documents.Search(ctx, opts)
				if err != nil {
					return err
				}
				printDocuments(app, docs)
				return nil
			},
		},
		{
			Usage: "doc export <folder> <dest>",
			Short: "Write a text listing of a folder's documents",
			Args:  2,
			Exec: func(ctx context.Context, app *App, args []string) error {
				n, err := app.Export.ExportFolder(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				app.Printf("exported %d document(s) to %s\n", n, args[1])
				return nil
			},
		},
	}
}

func printDocuments(app *App, docs []models.Document) {
	w := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tAUTHOR\tCREATED")
	for _, doc := range docs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			doc.ID, doc.Title, doc.Status, doc.Author, doc.CreatedDate.Format("2006-01-02"))
	}
	_ = w.Flush()
}

func printDocument(app *App, doc *models.Document) {
	w := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
	row := func(label, value string) {
		fmt.Fprintf(w, "%s:\t%s\n", label, value)
	}
	opt := func(v *string) string {
		if v == nil {
			return "-"
		}
		return *v
	}

	row("ID", doc.ID)
	row("Title", doc.Title)
	row("Description", doc.Description)
	row("Folder", doc.FolderPath)
	row("File", doc.FilePath)
	row("Status", doc.Status)
	row("Author", doc.Author)
	row("Created", doc.CreatedDate.Format("2006-01-02 15:04"))
	row("Tags", strings.Join(doc.Tags, ", "))
	row("Location", fmt.Sprintf("cabinet %s, shelf %s, box %s", opt(doc.Cabinet), opt(doc.Shelf), opt(doc.Box)))
	row("Preview", opt(doc.Derived.PreviewPath))
	row("Type", opt(doc.Derived.FileType))
	if doc.Derived.FileSize != nil {
		row("Size", fmt.Sprintf("%d bytes", *doc.Derived.FileSize))
	}
	_ = w.Flush()
}
