package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"docarchive/internal/access"
	"docarchive/internal/domain"
	archiveSvc "docarchive/internal/domain/services/archive"
)

// App carries the services and credentials a command needs
type App struct {
	Folders   archiveSvc.FolderService
	Documents archiveSvc.DocumentService
	Users     archiveSvc.UserService
	Stats     archiveSvc.StatsService
	Export    archiveSvc.ExportService

	// Initialize prepares storage (schema and default admin)
	Initialize func(ctx context.Context) error

	// Credentials for mutating commands. Empty values fall back to
	// ARCHIVE_USER / ARCHIVE_PASSWORD.
	Username string
	Password string

	Out    io.Writer
	ErrOut io.Writer
	Getenv func(string) string
}

func (a *App) Println(args ...any) {
	_, _ = fmt.Fprintln(a.Out, args...)
}

func (a *App) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.Out, format, args...)
}

func (a *App) getenv(key string) string {
	if a.Getenv == nil {
		return os.Getenv(key)
	}
	return a.Getenv(key)
}

// Actor authenticates the configured credentials
func (a *App) Actor(ctx context.Context) (access.Actor, error) {
	username, password := a.Username, a.Password
	if username == "" {
		username = a.getenv("ARCHIVE_USER")
	}
	if password == "" {
		password = a.getenv("ARCHIVE_PASSWORD")
	}
	if username == "" {
		return access.Actor{}, &domain.UnauthorizedError{
			Message: "this command needs credentials: pass --user/--password or set ARCHIVE_USER/ARCHIVE_PASSWORD",
		}
	}

	user, err := a.Users.Authenticate(ctx, username, password)
	if err != nil {
		return access.Actor{}, err
	}
	return access.ActorFor(user), nil
}
