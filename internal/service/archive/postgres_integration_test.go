package archive_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docarchive/internal/access"
	"docarchive/internal/domain"
	models "docarchive/internal/domain/models/archive"
	archiveSvc "docarchive/internal/domain/services/archive"
	"docarchive/internal/repository/postgres"
	pgArchive "docarchive/internal/repository/postgres/archive"
	"docarchive/internal/service/archive"
)

type archiveEnv struct {
	pool      *pgxpool.Pool
	tables    *postgres.TableNames
	folders   archiveSvc.FolderService
	documents archiveSvc.DocumentService
	users     archiveSvc.UserService
}

var (
	adminActor  = access.Actor{Username: "admin", Role: models.RoleAdmin}
	editorActor = access.Actor{Username: "ed", Role: models.RoleEditor}
)

// setupArchive runs against a real database when ARCHIVE_TEST_DATABASE_URL
// is set. Each test gets its own table prefix.
func setupArchive(t *testing.T) *archiveEnv {
	t.Helper()

	url := os.Getenv("ARCHIVE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("ARCHIVE_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, url, postgres.PoolOptions{MaxConns: 4})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(fmt.Sprintf("it%d_", time.Now().UnixNano())),
		Logger: logger,
	}

	schema := postgres.NewSchemaManager(repoConfig)
	t.Cleanup(func() {
		_ = schema.DropAll(context.Background())
		pool.Close()
	})

	folderRepo := pgArchive.NewFolderRepository(repoConfig)
	docRepo := pgArchive.NewDocumentRepository(repoConfig)
	userRepo := pgArchive.NewUserRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	env := &archiveEnv{
		pool:      pool,
		tables:    repoConfig.Tables,
		folders:   archive.NewFolderService(folderRepo, docRepo, txManager, logger),
		documents: archive.NewDocumentService(docRepo, folderRepo, txManager, nil, nil, logger),
		users:     archive.NewUserService(userRepo, "admin", logger),
	}

	require.NoError(t, archive.NewBootstrapper(schema, env.users, logger).Initialize(ctx))
	return env
}

func (e *archiveEnv) mkdir(t *testing.T, parent *string, name string) {
	t.Helper()
	_, err := e.folders.CreateFolder(context.Background(), adminActor, &archiveSvc.CreateFolderRequest{Name: name, ParentPath: parent})
	require.NoError(t, err)
}

func (e *archiveEnv) addDoc(t *testing.T, folder, title, author string) *models.Document {
	t.Helper()
	doc, err := e.documents.AddDocument(context.Background(), editorActor, &archiveSvc.CreateDocumentRequest{
		Title:      title,
		FolderPath: folder,
		Status:     "Active",
		Author:     author,
	})
	require.NoError(t, err)
	return doc
}

func ptr(s string) *string { return &s }

func TestIntegrationInitializeIsIdempotent(t *testing.T) {
	env := setupArchive(t)
	ctx := context.Background()

	created, err := env.users.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, created, "admin was already seeded by Initialize")

	user, err := env.users.Authenticate(ctx, "admin", "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestIntegrationLegalScenario(t *testing.T) {
	env := setupArchive(t)
	ctx := context.Background()

	env.mkdir(t, nil, "Legal")
	doc := env.addDoc(t, "/Legal", "NDA", "admin")

	err := env.folders.DeleteFolder(ctx, adminActor, "/Legal")
	require.ErrorIs(t, err, domain.ErrGuarded)

	_, err = env.folders.GetFolder(ctx, "/Legal")
	require.NoError(t, err, "guarded delete leaves the folder in place")

	require.NoError(t, env.documents.DeleteDocument(ctx, editorActor, doc.ID))
	require.NoError(t, env.folders.DeleteFolder(ctx, adminActor, "/Legal"))

	_, err = env.folders.GetFolder(ctx, "/Legal")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIntegrationDeleteFolderWithChild(t *testing.T) {
	env := setupArchive(t)
	ctx := context.Background()

	env.mkdir(t, nil, "a")
	env.mkdir(t, ptr("/a"), "b")

	err := env.folders.DeleteFolder(ctx, adminActor, "/a")
	var guarded *domain.GuardedError
	require.ErrorAs(t, err, &guarded)
	assert.Equal(t, 1, guarded.Folders)

	require.NoError(t, env.folders.DeleteFolder(ctx, adminActor, "/a/b"))
	require.NoError(t, env.folders.DeleteFolder(ctx, adminActor, "/a"))
}

// A reference the emptiness check cannot see stands in for a document
// committed by another transaction between the check and the delete.
func TestIntegrationDeleteFolderRefusedByLateReference(t *testing.T) {
	env := setupArchive(t)
	ctx := context.Background()

	env.mkdir(t, nil, "late")

	pins := env.tables.Prefix + "pins"
	_, err := env.pool.Exec(ctx, fmt.Sprintf(
		`CREATE TABLE %s (folder_path TEXT NOT NULL REFERENCES %s(path))`, pins, env.tables.Folders))
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = env.pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+pins)
	})
	_, err = env.pool.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (folder_path) VALUES ('/late')`, pins))
	require.NoError(t, err)

	err = env.folders.DeleteFolder(ctx, adminActor, "/late")
	var guarded *domain.GuardedError
	require.ErrorAs(t, err, &guarded, "got %v", err)
	assert.Equal(t, "/late", guarded.Path)

	_, err = env.folders.GetFolder(ctx, "/late")
	assert.NoError(t, err, "refused delete leaves the folder in place")
}

func TestIntegrationRenameRespectsSegmentBoundary(t *testing.T) {
	env := setupArchive(t)
	ctx := context.Background()

	env.mkdir(t, nil, "a")
	env.mkdir(t, ptr("/a"), "c")
	env.mkdir(t, nil, "ab")
	env.mkdir(t, ptr("/ab"), "c")
	inA := env.addDoc(t, "/a/c", "in a", "x")
	inAB := env.addDoc(t, "/ab/c", "in ab", "x")

	_, err := env.folders.RenameFolder(ctx, editorActor, "/a", "b")
	require.NoError(t, err)

	all, err := env.folders.GetAll(ctx)
	require.NoError(t, err)
	assert.Contains(t, all, "/b")
	assert.Contains(t, all, "/b/c")
	assert.Contains(t, all, "/ab")
	assert.Contains(t, all, "/ab/c")
	assert.NotContains(t, all, "/a")
	assert.Equal(t, "/b", *all["/b/c"].ParentPath)
	assert.Equal(t, "/ab", *all["/ab/c"].ParentPath)

	moved, err := env.documents.GetDocument(ctx, inA.ID)
	require.NoError(t, err)
	assert.Equal(t, "/b/c", moved.FolderPath)

	untouched, err := env.documents.GetDocument(ctx, inAB.ID)
	require.NoError(t, err)
	assert.Equal(t, "/ab/c", untouched.FolderPath)
}

func TestIntegrationRenameCascadesEverything(t *testing.T) {
	env := setupArchive(t)
	ctx := context.Background()

	env.mkdir(t, nil, "x")
	env.mkdir(t, ptr("/x"), "p")
	env.mkdir(t, ptr("/x/p"), "q")
	top := env.addDoc(t, "/x", "top", "x")
	deep := env.addDoc(t, "/x/p/q", "deep", "x")

	_, err := env.folders.RenameFolder(ctx, editorActor, "/x", "y")
	require.NoError(t, err)

	all, err := env.folders.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, []string{"/y/p"}, all["/y"].Subfolders)
	assert.Equal(t, []string{"/y/p/q"}, all["/y/p"].Subfolders)

	for id, want := range map[string]string{top.ID: "/y", deep.ID: "/y/p/q"} {
		doc, err := env.documents.GetDocument(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, doc.FolderPath)
	}

	count, err := env.documents.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIntegrationMoveFolder(t *testing.T) {
	env := setupArchive(t)
	ctx := context.Background()

	env.mkdir(t, nil, "src")
	env.mkdir(t, ptr("/src"), "inner")
	env.mkdir(t, nil, "dst")
	doc := env.addDoc(t, "/src/inner", "memo", "x")

	_, err := env.folders.MoveFolder(ctx, editorActor, "/src", ptr("/src/inner"))
	require.ErrorIs(t, err, domain.ErrValidation)

	folder, err := env.folders.MoveFolder(ctx, editorActor, "/src", ptr("/dst"))
	require.NoError(t, err)
	assert.Equal(t, "/dst/src", folder.Path)

	children, err := env.folders.ListChildren(ctx, "/dst/src")
	require.NoError(t, err)
	assert.Equal(t, []string{"/dst/src/inner"}, children)

	got, err := env.documents.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "/dst/src/inner", got.FolderPath)
}

func TestIntegrationCreateFolderConflict(t *testing.T) {
	env := setupArchive(t)
	ctx := context.Background()

	env.mkdir(t, nil, "Legal")
	_, err := env.folders.CreateFolder(ctx, adminActor, &archiveSvc.CreateFolderRequest{Name: "Legal"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	roots, err := env.folders.ListChildren(ctx, "/")
	require.NoError(t, err)
	assert.Equal(t, []string{"/Legal"}, roots)
}

func TestIntegrationTagsRoundTrip(t *testing.T) {
	env := setupArchive(t)
	ctx := context.Background()
	env.mkdir(t, nil, "t")

	cases := []struct {
		name string
		tags []string
		want []string
	}{
		{"two tags", []string{"a", "b"}, []string{"a", "b"}},
		{"empty", []string{}, []string{}},
		{"nil", nil, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			created, err := env.documents.AddDocument(ctx, editorActor, &archiveSvc.CreateDocumentRequest{
				Title:       "doc",
				Description: "desc",
				FilePath:    "/files/doc.txt",
				FolderPath:  "/t",
				Status:      "Draft",
				Author:      "ed",
				Cabinet:     ptr("C1"),
				Tags:        tc.tags,
			})
			require.NoError(t, err)

			got, err := env.documents.GetDocument(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Tags)
			assert.Equal(t, "desc", got.Description)
			assert.Equal(t, "/files/doc.txt", got.FilePath)
			assert.Equal(t, "C1", *got.Cabinet)
			assert.Nil(t, got.Shelf)
		})
	}
}

func TestIntegrationSearch(t *testing.T) {
	env := setupArchive(t)
	ctx := context.Background()

	env.mkdir(t, nil, "one")
	env.mkdir(t, nil, "two")
	match := env.addDoc(t, "/one", "Contract", "admin")
	env.addDoc(t, "/one", "Invoice", "editor")
	other := env.addDoc(t, "/two", "Report", "Admin")

	docs, err := env.documents.Search(ctx, &models.SearchOptions{Query: "admin"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, match.ID, docs[0].ID)
	assert.Equal(t, other.ID, docs[1].ID)

	docs, err = env.documents.Search(ctx, &models.SearchOptions{Query: "admin", FolderPath: ptr("/one")})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, match.ID, docs[0].ID)

	docs, err = env.documents.Search(ctx, &models.SearchOptions{Query: "%"})
	require.NoError(t, err)
	assert.Empty(t, docs, "wildcards are matched literally")

	docs, err = env.documents.Search(ctx, &models.SearchOptions{Query: ""})
	require.NoError(t, err)
	assert.Len(t, docs, 3, "empty query matches every document")

	docs, err = env.documents.Search(ctx, &models.SearchOptions{Query: " ", FolderPath: ptr("/one")})
	require.NoError(t, err)
	assert.Len(t, docs, 2, "empty query still honors the folder scope")
}

func TestIntegrationUpdateAndList(t *testing.T) {
	env := setupArchive(t)
	ctx := context.Background()
	env.mkdir(t, nil, "f")
	first := env.addDoc(t, "/f", "first", "x")
	second := env.addDoc(t, "/f", "second", "x")

	docs, err := env.documents.ListByFolder(ctx, "/f", nil)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, second.ID, docs[0].ID, "newest first")

	updated, err := env.documents.UpdateDocument(ctx, editorActor, first.ID, &models.DocumentPatch{Status: ptr("Archived")})
	require.NoError(t, err)
	assert.Equal(t, "Archived", updated.Status)
	assert.Equal(t, "first", updated.Title, "fields not in the patch are untouched")

	docs, err = env.documents.ListByFolder(ctx, "/f", &models.ListOptions{Status: "Archived"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, first.ID, docs[0].ID)

	_, err = env.documents.UpdateDocument(ctx, editorActor, first.ID, &models.DocumentPatch{FolderPath: ptr("/missing")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	size := int64(42)
	require.NoError(t, env.documents.StoreDerived(ctx, first.ID, &models.DerivedFields{FileSize: &size, FileType: ptr("text/plain")}))
	got, err := env.documents.GetDocument(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), *got.Derived.FileSize)

	_, err = env.documents.GetDocument(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
