// Package repomanager wires the PostgreSQL repositories and the embedded
// goose migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/doccoon/internal/dbx"
	"github.com/dmitrijs2005/doccoon/internal/server/migrations"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/books"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/bookshares"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/pages"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/pageshares"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/settings"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

var _ RepositoryManager = (*PostgresRepositoryManager)(nil)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Books(db dbx.DBTX) books.Repository {
	return books.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Pages(db dbx.DBTX) pages.Repository {
	return pages.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Credentials(db dbx.DBTX) credentials.Repository {
	return credentials.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) BookShares(db dbx.DBTX) bookshares.Repository {
	return bookshares.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) PageShares(db dbx.DBTX) pageshares.Repository {
	return pageshares.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Notifications(db dbx.DBTX) notifications.Repository {
	return notifications.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Settings(db dbx.DBTX) settings.Repository {
	return settings.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
