package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/doccoon/internal/dbx"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/books"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/bookshares"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/pages"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/pageshares"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/settings"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a *sql.DB or an open
// *sql.Tx, so services choose the transaction scope.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Books(db dbx.DBTX) books.Repository
	Pages(db dbx.DBTX) pages.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	BookShares(db dbx.DBTX) bookshares.Repository
	PageShares(db dbx.DBTX) pageshares.Repository
	Notifications(db dbx.DBTX) notifications.Repository
	Settings(db dbx.DBTX) settings.Repository
}
