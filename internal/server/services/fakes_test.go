package services

import (
	"context"
	"database/sql"
	"io"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/doccoon/internal/common"
	"github.com/dmitrijs2005/doccoon/internal/dbx"
	"github.com/dmitrijs2005/doccoon/internal/logging"
	"github.com/dmitrijs2005/doccoon/internal/server/models"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/books"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/bookshares"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/pages"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/pageshares"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/settings"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func discardLogger() logging.Logger {
	return logging.NewJSONLogger(io.Discard, "error")
}

// newTxDB returns a mock database expecting txs transactions that all end
// the same way, in any order.
func newTxDB(t *testing.T, txs int, commit bool) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.MatchExpectationsInOrder(false)
	for i := 0; i < txs; i++ {
		mock.ExpectBegin()
		if commit {
			mock.ExpectCommit()
		} else {
			mock.ExpectRollback()
		}
	}
	return db, mock
}

// memStore is an in-memory stand-in for the database behind every
// repository. errs injects a failure for an operation named "repo.Method";
// once injects a failure for the next call only.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	now    time.Time

	users      map[int64]*models.User
	tokens     map[string]*models.RefreshToken
	books      map[int64]*models.Book
	pages      map[int64]*models.Page
	creds      map[int64]*models.Credential
	bookShares []*bookShareRow
	pageShares []*pageShareRow
	notes      []*models.Notification
	settings   map[int64]*models.UserSettings

	deletedBooks map[int64]bool
	deletedPages map[int64]bool
	deletedCreds map[int64]bool
	deletedNotes map[int64]bool

	errs map[string]error
	once map[string]error
}

type bookShareRow struct {
	share   models.BookShare
	deleted bool
}

type pageShareRow struct {
	share   models.PageShare
	deleted bool
}

func newMemStore() *memStore {
	return &memStore{
		now:          time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		users:        map[int64]*models.User{},
		tokens:       map[string]*models.RefreshToken{},
		books:        map[int64]*models.Book{},
		pages:        map[int64]*models.Page{},
		creds:        map[int64]*models.Credential{},
		deletedBooks: map[int64]bool{},
		deletedPages: map[int64]bool{},
		deletedCreds: map[int64]bool{},
		deletedNotes: map[int64]bool{},
		settings:     map[int64]*models.UserSettings{},
		errs:         map[string]error{},
		once:         map[string]error{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

func (s *memStore) fail(op string) error {
	if err, ok := s.once[op]; ok {
		delete(s.once, op)
		return err
	}
	return s.errs[op]
}

func (s *memStore) addBook(authorID int64, title string, status models.BookStatus) *models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := &models.Book{ID: s.id(), AuthorID: authorID, Title: title, Status: status, CreatedAt: s.tick()}
	s.books[b.ID] = b
	return b
}

func (s *memStore) addPage(bookID int64, number int, content string) *models.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Page{ID: s.id(), BookID: bookID, PageNumber: number, Content: content, CreatedAt: s.tick()}
	s.pages[p.ID] = p
	return p
}

func (s *memStore) bookShareCount(bookID, userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.bookShares {
		if r.share.BookID == bookID && r.share.SharedBy == userID {
			n++
		}
	}
	return n
}

type memRepoManager struct{ s *memStore }

var _ repomanager.RepositoryManager = (*memRepoManager)(nil)

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Users(dbx.DBTX) users.Repository           { return &memUsers{m.s} }
func (m *memRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return &memRefreshTokens{m.s}
}
func (m *memRepoManager) Books(dbx.DBTX) books.Repository             { return &memBooks{m.s} }
func (m *memRepoManager) Pages(dbx.DBTX) pages.Repository             { return &memPages{m.s} }
func (m *memRepoManager) Credentials(dbx.DBTX) credentials.Repository { return &memCreds{m.s} }
func (m *memRepoManager) BookShares(dbx.DBTX) bookshares.Repository   { return &memBookShares{m.s} }
func (m *memRepoManager) PageShares(dbx.DBTX) pageshares.Repository   { return &memPageShares{m.s} }
func (m *memRepoManager) Notifications(dbx.DBTX) notifications.Repository {
	return &memNotifications{m.s}
}
func (m *memRepoManager) Settings(dbx.DBTX) settings.Repository { return &memSettings{m.s} }

type memUsers struct{ s *memStore }

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("users.Create"); err != nil {
		return nil, err
	}
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID = r.s.id()
	u.CreatedAt = r.s.tick()
	cp := *u
	r.s.users[u.ID] = &cp
	return u, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("users.GetByEmail"); err != nil {
		return nil, err
	}
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) UpdateProfile(_ context.Context, id int64, firstName, lastName string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("users.UpdateProfile"); err != nil {
		return err
	}
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.FirstName, u.LastName = firstName, lastName
	return nil
}

func (r *memUsers) UpdatePassword(_ context.Context, id int64, hash []byte) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("users.UpdatePassword"); err != nil {
		return err
	}
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

// Delete cascades like the schema's foreign keys do.
func (r *memUsers) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.users, id)
	delete(r.s.settings, id)
	for token, t := range r.s.tokens {
		if t.UserID == id {
			delete(r.s.tokens, token)
		}
	}
	for bookID, b := range r.s.books {
		if b.AuthorID == id {
			delete(r.s.books, bookID)
		}
	}
	for credID, c := range r.s.creds {
		if c.UserID == id {
			delete(r.s.creds, credID)
		}
	}
	return nil
}

type memRefreshTokens struct{ s *memStore }

func (r *memRefreshTokens) Create(_ context.Context, userID int64, token string, validity time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("refreshtokens.Create"); err != nil {
		return err
	}
	r.s.tokens[token] = &models.RefreshToken{ID: r.s.id(), UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (r *memRefreshTokens) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("refreshtokens.Find"); err != nil {
		return nil, err
	}
	t, ok := r.s.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memRefreshTokens) Delete(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("refreshtokens.Delete"); err != nil {
		return err
	}
	delete(r.s.tokens, token)
	return nil
}

func (r *memRefreshTokens) DeleteByUser(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("refreshtokens.DeleteByUser"); err != nil {
		return err
	}
	for token, t := range r.s.tokens {
		if t.UserID == userID {
			delete(r.s.tokens, token)
		}
	}
	return nil
}

type memBooks struct{ s *memStore }

func (r *memBooks) Create(_ context.Context, b *models.Book) (*models.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("books.Create"); err != nil {
		return nil, err
	}
	b.ID = r.s.id()
	b.CreatedAt = r.s.tick()
	b.ModifiedAt = b.CreatedAt
	cp := *b
	r.s.books[b.ID] = &cp
	return b, nil
}

func (r *memBooks) GetByID(_ context.Context, id int64) (*models.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("books.GetByID"); err != nil {
		return nil, err
	}
	b, ok := r.s.books[id]
	if !ok || r.s.deletedBooks[id] {
		return nil, common.ErrorNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memBooks) ListByAuthor(_ context.Context, authorID int64) ([]*models.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Book, 0)
	for id, b := range r.s.books {
		if b.AuthorID == authorID && !r.s.deletedBooks[id] {
			cp := *b
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *models.Book) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r *memBooks) Update(_ context.Context, b *models.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("books.Update"); err != nil {
		return err
	}
	if _, ok := r.s.books[b.ID]; !ok || r.s.deletedBooks[b.ID] {
		return common.ErrorNotFound
	}
	cp := *b
	cp.ModifiedAt = r.s.tick()
	r.s.books[b.ID] = &cp
	return nil
}

func (r *memBooks) SoftDelete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.books[id]; !ok || r.s.deletedBooks[id] {
		return common.ErrorNotFound
	}
	r.s.deletedBooks[id] = true
	return nil
}

type memPages struct{ s *memStore }

func (r *memPages) Create(_ context.Context, p *models.Page) (*models.Page, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	last := 0
	for id, existing := range r.s.pages {
		if existing.BookID == p.BookID && !r.s.deletedPages[id] && existing.PageNumber > last {
			last = existing.PageNumber
		}
	}
	p.ID = r.s.id()
	p.PageNumber = last + 1
	p.CreatedAt = r.s.tick()
	cp := *p
	r.s.pages[p.ID] = &cp
	return p, nil
}

func (r *memPages) GetByID(_ context.Context, id int64) (*models.Page, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.pages[id]
	if !ok || r.s.deletedPages[id] {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPages) ListByBook(_ context.Context, bookID int64) ([]*models.Page, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("pages.ListByBook"); err != nil {
		return nil, err
	}
	out := make([]*models.Page, 0)
	for id, p := range r.s.pages {
		if p.BookID == bookID && !r.s.deletedPages[id] {
			cp := *p
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *models.Page) int { return a.PageNumber - b.PageNumber })
	return out, nil
}

func (r *memPages) UpdateContent(_ context.Context, id int64, content string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.pages[id]
	if !ok || r.s.deletedPages[id] {
		return common.ErrorNotFound
	}
	p.Content = content
	p.ModifiedAt = r.s.tick()
	return nil
}

func (r *memPages) SoftDelete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.pages[id]; !ok || r.s.deletedPages[id] {
		return common.ErrorNotFound
	}
	r.s.deletedPages[id] = true
	return nil
}

type memCreds struct{ s *memStore }

func (r *memCreds) Create(_ context.Context, c *models.Credential) (*models.Credential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.id()
	c.CreatedAt = r.s.tick()
	cp := *c
	r.s.creds[c.ID] = &cp
	return c, nil
}

func (r *memCreds) GetByID(_ context.Context, id int64) (*models.Credential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.creds[id]
	if !ok || r.s.deletedCreds[id] {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCreds) filter(keep func(id int64, c *models.Credential) bool, newestFirst bool) []*models.Credential {
	out := make([]*models.Credential, 0)
	for id, c := range r.s.creds {
		if keep(id, c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *models.Credential) int {
		if newestFirst {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
		return int(a.ID - b.ID)
	})
	return out
}

func (r *memCreds) ListByUser(_ context.Context, userID int64) ([]*models.Credential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(id int64, c *models.Credential) bool {
		return c.UserID == userID && !r.s.deletedCreds[id]
	}, true), nil
}

func (r *memCreds) FindActive(_ context.Context, userID int64) ([]*models.Credential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("credentials.FindActive"); err != nil {
		return nil, err
	}
	return r.filter(func(id int64, c *models.Credential) bool {
		return c.UserID == userID && c.IsActive && !r.s.deletedCreds[id]
	}, true), nil
}

func (r *memCreds) ListByEncoding(_ context.Context, v models.EncodingVersion) ([]*models.Credential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(_ int64, c *models.Credential) bool { return c.EncodingVersion == v }, false), nil
}

func (r *memCreds) Update(_ context.Context, c *models.Credential) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.creds[c.ID]
	if !ok || r.s.deletedCreds[c.ID] {
		return common.ErrorNotFound
	}
	stored.Provider, stored.Label, stored.Model, stored.IsActive = c.Provider, c.Label, c.Model, c.IsActive
	return nil
}

func (r *memCreds) SoftDelete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.creds[id]; !ok || r.s.deletedCreds[id] {
		return common.ErrorNotFound
	}
	r.s.deletedCreds[id] = true
	return nil
}

func (r *memCreds) UpdateSecret(_ context.Context, id int64, apiKey string, v models.EncodingVersion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("credentials.UpdateSecret"); err != nil {
		return err
	}
	c, ok := r.s.creds[id]
	if !ok {
		return common.ErrorNotFound
	}
	c.APIKey, c.EncodingVersion = apiKey, v
	return nil
}

// memBookShares mirrors the single-statement upsert: the (book, sharer)
// pair is unique and an existing token is never replaced.
type memBookShares struct{ s *memStore }

func (r *memBookShares) Upsert(_ context.Context, share *models.BookShare) (*models.ShareInfo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("bookshares.Upsert"); err != nil {
		return nil, err
	}
	snapshot := slices.Clone(share.PagesSnapshot)
	for _, row := range r.s.bookShares {
		if row.share.BookID == share.BookID && row.share.SharedBy == share.SharedBy {
			row.share.PagesSnapshot = snapshot
			row.share.IsActive = true
			row.deleted = false
			row.share.ModifiedAt = r.s.tick()
			return &models.ShareInfo{ID: row.share.ID, ShareToken: row.share.Token, IsActive: true, CreatedAt: row.share.CreatedAt}, nil
		}
	}
	row := &bookShareRow{share: *share}
	row.share.ID = r.s.id()
	row.share.IsActive = true
	row.share.PagesSnapshot = snapshot
	row.share.CreatedAt = r.s.tick()
	r.s.bookShares = append(r.s.bookShares, row)
	return &models.ShareInfo{ID: row.share.ID, ShareToken: row.share.Token, IsActive: true, CreatedAt: row.share.CreatedAt}, nil
}

func (r *memBookShares) Deactivate(_ context.Context, bookID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range r.s.bookShares {
		if row.share.BookID == bookID && row.share.SharedBy == userID && row.share.IsActive && !row.deleted {
			row.share.IsActive = false
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r *memBookShares) FindPublic(_ context.Context, token uuid.UUID) (*models.PublicBook, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range r.s.bookShares {
		if row.share.Token != token || !row.share.IsActive || row.deleted || r.s.deletedBooks[row.share.BookID] {
			continue
		}
		b := r.s.books[row.share.BookID]
		return &models.PublicBook{
			ID:          row.share.ID,
			Title:       b.Title,
			Description: b.Description,
			Year:        b.Year,
			Status:      b.Status,
			Pages:       slices.Clone(row.share.PagesSnapshot),
		}, nil
	}
	return nil, common.ErrorNotFound
}

type memPageShares struct{ s *memStore }

func (r *memPageShares) Upsert(_ context.Context, share *models.PageShare) (*models.ShareInfo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("pageshares.Upsert"); err != nil {
		return nil, err
	}
	for _, row := range r.s.pageShares {
		if row.share.PageID == share.PageID && row.share.SharedBy == share.SharedBy {
			row.share.ContentSnapshot = share.ContentSnapshot
			row.share.IsActive = true
			row.deleted = false
			return &models.ShareInfo{ID: row.share.ID, ShareToken: row.share.Token, IsActive: true, CreatedAt: row.share.CreatedAt}, nil
		}
	}
	row := &pageShareRow{share: *share}
	row.share.ID = r.s.id()
	row.share.IsActive = true
	row.share.CreatedAt = r.s.tick()
	row.share.ModifiedAt = row.share.CreatedAt
	r.s.pageShares = append(r.s.pageShares, row)
	return &models.ShareInfo{ID: row.share.ID, ShareToken: row.share.Token, IsActive: true, CreatedAt: row.share.CreatedAt}, nil
}

func (r *memPageShares) Deactivate(_ context.Context, pageID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range r.s.pageShares {
		if row.share.PageID == pageID && row.share.SharedBy == userID && row.share.IsActive && !row.deleted {
			row.share.IsActive = false
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r *memPageShares) FindPublic(_ context.Context, token uuid.UUID) (*models.PublicPage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range r.s.pageShares {
		if row.share.Token != token || !row.share.IsActive || row.deleted || r.s.deletedPages[row.share.PageID] {
			continue
		}
		p := r.s.pages[row.share.PageID]
		b := r.s.books[p.BookID]
		return &models.PublicPage{
			ID:           row.share.ID,
			Content:      row.share.ContentSnapshot,
			PageNumber:   p.PageNumber,
			BookTitle:    b.Title,
			BookIsPublic: b.IsPublished(),
			CreatedAt:    row.share.CreatedAt,
			ModifiedAt:   row.share.ModifiedAt,
		}, nil
	}
	return nil, common.ErrorNotFound
}

type memNotifications struct{ s *memStore }

func (r *memNotifications) Create(_ context.Context, n *models.Notification) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("notifications.Create"); err != nil {
		return nil, err
	}
	n.ID = r.s.id()
	n.CreatedAt = r.s.tick()
	cp := *n
	r.s.notes = append(r.s.notes, &cp)
	return n, nil
}

func (r *memNotifications) ListByUser(_ context.Context, userID int64) ([]*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Notification, 0)
	for i := len(r.s.notes) - 1; i >= 0; i-- {
		if r.s.notes[i].UserID == userID && !r.s.deletedNotes[r.s.notes[i].ID] {
			cp := *r.s.notes[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memNotifications) MarkRead(_ context.Context, id, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notes {
		if n.ID == id && n.UserID == userID && !r.s.deletedNotes[id] {
			n.IsRead = true
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r *memNotifications) MarkAllRead(_ context.Context, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("notifications.MarkAllRead"); err != nil {
		return 0, err
	}
	var changed int64
	for _, n := range r.s.notes {
		if n.UserID == userID && !n.IsRead && !r.s.deletedNotes[n.ID] {
			n.IsRead = true
			changed++
		}
	}
	return changed, nil
}

func (r *memNotifications) SoftDelete(_ context.Context, id, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notes {
		if n.ID == id && n.UserID == userID && !r.s.deletedNotes[id] {
			r.s.deletedNotes[id] = true
			return nil
		}
	}
	return common.ErrorNotFound
}

type memSettings struct{ s *memStore }

func (r *memSettings) GetOrCreate(_ context.Context, userID int64) (*models.UserSettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("settings.GetOrCreate"); err != nil {
		return nil, err
	}
	st, ok := r.s.settings[userID]
	if !ok {
		st = models.DefaultUserSettings(userID)
		st.ID = r.s.id()
		r.s.settings[userID] = st
	}
	cp := *st
	return &cp, nil
}

func (r *memSettings) Update(_ context.Context, st *models.UserSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("settings.Update"); err != nil {
		return err
	}
	if _, ok := r.s.settings[st.UserID]; !ok {
		return common.ErrorNotFound
	}
	cp := *st
	cp.ModifiedAt = r.s.tick()
	r.s.settings[st.UserID] = &cp
	return nil
}

// newLooseTxDB returns a mock database that accepts any number of
// transactions, committed or rolled back, in any order.
func newLooseTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	db.SetMaxOpenConns(1)
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 64; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}
	return db
}
