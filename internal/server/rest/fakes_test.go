package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/doccoon/internal/common"
	"github.com/dmitrijs2005/doccoon/internal/logging"
	"github.com/dmitrijs2005/doccoon/internal/server/models"
	"github.com/dmitrijs2005/doccoon/internal/server/services"
	"github.com/stretchr/testify/require"
)

const (
	validToken   = "good-token"
	expiredToken = "old-token"
	testUserID   = int64(7)
)

type fakeUsers struct {
	UserService
	register       func(email, password, firstName string) (*models.User, error)
	login          func(email, password string) (*services.TokenPair, error)
	refresh        func(token string) (*services.TokenPair, error)
	profile        func(userID int64) (*models.User, error)
	updateProfile  func(userID int64, patch services.ProfilePatch) (*models.User, error)
	changePassword func(userID int64, oldPassword, newPassword string) error
	deleteAccount  func(userID int64) error
}

func (f *fakeUsers) Authenticate(token string) (int64, error) {
	switch token {
	case validToken:
		return testUserID, nil
	case expiredToken:
		return 0, common.ErrTokenExpired
	}
	return 0, common.ErrInvalidToken
}

func (f *fakeUsers) Register(_ context.Context, email, password, firstName string) (*models.User, error) {
	return f.register(email, password, firstName)
}

func (f *fakeUsers) Login(_ context.Context, email, password string) (*services.TokenPair, error) {
	return f.login(email, password)
}

func (f *fakeUsers) RefreshToken(_ context.Context, token string) (*services.TokenPair, error) {
	return f.refresh(token)
}

func (f *fakeUsers) Profile(_ context.Context, userID int64) (*models.User, error) {
	return f.profile(userID)
}

func (f *fakeUsers) UpdateProfile(_ context.Context, userID int64, patch services.ProfilePatch) (*models.User, error) {
	return f.updateProfile(userID, patch)
}

func (f *fakeUsers) ChangePassword(_ context.Context, userID int64, oldPassword, newPassword string) error {
	return f.changePassword(userID, oldPassword, newPassword)
}

func (f *fakeUsers) DeleteAccount(_ context.Context, userID int64) error {
	return f.deleteAccount(userID)
}

type fakeBooks struct {
	BookService
	get       func(userID, bookID int64) (*models.Book, error)
	create    func(userID int64, in services.BookInput) (*models.Book, error)
	page      func(userID, bookID, pageID int64, content string) (*models.Page, error)
	listPages func(userID, bookID int64) ([]*models.Page, error)
	getPage   func(userID, bookID, pageID int64) (*models.Page, error)
}

func (f *fakeBooks) GetBook(_ context.Context, userID, bookID int64) (*models.Book, error) {
	return f.get(userID, bookID)
}

func (f *fakeBooks) CreateBook(_ context.Context, userID int64, in services.BookInput) (*models.Book, error) {
	return f.create(userID, in)
}

func (f *fakeBooks) UpdatePage(_ context.Context, userID, bookID, pageID int64, content string) (*models.Page, error) {
	return f.page(userID, bookID, pageID, content)
}

func (f *fakeBooks) ListPages(_ context.Context, userID, bookID int64) ([]*models.Page, error) {
	return f.listPages(userID, bookID)
}

func (f *fakeBooks) GetPage(_ context.Context, userID, bookID, pageID int64) (*models.Page, error) {
	return f.getPage(userID, bookID, pageID)
}

type fakeSharing struct {
	SharingService
	shareBook  func(bookID, userID int64) (*models.ShareInfo, error)
	revokeBook func(bookID, userID int64) error
	sharePage  func(bookID, pageID, userID int64) (*models.ShareInfo, error)
	publicBook func(token string) (*models.PublicBook, error)
	publicPage func(token string) (*models.PublicPage, error)
	exportBook func(token string) (string, error)
}

func (f *fakeSharing) CreateOrRefreshBookShare(_ context.Context, bookID, userID int64) (*models.ShareInfo, error) {
	return f.shareBook(bookID, userID)
}

func (f *fakeSharing) RevokeBookShare(_ context.Context, bookID, userID int64) error {
	return f.revokeBook(bookID, userID)
}

func (f *fakeSharing) CreateOrRefreshPageShare(_ context.Context, bookID, pageID, userID int64) (*models.ShareInfo, error) {
	return f.sharePage(bookID, pageID, userID)
}

func (f *fakeSharing) ResolvePublicBook(_ context.Context, token string) (*models.PublicBook, error) {
	return f.publicBook(token)
}

func (f *fakeSharing) ResolvePublicPage(_ context.Context, token string) (*models.PublicPage, error) {
	return f.publicPage(token)
}

func (f *fakeSharing) ExportPublicBook(_ context.Context, token string) (string, error) {
	return f.exportBook(token)
}

type fakeCredentials struct {
	CredentialService
	create func(userID int64, in services.CredentialInput) (*models.CredentialView, error)
	update func(userID, id int64, patch services.CredentialPatch) (*models.CredentialView, error)
}

func (f *fakeCredentials) Create(_ context.Context, userID int64, in services.CredentialInput) (*models.CredentialView, error) {
	return f.create(userID, in)
}

func (f *fakeCredentials) Update(_ context.Context, userID, id int64, patch services.CredentialPatch) (*models.CredentialView, error) {
	return f.update(userID, id, patch)
}

type fakeAI struct {
	refine func(userID int64, req services.RefineRequest) (*services.RefineResult, error)
}

func (f *fakeAI) Refine(_ context.Context, userID int64, req services.RefineRequest) (*services.RefineResult, error) {
	return f.refine(userID, req)
}

type fakeNotifications struct {
	NotificationService
	markRead    func(userID, id int64) error
	markAllRead func(userID int64) (int64, error)
	remove      func(userID, id int64) error
}

func (f *fakeNotifications) MarkRead(_ context.Context, userID, id int64) error {
	return f.markRead(userID, id)
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, userID int64) (int64, error) {
	return f.markAllRead(userID)
}

func (f *fakeNotifications) Delete(_ context.Context, userID, id int64) error {
	return f.remove(userID, id)
}

type fakeSettings struct {
	get    func(userID int64) (*models.UserSettings, error)
	update func(userID int64, patch services.SettingsPatch) (*models.UserSettings, error)
}

func (f *fakeSettings) Get(_ context.Context, userID int64) (*models.UserSettings, error) {
	return f.get(userID)
}

func (f *fakeSettings) Update(_ context.Context, userID int64, patch services.SettingsPatch) (*models.UserSettings, error) {
	return f.update(userID, patch)
}

func discardLogger() logging.Logger {
	return logging.NewJSONLogger(io.Discard, "error")
}

func newTestRouter(svc Services) http.Handler {
	limits := RateLimits{Public: 1000, Auth: 1000, Sharing: 1000, AI: 1000}
	return NewRouter(svc, limits, discardLogger())
}

type response struct {
	Message string          `json:"message"`
	Results json.RawMessage `json:"results"`
}

func do(t *testing.T, h http.Handler, method, path, token, body string) (int, response) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp response
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}
