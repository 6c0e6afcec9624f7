package rest

import (
	"context"

	"github.com/dmitrijs2005/doccoon/internal/server/models"
	"github.com/dmitrijs2005/doccoon/internal/server/services"
)

// The handlers depend on these views of the services so that tests can
// replace any of them.

type UserService interface {
	Register(ctx context.Context, email, password, firstName string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Authenticate(accessToken string) (int64, error)
	Profile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, patch services.ProfilePatch) (*models.User, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
	DeleteAccount(ctx context.Context, userID int64) error
}

type BookService interface {
	CreateBook(ctx context.Context, userID int64, in services.BookInput) (*models.Book, error)
	GetBook(ctx context.Context, userID, bookID int64) (*models.Book, error)
	ListBooks(ctx context.Context, userID int64) ([]*models.Book, error)
	UpdateBook(ctx context.Context, userID, bookID int64, in services.BookInput) (*models.Book, error)
	DeleteBook(ctx context.Context, userID, bookID int64) error
	TogglePublish(ctx context.Context, userID, bookID int64) (*models.Book, error)
	ListPages(ctx context.Context, userID, bookID int64) ([]*models.Page, error)
	GetPage(ctx context.Context, userID, bookID, pageID int64) (*models.Page, error)
	CreatePage(ctx context.Context, userID, bookID int64, content string) (*models.Page, error)
	UpdatePage(ctx context.Context, userID, bookID, pageID int64, content string) (*models.Page, error)
	DeletePage(ctx context.Context, userID, bookID, pageID int64) error
}

type SharingService interface {
	CreateOrRefreshBookShare(ctx context.Context, bookID, userID int64) (*models.ShareInfo, error)
	CreateOrRefreshPageShare(ctx context.Context, bookID, pageID, userID int64) (*models.ShareInfo, error)
	RevokeBookShare(ctx context.Context, bookID, userID int64) error
	RevokePageShare(ctx context.Context, bookID, pageID, userID int64) error
	ResolvePublicBook(ctx context.Context, token string) (*models.PublicBook, error)
	ResolvePublicPage(ctx context.Context, token string) (*models.PublicPage, error)
	ExportPublicBook(ctx context.Context, token string) (string, error)
}

type CredentialService interface {
	List(ctx context.Context, userID int64) ([]*models.CredentialView, error)
	Create(ctx context.Context, userID int64, in services.CredentialInput) (*models.CredentialView, error)
	Update(ctx context.Context, userID, id int64, patch services.CredentialPatch) (*models.CredentialView, error)
	Delete(ctx context.Context, userID, id int64) error
}

type AIService interface {
	Refine(ctx context.Context, userID int64, req services.RefineRequest) (*services.RefineResult, error)
}

type NotificationService interface {
	List(ctx context.Context, userID int64) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, userID, id int64) error
}

type SettingsService interface {
	Get(ctx context.Context, userID int64) (*models.UserSettings, error)
	Update(ctx context.Context, userID int64, patch services.SettingsPatch) (*models.UserSettings, error)
}

// Services groups everything the router serves.
type Services struct {
	Users         UserService
	Books         BookService
	Sharing       SharingService
	Credentials   CredentialService
	AI            AIService
	Notifications NotificationService
	Settings      SettingsService
}
