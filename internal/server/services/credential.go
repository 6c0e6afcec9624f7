package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/doccoon/internal/common"
	"github.com/dmitrijs2005/doccoon/internal/cryptox"
	"github.com/dmitrijs2005/doccoon/internal/dbx"
	"github.com/dmitrijs2005/doccoon/internal/logging"
	"github.com/dmitrijs2005/doccoon/internal/server/models"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/repomanager"
)

// CredentialInput is the body of a create request.
type CredentialInput struct {
	Provider string `json:"provider"`
	Label    string `json:"label"`
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
}

// CredentialPatch is a partial update. A non-empty APIKey replaces the
// stored secret.
type CredentialPatch struct {
	Provider *string `json:"provider"`
	Label    *string `json:"label"`
	APIKey   *string `json:"api_key"`
	Model    *string `json:"model"`
	IsActive *bool   `json:"is_active"`
}

// ProviderKey is a decrypted key ready for a single provider call.
type ProviderKey struct {
	Provider models.Provider
	Model    string
	APIKey   string
}

// BatchReport summarises a bulk pass over stored credentials. Skipped rows
// kept their stored value; Failed rows were left untouched.
type BatchReport struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

func (r BatchReport) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d failed=%d", r.Scanned, r.Updated, r.Skipped, r.Failed)
}

// CredentialService stores users' AI provider keys encrypted with the vault
// and never returns them in clear except through ActiveKey.
type CredentialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	vault       *cryptox.Vault
	log         logging.Logger
}

func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager, vault *cryptox.Vault, log logging.Logger) *CredentialService {
	return &CredentialService{db: db, repomanager: m, vault: vault, log: log.With("module", "credentials")}
}

func (s *CredentialService) List(ctx context.Context, userID int64) ([]*models.CredentialView, error) {
	creds, err := s.repomanager.Credentials(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]*models.CredentialView, 0, len(creds))
	for _, c := range creds {
		views = append(views, s.view(ctx, c))
	}
	return views, nil
}

func (s *CredentialService) Create(ctx context.Context, userID int64, in CredentialInput) (*models.CredentialView, error) {
	provider := models.Provider(strings.ToLower(strings.TrimSpace(in.Provider)))
	if !provider.Valid() {
		return nil, fmt.Errorf("%w: unknown provider %q", common.ErrorValidation, in.Provider)
	}
	apiKey := strings.TrimSpace(in.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: api_key is required", common.ErrorValidation)
	}
	model, err := modelFor(provider, in.Model)
	if err != nil {
		return nil, err
	}

	token, err := s.vault.Encrypt(apiKey)
	if err != nil {
		return nil, common.ErrorInternal
	}

	c, err := s.repomanager.Credentials(s.db).Create(ctx, &models.Credential{
		UserID:          userID,
		Provider:        provider,
		Label:           strings.TrimSpace(in.Label),
		APIKey:          token,
		EncodingVersion: models.EncodingVaultV1,
		Model:           model,
		IsActive:        true,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "credential stored", "credential_id", c.ID, "user_id", userID, "provider", provider)
	return viewOf(c, apiKey), nil
}

func (s *CredentialService) Update(ctx context.Context, userID, id int64, patch CredentialPatch) (*models.CredentialView, error) {
	var (
		c     *models.Credential
		plain string
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Credentials(tx)

		var err error
		c, err = s.own(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		if patch.Provider != nil {
			p := models.Provider(strings.ToLower(strings.TrimSpace(*patch.Provider)))
			if !p.Valid() {
				return fmt.Errorf("%w: unknown provider %q", common.ErrorValidation, *patch.Provider)
			}
			if p != c.Provider && patch.Model == nil {
				c.Model = p.DefaultModel()
			}
			c.Provider = p
		}
		if patch.Label != nil {
			c.Label = strings.TrimSpace(*patch.Label)
		}
		if patch.Model != nil {
			c.Model, err = modelFor(c.Provider, *patch.Model)
			if err != nil {
				return err
			}
		}
		if patch.IsActive != nil {
			c.IsActive = *patch.IsActive
		}
		if err := repo.Update(ctx, c); err != nil {
			return err
		}

		if patch.APIKey != nil && strings.TrimSpace(*patch.APIKey) != "" {
			plain = strings.TrimSpace(*patch.APIKey)
			token, err := s.vault.Encrypt(plain)
			if err != nil {
				return common.ErrorInternal
			}
			if err := repo.UpdateSecret(ctx, c.ID, token, models.EncodingVaultV1); err != nil {
				return err
			}
			c.APIKey = token
			c.EncodingVersion = models.EncodingVaultV1
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if plain != "" {
		s.log.Info(ctx, "credential secret replaced", "credential_id", c.ID, "user_id", userID)
		return viewOf(c, plain), nil
	}
	return s.view(ctx, c), nil
}

func (s *CredentialService) Delete(ctx context.Context, userID, id int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.own(ctx, tx, userID, id); err != nil {
			return err
		}
		return s.repomanager.Credentials(tx).SoftDelete(ctx, id)
	})
}

// ActiveKey returns the user's newest active key in clear. A key that is
// empty or cannot be decrypted counts as absent and yields
// common.ErrNoAPIKey.
func (s *CredentialService) ActiveKey(ctx context.Context, userID int64) (*ProviderKey, error) {
	creds, err := s.repomanager.Credentials(s.db).FindActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(creds) == 0 {
		return nil, common.ErrNoAPIKey
	}

	c := creds[0]
	plain, err := s.plaintext(c)
	if err != nil {
		s.log.Warn(ctx, "active credential unreadable", "credential_id", c.ID, "error", err)
		return nil, common.ErrNoAPIKey
	}
	if plain == "" {
		return nil, common.ErrNoAPIKey
	}
	return &ProviderKey{Provider: c.Provider, Model: c.Model, APIKey: plain}, nil
}

// EncryptLegacy encrypts every plaintext row in place. Empty values and
// values that already decrypt as vault tokens are only retagged. A row that
// looks like a token but does not decrypt is left alone and counted as
// failed.
func (s *CredentialService) EncryptLegacy(ctx context.Context) (BatchReport, error) {
	return s.batch(ctx, models.EncodingPlaintext, func(c *models.Credential) (string, bool, error) {
		if c.APIKey == "" {
			return "", false, nil
		}
		if cryptox.IsToken(c.APIKey) {
			if _, err := s.vault.Decrypt(c.APIKey); err != nil {
				return "", false, fmt.Errorf("token-shaped value does not decrypt: %w", err)
			}
			return c.APIKey, false, nil
		}
		token, err := s.vault.Encrypt(c.APIKey)
		return token, true, err
	}, models.EncodingVaultV1)
}

// DecryptAll turns every vault row back into plaintext. Rows that fail to
// decrypt are skipped and counted.
func (s *CredentialService) DecryptAll(ctx context.Context) (BatchReport, error) {
	return s.batch(ctx, models.EncodingVaultV1, func(c *models.Credential) (string, bool, error) {
		plain, err := s.vault.Decrypt(c.APIKey)
		return plain, true, err
	}, models.EncodingPlaintext)
}

// Rotate re-encrypts every vault row under next. The service keeps using its
// own vault afterwards; callers swap vaults by building a new service.
func (s *CredentialService) Rotate(ctx context.Context, next *cryptox.Vault) (BatchReport, error) {
	if next == nil {
		return BatchReport{}, errors.New("rotate: nil vault")
	}
	return s.batch(ctx, models.EncodingVaultV1, func(c *models.Credential) (string, bool, error) {
		plain, err := s.vault.Decrypt(c.APIKey)
		if err != nil {
			return "", false, err
		}
		token, err := next.Encrypt(plain)
		return token, true, err
	}, models.EncodingVaultV1)
}

// batch applies convert to every row stored with version from and writes
// the result with version to, one row at a time. convert reports whether the
// value changed; unchanged rows are retagged if the version differs.
func (s *CredentialService) batch(
	ctx context.Context,
	from models.EncodingVersion,
	convert func(c *models.Credential) (string, bool, error),
	to models.EncodingVersion,
) (BatchReport, error) {
	var report BatchReport

	repo := s.repomanager.Credentials(s.db)
	creds, err := repo.ListByEncoding(ctx, from)
	if err != nil {
		return report, err
	}

	for _, c := range creds {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++

		value, changed, err := convert(c)
		if err != nil {
			report.Failed++
			s.log.Warn(ctx, "credential skipped", "credential_id", c.ID, "error", err)
			continue
		}
		if !changed && from == to {
			report.Skipped++
			continue
		}
		if !changed {
			value = c.APIKey
		}
		if err := repo.UpdateSecret(ctx, c.ID, value, to); err != nil {
			report.Failed++
			s.log.Warn(ctx, "credential update failed", "credential_id", c.ID, "error", err)
			continue
		}
		if changed {
			report.Updated++
		} else {
			report.Skipped++
		}
	}

	s.log.Info(ctx, "credential batch finished",
		"from", int(from), "to", int(to),
		"scanned", report.Scanned, "updated", report.Updated, "skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}

func (s *CredentialService) own(ctx context.Context, db dbx.DBTX, userID, id int64) (*models.Credential, error) {
	c, err := s.repomanager.Credentials(db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

// plaintext reads the stored key. A legacy row holding a token that was
// encrypted but never tagged is decrypted; if that fails the stored value is
// the key.
func (s *CredentialService) plaintext(c *models.Credential) (string, error) {
	if c.EncodingVersion == models.EncodingPlaintext {
		if cryptox.IsToken(c.APIKey) {
			if plain, err := s.vault.Decrypt(c.APIKey); err == nil {
				return plain, nil
			}
		}
		return c.APIKey, nil
	}
	return s.vault.Decrypt(c.APIKey)
}

// view masks the key. An unreadable key is shown fully masked.
func (s *CredentialService) view(ctx context.Context, c *models.Credential) *models.CredentialView {
	plain, err := s.plaintext(c)
	if err != nil {
		s.log.Warn(ctx, "credential unreadable", "credential_id", c.ID)
		plain = ""
	}
	return viewOf(c, plain)
}

func viewOf(c *models.Credential, plain string) *models.CredentialView {
	return &models.CredentialView{
		ID:        c.ID,
		Provider:  c.Provider,
		Label:     c.Label,
		MaskedKey: cryptox.MaskKey(plain),
		Model:     c.Model,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
	}
}

// modelFor validates model against provider's list. Empty means the
// provider default.
func modelFor(p models.Provider, model string) (string, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return p.DefaultModel(), nil
	}
	if p.SupportsModel(model) {
		return model, nil
	}
	return "", fmt.Errorf("%w: model %q is not available for %s", common.ErrorValidation, model, p)
}
