package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/doccoon/internal/common"
	"github.com/dmitrijs2005/doccoon/internal/cryptox"
	"github.com/dmitrijs2005/doccoon/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVault(t *testing.T, secret string) *cryptox.Vault {
	t.Helper()
	v, err := cryptox.NewVault([]byte(secret), cryptox.KDFParams{Salt: cryptox.SaltFromPhrase("test-salt"), Iterations: 1000})
	require.NoError(t, err)
	return v
}

func newCredentialService(t *testing.T, store *memStore, vault *cryptox.Vault) *CredentialService {
	t.Helper()
	return NewCredentialService(newLooseTxDB(t), &memRepoManager{s: store}, vault, discardLogger())
}

func ptr[T any](v T) *T { return &v }

func TestCredentialService_CreateEncryptsAndMasks(t *testing.T) {
	store := newMemStore()
	vault := testVault(t, "root")
	svc := newCredentialService(t, store, vault)

	view, err := svc.Create(context.Background(), alice, CredentialInput{
		Provider: " OpenAI ",
		Label:    "work",
		APIKey:   "sk-abcdefghijklmnop",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProviderOpenAI, view.Provider)
	assert.Equal(t, models.DefaultOpenAIModel, view.Model)
	assert.Equal(t, "sk-a...mnop", view.MaskedKey)
	assert.True(t, view.IsActive)

	stored := store.creds[view.ID]
	assert.Equal(t, models.EncodingVaultV1, stored.EncodingVersion)
	assert.True(t, cryptox.IsToken(stored.APIKey))
	assert.NotContains(t, stored.APIKey, "abcdefghijklmnop")

	plain, err := vault.Decrypt(stored.APIKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-abcdefghijklmnop", plain)
}

func TestCredentialService_CreateValidation(t *testing.T) {
	svc := newCredentialService(t, newMemStore(), testVault(t, "root"))

	tests := []struct {
		name string
		in   CredentialInput
	}{
		{"unknown provider", CredentialInput{Provider: "anthropic", APIKey: "k"}},
		{"missing key", CredentialInput{Provider: "openai", APIKey: "   "}},
		{"model of other provider", CredentialInput{Provider: "openai", APIKey: "k", Model: "gemini-2.5-pro"}},
		{"unknown model", CredentialInput{Provider: "gemini", APIKey: "k", Model: "gemini-0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), alice, tt.in)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestCredentialService_ListMasksEveryKey(t *testing.T) {
	store := newMemStore()
	vault := testVault(t, "root")
	svc := newCredentialService(t, store, vault)
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, CredentialInput{Provider: "gemini", APIKey: "AIzaSyLongGeminiKey1234"})
	require.NoError(t, err)
	legacy, err := svc.Create(ctx, alice, CredentialInput{Provider: "openai", APIKey: "placeholder-key"})
	require.NoError(t, err)
	store.creds[legacy.ID].APIKey = "sk-legacy-plaintext-9999"
	store.creds[legacy.ID].EncodingVersion = models.EncodingPlaintext

	broken, err := svc.Create(ctx, alice, CredentialInput{Provider: "openai", APIKey: "another-key-123"})
	require.NoError(t, err)
	store.creds[broken.ID].APIKey = cryptox.TokenPrefix + "garbage"

	_, err = svc.Create(ctx, bob, CredentialInput{Provider: "openai", APIKey: "bob-key-123456"})
	require.NoError(t, err)

	views, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, views, 3)

	masked := map[int64]string{}
	for _, v := range views {
		masked[v.ID] = v.MaskedKey
	}
	assert.Equal(t, "****", masked[broken.ID])
	assert.Equal(t, "sk-l...9999", masked[legacy.ID])
}

func TestCredentialService_Update(t *testing.T) {
	store := newMemStore()
	vault := testVault(t, "root")
	svc := newCredentialService(t, store, vault)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice, CredentialInput{Provider: "openai", APIKey: "sk-original-key-0001", Model: "gpt-4o"})
	require.NoError(t, err)

	t.Run("provider change resets model", func(t *testing.T) {
		view, err := svc.Update(ctx, alice, created.ID, CredentialPatch{Provider: ptr("gemini")})
		require.NoError(t, err)
		assert.Equal(t, models.ProviderGemini, view.Provider)
		assert.Equal(t, models.DefaultGeminiModel, view.Model)
		assert.Equal(t, "sk-o...0001", view.MaskedKey)
	})

	t.Run("explicit model", func(t *testing.T) {
		view, err := svc.Update(ctx, alice, created.ID, CredentialPatch{Model: ptr("gemini-2.5-pro"), IsActive: ptr(false)})
		require.NoError(t, err)
		assert.Equal(t, "gemini-2.5-pro", view.Model)
		assert.False(t, view.IsActive)
	})

	t.Run("model must match provider", func(t *testing.T) {
		_, err := svc.Update(ctx, alice, created.ID, CredentialPatch{Model: ptr("gpt-4o")})
		assert.ErrorIs(t, err, common.ErrorValidation)
	})

	t.Run("new secret is encrypted", func(t *testing.T) {
		view, err := svc.Update(ctx, alice, created.ID, CredentialPatch{APIKey: ptr("AIza-replacement-7777")})
		require.NoError(t, err)
		assert.Equal(t, "AIza...7777", view.MaskedKey)

		plain, err := vault.Decrypt(store.creds[created.ID].APIKey)
		require.NoError(t, err)
		assert.Equal(t, "AIza-replacement-7777", plain)
	})

	t.Run("blank secret keeps the stored one", func(t *testing.T) {
		before := store.creds[created.ID].APIKey
		_, err := svc.Update(ctx, alice, created.ID, CredentialPatch{APIKey: ptr("  "), Label: ptr("renamed")})
		require.NoError(t, err)
		assert.Equal(t, before, store.creds[created.ID].APIKey)
		assert.Equal(t, "renamed", store.creds[created.ID].Label)
	})

	t.Run("foreign credential", func(t *testing.T) {
		_, err := svc.Update(ctx, bob, created.ID, CredentialPatch{Label: ptr("mine")})
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestCredentialService_Delete(t *testing.T) {
	store := newMemStore()
	svc := newCredentialService(t, store, testVault(t, "root"))
	ctx := context.Background()

	created, err := svc.Create(ctx, alice, CredentialInput{Provider: "openai", APIKey: "sk-delete-me-1234"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, bob, created.ID), common.ErrorNotFound)
	require.NoError(t, svc.Delete(ctx, alice, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, alice, created.ID), common.ErrorNotFound)

	views, err := svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestCredentialService_ActiveKey(t *testing.T) {
	ctx := context.Background()

	t.Run("newest active key wins", func(t *testing.T) {
		store := newMemStore()
		svc := newCredentialService(t, store, testVault(t, "root"))
		_, err := svc.Create(ctx, alice, CredentialInput{Provider: "openai", APIKey: "sk-older-key-0001"})
		require.NoError(t, err)
		newest, err := svc.Create(ctx, alice, CredentialInput{Provider: "gemini", APIKey: "AIza-newer-key-0002", Model: "gemini-2.0-flash"})
		require.NoError(t, err)
		_, err = svc.Create(ctx, alice, CredentialInput{Provider: "openai", APIKey: "sk-inactive-0003"})
		require.NoError(t, err)
		for id, c := range store.creds {
			if c.CreatedAt.After(store.creds[newest.ID].CreatedAt) {
				store.creds[id].IsActive = false
			}
		}

		key, err := svc.ActiveKey(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, &ProviderKey{Provider: models.ProviderGemini, Model: "gemini-2.0-flash", APIKey: "AIza-newer-key-0002"}, key)
	})

	t.Run("no key", func(t *testing.T) {
		svc := newCredentialService(t, newMemStore(), testVault(t, "root"))
		_, err := svc.ActiveKey(ctx, alice)
		assert.ErrorIs(t, err, common.ErrNoAPIKey)
	})

	t.Run("untagged token on a legacy row is decrypted", func(t *testing.T) {
		store := newMemStore()
		vault := testVault(t, "root")
		svc := newCredentialService(t, store, vault)
		token, err := vault.Encrypt("sk-encrypted-untagged-0001")
		require.NoError(t, err)
		seedCredential(store, alice, token, models.EncodingPlaintext)

		key, err := svc.ActiveKey(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, "sk-encrypted-untagged-0001", key.APIKey)

		views, err := svc.List(ctx, alice)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "sk-e...0001", views[0].MaskedKey)
	})

	t.Run("unreadable newest key is not skipped over", func(t *testing.T) {
		store := newMemStore()
		svc := newCredentialService(t, store, testVault(t, "root"))
		_, err := svc.Create(ctx, alice, CredentialInput{Provider: "openai", APIKey: "sk-good-key-0001"})
		require.NoError(t, err)
		bad, err := svc.Create(ctx, alice, CredentialInput{Provider: "openai", APIKey: "sk-bad-key-0002"})
		require.NoError(t, err)
		store.creds[bad.ID].APIKey = cryptox.TokenPrefix + "corrupted"

		_, err = svc.ActiveKey(ctx, alice)
		assert.ErrorIs(t, err, common.ErrNoAPIKey)
	})

	t.Run("key under another secret", func(t *testing.T) {
		store := newMemStore()
		_, err := newCredentialService(t, store, testVault(t, "old")).
			Create(ctx, alice, CredentialInput{Provider: "openai", APIKey: "sk-old-secret-0001"})
		require.NoError(t, err)

		_, err = newCredentialService(t, store, testVault(t, "new")).ActiveKey(ctx, alice)
		assert.ErrorIs(t, err, common.ErrNoAPIKey)
	})

	t.Run("repository error", func(t *testing.T) {
		store := newMemStore()
		store.errs["credentials.FindActive"] = errBoom{}
		_, err := newCredentialService(t, store, testVault(t, "root")).ActiveKey(ctx, alice)
		assert.ErrorIs(t, err, errBoom{})
	})
}

func seedCredential(store *memStore, userID int64, apiKey string, v models.EncodingVersion) int64 {
	store.mu.Lock()
	defer store.mu.Unlock()
	c := &models.Credential{
		ID:              store.id(),
		UserID:          userID,
		Provider:        models.ProviderOpenAI,
		APIKey:          apiKey,
		EncodingVersion: v,
		Model:           models.DefaultOpenAIModel,
		IsActive:        true,
		CreatedAt:       store.tick(),
	}
	store.creds[c.ID] = c
	return c.ID
}

func TestCredentialService_EncryptLegacy(t *testing.T) {
	store := newMemStore()
	vault := testVault(t, "root")
	svc := newCredentialService(t, store, vault)
	ctx := context.Background()

	token, err := vault.Encrypt("sk-already-encrypted")
	require.NoError(t, err)

	plainID := seedCredential(store, alice, "sk-plain-0001", models.EncodingPlaintext)
	emptyID := seedCredential(store, alice, "", models.EncodingPlaintext)
	tokenID := seedCredential(store, alice, token, models.EncodingPlaintext)
	bogusID := seedCredential(store, alice, cryptox.TokenPrefix+"not-really", models.EncodingPlaintext)
	deletedID := seedCredential(store, bob, "sk-deleted-0002", models.EncodingPlaintext)
	store.deletedCreds[deletedID] = true

	report, err := svc.EncryptLegacy(ctx)
	require.NoError(t, err)
	assert.Equal(t, BatchReport{Scanned: 5, Updated: 2, Skipped: 2, Failed: 1}, report)

	for _, id := range []int64{plainID, deletedID} {
		assert.Equal(t, models.EncodingVaultV1, store.creds[id].EncodingVersion)
		assert.True(t, cryptox.IsToken(store.creds[id].APIKey))
	}
	plain, err := vault.Decrypt(store.creds[plainID].APIKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-plain-0001", plain)

	assert.Equal(t, "", store.creds[emptyID].APIKey)
	assert.Equal(t, models.EncodingVaultV1, store.creds[emptyID].EncodingVersion)
	assert.Equal(t, token, store.creds[tokenID].APIKey)
	assert.Equal(t, models.EncodingVaultV1, store.creds[tokenID].EncodingVersion)
	assert.Equal(t, models.EncodingPlaintext, store.creds[bogusID].EncodingVersion)

	again, err := svc.EncryptLegacy(ctx)
	require.NoError(t, err)
	assert.Equal(t, BatchReport{Scanned: 1, Failed: 1}, again)
}

func TestCredentialService_DecryptAllRoundTrip(t *testing.T) {
	store := newMemStore()
	vault := testVault(t, "root")
	svc := newCredentialService(t, store, vault)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice, CredentialInput{Provider: "openai", APIKey: "sk-roundtrip-0001"})
	require.NoError(t, err)
	badID := seedCredential(store, alice, cryptox.TokenPrefix+"junk", models.EncodingVaultV1)

	report, err := svc.DecryptAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, BatchReport{Scanned: 2, Updated: 1, Failed: 1}, report)
	assert.Equal(t, "sk-roundtrip-0001", store.creds[created.ID].APIKey)
	assert.Equal(t, models.EncodingPlaintext, store.creds[created.ID].EncodingVersion)
	assert.Equal(t, models.EncodingVaultV1, store.creds[badID].EncodingVersion)
	store.deletedCreds[badID] = true

	_, err = svc.EncryptLegacy(ctx)
	require.NoError(t, err)
	key, err := svc.ActiveKey(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "sk-roundtrip-0001", key.APIKey)
}

func TestCredentialService_Rotate(t *testing.T) {
	store := newMemStore()
	oldVault := testVault(t, "old-secret")
	newVault := testVault(t, "new-secret")
	svc := newCredentialService(t, store, oldVault)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice, CredentialInput{Provider: "openai", APIKey: "sk-rotate-me-0001"})
	require.NoError(t, err)
	seedCredential(store, alice, "", models.EncodingVaultV1)

	_, err = svc.Rotate(ctx, nil)
	require.Error(t, err)

	report, err := svc.Rotate(ctx, newVault)
	require.NoError(t, err)
	assert.Equal(t, BatchReport{Scanned: 2, Updated: 2}, report)

	_, err = oldVault.Decrypt(store.creds[created.ID].APIKey)
	assert.ErrorIs(t, err, cryptox.ErrDecryption)

	key, err := newCredentialService(t, store, newVault).ActiveKey(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "sk-rotate-me-0001", key.APIKey)
}

func TestCredentialService_BatchKeepsGoingOnWriteErrors(t *testing.T) {
	store := newMemStore()
	svc := newCredentialService(t, store, testVault(t, "root"))
	seedCredential(store, alice, "sk-plain-0001", models.EncodingPlaintext)
	seedCredential(store, alice, "sk-plain-0002", models.EncodingPlaintext)
	store.errs["credentials.UpdateSecret"] = errBoom{}

	report, err := svc.EncryptLegacy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BatchReport{Scanned: 2, Failed: 2}, report)
	assert.Equal(t, "scanned=2 updated=0 skipped=0 failed=2", report.String())
}

func TestCredentialService_BatchStopsOnCancel(t *testing.T) {
	store := newMemStore()
	svc := newCredentialService(t, store, testVault(t, "root"))
	seedCredential(store, alice, "sk-plain-0001", models.EncodingPlaintext)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.EncryptLegacy(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.EncodingPlaintext, store.creds[1].EncodingVersion)
}
