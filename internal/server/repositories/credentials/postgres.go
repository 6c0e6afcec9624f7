package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/doccoon/internal/common"
	"github.com/dmitrijs2005/doccoon/internal/dbx"
	"github.com/dmitrijs2005/doccoon/internal/server/models"
)

var _ Repository = (*PostgresRepository)(nil)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const credentialColumns = `id, user_id, provider, label, api_key, encoding_version, model, is_active, created_at, modified_at`

func (r *PostgresRepository) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	query := `
		INSERT INTO ai_provider_keys (user_id, provider, label, api_key, encoding_version, model, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, modified_at
	`
	err := r.db.QueryRowContext(ctx, query,
		c.UserID, string(c.Provider), c.Label, c.APIKey, int(c.EncodingVersion), c.Model, c.IsActive,
	).Scan(&c.ID, &c.CreatedAt, &c.ModifiedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM ai_provider_keys WHERE id = $1 AND NOT is_deleted`

	c, err := scanCredential(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Credential, error) {
	query := `SELECT ` + credentialColumns + `
		FROM ai_provider_keys
		WHERE user_id = $1 AND NOT is_deleted
		ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) FindActive(ctx context.Context, userID int64) ([]*models.Credential, error) {
	query := `SELECT ` + credentialColumns + `
		FROM ai_provider_keys
		WHERE user_id = $1 AND is_active AND NOT is_deleted
		ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) ListByEncoding(ctx context.Context, v models.EncodingVersion) ([]*models.Credential, error) {
	query := `SELECT ` + credentialColumns + `
		FROM ai_provider_keys
		WHERE encoding_version = $1
		ORDER BY id`
	return r.list(ctx, query, int(v))
}

func (r *PostgresRepository) Update(ctx context.Context, c *models.Credential) error {
	query := `
		UPDATE ai_provider_keys
		SET provider = $2, label = $3, model = $4, is_active = $5, modified_at = now()
		WHERE id = $1 AND NOT is_deleted
	`
	return r.execOne(ctx, query, c.ID, string(c.Provider), c.Label, c.Model, c.IsActive)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE ai_provider_keys
		SET is_deleted = TRUE, deleted_at = now(), modified_at = now()
		WHERE id = $1 AND NOT is_deleted
	`
	return r.execOne(ctx, query, id)
}

func (r *PostgresRepository) UpdateSecret(ctx context.Context, id int64, apiKey string, v models.EncodingVersion) error {
	query := `
		UPDATE ai_provider_keys
		SET api_key = $2, encoding_version = $3, modified_at = now()
		WHERE id = $1
	`
	return r.execOne(ctx, query, id, apiKey, int(v))
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Credential, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Credential, 0)
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCredential(s scanner) (*models.Credential, error) {
	var (
		c        models.Credential
		provider string
		version  int
	)
	err := s.Scan(&c.ID, &c.UserID, &provider, &c.Label, &c.APIKey, &version, &c.Model, &c.IsActive, &c.CreatedAt, &c.ModifiedAt)
	if err != nil {
		return nil, err
	}
	c.Provider = models.Provider(provider)
	c.EncodingVersion = models.EncodingVersion(version)
	return &c, nil
}
