package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/gateway-admin/pkg/model"
	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/secretbox"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

// Ensure CredentialsStore implements store.CredentialsStore
var _ store.CredentialsStore = (*CredentialsStore)(nil)

// CredentialsStore implements store.CredentialsStore using GORM. Secrets are
// sealed with cipher, keyed to the credential token.
type CredentialsStore struct {
	db     *gorm.DB
	cipher secretbox.SymmetricCipher
}

// NewCredentialsStore creates a new CredentialsStore
func NewCredentialsStore(db *gorm.DB, cipher secretbox.SymmetricCipher) *CredentialsStore {
	return &CredentialsStore{db: db, cipher: cipher}
}

// CreateCredential seals secret and inserts the credential.
func (s *CredentialsStore) CreateCredential(ctx context.Context, cred *store.Credential, secret []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cred.Token == "" {
		cred.Token = uuid.NewString()
	}

	var sealed []byte
	if len(secret) > 0 {
		if s.cipher == nil {
			return errors.New("no data key configured to seal credential secrets")
		}
		var err error
		sealed, err = s.cipher.Encrypt([]byte(cred.Token), secret)
		if err != nil {
			return fmt.Errorf("sealing credential secret: %w", err)
		}
	}

	row := model.Credential{
		Token:       cred.Token,
		GatewayID:   cred.GatewayID,
		OwnerID:     cred.OwnerID,
		OwnerType:   cred.OwnerType.String(),
		Name:        cred.Name,
		Username:    cred.Username,
		Type:        string(cred.Type),
		Description: cred.Description,
		Secret:      sealed,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Credential{}).Where("token = ?", row.Token).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return store.ErrCredentialExists
		}
		return tx.Create(&row).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return store.ErrCredentialExists
	}
	if err != nil {
		return err
	}
	*cred = credentialFromModel(row)
	return nil
}

// GetCredential loads credential metadata by token.
func (s *CredentialsStore) GetCredential(ctx context.Context, token string) (*store.Credential, error) {
	var row model.Credential
	err := s.db.WithContext(ctx).Omit("secret").Where("token = ?", token).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}
	cred := credentialFromModel(row)
	return &cred, nil
}

// GetCredentials loads the credentials among tokens that exist, ordered by token.
func (s *CredentialsStore) GetCredentials(ctx context.Context, tokens []string) ([]store.Credential, error) {
	if len(tokens) == 0 {
		return []store.Credential{}, nil
	}
	var rows []model.Credential
	err := s.db.WithContext(ctx).Omit("secret").Where("token IN ?", tokens).Order("token").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return credentialsFromModels(rows), nil
}

// ListCredentials lists a gateway's credentials, narrowed to ownerID when set.
func (s *CredentialsStore) ListCredentials(ctx context.Context, gatewayID, ownerID string) ([]store.Credential, error) {
	q := s.db.WithContext(ctx).Omit("secret").Where("gateway_id = ?", gatewayID)
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}
	var rows []model.Credential
	if err := q.Order("name, token").Find(&rows).Error; err != nil {
		return nil, err
	}
	return credentialsFromModels(rows), nil
}

// ListUserCredentials lists the USER-owned credentials of userID.
func (s *CredentialsStore) ListUserCredentials(ctx context.Context, gatewayID, userID string) ([]store.Credential, error) {
	var rows []model.Credential
	err := s.db.WithContext(ctx).Omit("secret").
		Where("gateway_id = ? AND owner_id = ? AND owner_type = ?", gatewayID, userID, preference.LevelUser.String()).
		Order("name, token").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return credentialsFromModels(rows), nil
}

// DeleteCredential removes a credential no grant references. The foreign key
// on resource_access.credential_token also rejects a grant committed between
// the reference count and the delete.
func (s *CredentialsStore) DeleteCredential(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&model.ResourceAccess{}).Where("credential_token = ?", token).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return store.ErrCredentialInUse
		}
		res := tx.Where("token = ?", token).Delete(&model.Credential{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrCredentialNotFound
		}
		return nil
	})
	if isForeignKeyViolation(err) {
		return store.ErrCredentialInUse
	}
	return err
}

// OpenSecret returns the plaintext secret of a credential. It is not exposed
// over HTTP.
func (s *CredentialsStore) OpenSecret(ctx context.Context, token string) ([]byte, error) {
	var row model.Credential
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(row.Secret) == 0 {
		return nil, nil
	}
	if s.cipher == nil {
		return nil, errors.New("no data key configured to open credential secrets")
	}
	return s.cipher.Decrypt([]byte(row.Token), row.Secret)
}

func credentialsFromModels(rows []model.Credential) []store.Credential {
	out := make([]store.Credential, 0, len(rows))
	for _, r := range rows {
		out = append(out, credentialFromModel(r))
	}
	return out
}

func credentialFromModel(r model.Credential) store.Credential {
	ot, _ := preference.ParseLevel(r.OwnerType)
	return store.Credential{
		Token:       r.Token,
		GatewayID:   r.GatewayID,
		OwnerID:     r.OwnerID,
		OwnerType:   ot,
		Name:        r.Name,
		Username:    r.Username,
		Type:        store.CredentialType(r.Type),
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}
