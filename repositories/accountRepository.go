package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"MediChain/models"

	"gorm.io/gorm"
)

const (
	AccountCacheExpiry = 7 * 24 * time.Hour
)

const publicAccountColumns = "id, name, email, role, wallet_address, created_at, updated_at"

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByWallet(ctx context.Context, walletAddress string) (*models.Account, error)
	GetCredentialsByEmail(ctx context.Context, email string) (*models.Account, error)
	GetCredentialsByID(ctx context.Context, id string) (*models.Account, error)
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	WalletTaken(ctx context.Context, walletAddress, excludeID string) (bool, error)
	List(ctx context.Context, role models.Role) ([]models.Account, error)
	Update(ctx context.Context, current *models.Account, fields map[string]interface{}) error
	UpdatePassword(ctx context.Context, current *models.Account, hashedPassword string) error
	Delete(ctx context.Context, account *models.Account) error
	CountByRole(ctx context.Context, role models.Role) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time, roles ...models.Role) (int64, error)
}

type accountRepository struct {
	db    *gorm.DB
	cache Cache
	log   *slog.Logger
}

func NewAccountRepository(db *gorm.DB, cache Cache, log *slog.Logger) AccountRepository {
	return &accountRepository{db: db, cache: cache, log: log}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", translate(err))
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getCached(ctx, accountCacheKey("id", id), "id = ?", id)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getCached(ctx, accountCacheKey("email", email), "email = ?", email)
}

func (r *accountRepository) GetByWallet(ctx context.Context, walletAddress string) (*models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var account models.Account
	err := r.db.WithContext(ctx).Select(publicAccountColumns).
		Where("wallet_address = ?", walletAddress).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account by wallet: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) GetCredentialsByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getCredentials(ctx, "email = ?", email)
}

func (r *accountRepository) GetCredentialsByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getCredentials(ctx, "id = ?", id)
}

func (r *accountRepository) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	return r.exists(ctx, "email = ?", email, excludeID)
}

func (r *accountRepository) WalletTaken(ctx context.Context, walletAddress, excludeID string) (bool, error) {
	return r.exists(ctx, "wallet_address = ?", walletAddress, excludeID)
}

// List returns accounts sorted by name. An empty role lists every account.
func (r *accountRepository) List(ctx context.Context, role models.Role) ([]models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := r.db.WithContext(ctx).Select(publicAccountColumns)
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var accounts []models.Account
	if err := query.Order("name ASC").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (r *accountRepository) Update(ctx context.Context, current *models.Account, fields map[string]interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", current.ID).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("failed to update account: %w", translate(err))
	}
	r.invalidate(ctx, current)
	return nil
}

func (r *accountRepository) UpdatePassword(ctx context.Context, current *models.Account, hashedPassword string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", current.ID).
		Update("password", hashedPassword).Error
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	r.invalidate(ctx, current)
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, account *models.Account) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := r.db.WithContext(ctx).Delete(&models.Account{}, "id = ?", account.ID).Error; err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	r.invalidate(ctx, account)
	return nil
}

func (r *accountRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Account{}).Where("role = ?", role).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

func (r *accountRepository) CountCreatedSince(ctx context.Context, since time.Time, roles ...models.Role) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := r.db.WithContext(ctx).Model(&models.Account{}).Where("created_at >= ?", since)
	if len(roles) > 0 {
		query = query.Where("role IN ?", roles)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count new accounts: %w", err)
	}
	return count, nil
}

func (r *accountRepository) getCached(ctx context.Context, cacheKey, where string, arg string) (*models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cached, err := r.cache.Get(ctx, cacheKey)
	if err != nil {
		r.log.Warn("failed to get account from cache", "key", cacheKey, "error", err)
	} else if cached != "" {
		var account models.Account
		if err := json.Unmarshal([]byte(cached), &account); err == nil {
			return &account, nil
		}
	}

	var account models.Account
	err = r.db.WithContext(ctx).Select(publicAccountColumns).Where(where, arg).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	accountJSON, err := json.Marshal(account)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, cacheKey, accountJSON, AccountCacheExpiry); err != nil {
		r.log.Warn("failed to set account in cache", "key", cacheKey, "error", err)
	}
	return &account, nil
}

func (r *accountRepository) getCredentials(ctx context.Context, where string, arg string) (*models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var account models.Account
	err := r.db.WithContext(ctx).Where(where, arg).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account credentials: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) exists(ctx context.Context, where, value, excludeID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := r.db.WithContext(ctx).Model(&models.Account{}).Where(where, value)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check account uniqueness: %w", err)
	}
	return count > 0, nil
}

func (r *accountRepository) invalidate(ctx context.Context, account *models.Account) {
	keys := []string{accountCacheKey("id", account.ID), accountCacheKey("email", account.Email)}
	if err := r.cache.DeleteBatch(ctx, keys...); err != nil {
		r.log.Warn("failed to delete account cache", "id", account.ID, "error", err)
	}
}

func accountCacheKey(kind, identifier string) string {
	return fmt.Sprintf("account_cache:%s:%s", kind, identifier)
}
