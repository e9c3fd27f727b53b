package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleDoctor  Role = "Doctor"
	RolePatient Role = "Patient"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	default:
		return false
	}
}

// ParseRole converts a raw role string, rejecting anything outside the enum.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// BuiltinAdminID identifies the configured administrator that lives outside
// the accounts table.
const BuiltinAdminID = "admin"

// Account represents a user in the system
type Account struct {
	ID            string    `gorm:"primaryKey;size:36;column:id" json:"id"`
	Name          string    `gorm:"size:100;not null;column:name" json:"name"`
	Email         string    `gorm:"size:255;not null;uniqueIndex;column:email" json:"email"`
	PasswordHash  string    `gorm:"size:255;not null;column:password" json:"-"`
	Role          Role      `gorm:"size:20;not null;index;column:role" json:"role"`
	WalletAddress string    `gorm:"size:255;not null;uniqueIndex;column:wallet_address" json:"walletAddress"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index;column:created_at" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime;column:updated_at" json:"updatedAt"`
}

func (Account) TableName() string {
	return "accounts"
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// Summary returns the public identity of the account.
func (a *Account) Summary() *AccountSummary {
	return &AccountSummary{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		WalletAddress: a.WalletAddress,
	}
}

// AccountSummary is the trimmed account view embedded in other responses.
type AccountSummary struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	WalletAddress string `json:"walletAddress"`
}

// Claims is the identity carried by an authenticated request.
type Claims struct {
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	Role          Role   `json:"role"`
	WalletAddress string `json:"walletAddress"`
}
