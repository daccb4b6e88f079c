package models

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type AccountType string

const (
	AccountGeneral    AccountType = "GENERAL"
	AccountRestricted AccountType = "RESTRICTED"
)

// BanThreshold is the ban counter value at which an account counts as banned.
const BanThreshold = 5

type User struct {
	ID           uint        `gorm:"primaryKey;autoIncrement"                 json:"id"`
	Email        string      `gorm:"size:100;uniqueIndex;not null"            json:"email"`
	PasswordHash string      `gorm:"size:100;not null"                        json:"-"`
	Username     string      `gorm:"size:100;not null"                        json:"username"`
	Nickname     string      `gorm:"size:10;not null"                         json:"nickname"`
	BanCount     int         `gorm:"not null;default:0"                       json:"ban_count"`
	Role         Role        `gorm:"size:16;not null;default:USER"            json:"role"`
	Type         AccountType `gorm:"column:account_type;size:16;not null;default:GENERAL" json:"type"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (u *User) UpdatePassword(hash string) *User {
	u.PasswordHash = hash
	return u
}

func (u *User) UpdateNickname(nickname string) *User {
	u.Nickname = nickname
	return u
}

func (u *User) IsBanned() bool {
	return u.BanCount >= BanThreshold
}

type TokenType string

const TokenTypeBearer TokenType = "BEARER"

// RefreshToken is a ledger row. Rows are flipped to expired/revoked, never deleted.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"                      json:"id"`
	Token     string    `gorm:"size:512;uniqueIndex;not null"   json:"-"`
	TokenType TokenType `gorm:"size:16;not null;default:BEARER" json:"token_type"`
	Email     string    `gorm:"size:100;index;not null"         json:"email"`
	Expired   bool      `gorm:"not null;default:false"          json:"expired"`
	Revoked   bool      `gorm:"not null;default:false"          json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Valid reports the ledger sense of validity: neither expired nor revoked.
func (t *RefreshToken) Valid() bool {
	return !t.Expired && !t.Revoked
}

func (t *RefreshToken) Revoke() {
	t.Expired = true
	t.Revoked = true
}
