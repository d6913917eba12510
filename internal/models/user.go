package models

import (
	"strconv"
	"strings"
	"time"

	"attendance-bot/internal/domain"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	ChatID    int64     `gorm:"uniqueIndex;not null" json:"chat_id"`
	Username  string    `json:"username"`
	FirstName string    `gorm:"not null" json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      Role      `gorm:"type:varchar(20);default:'employee'" json:"role"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PersonID is the key the conflict engine uses for this user.
func (u *User) PersonID() domain.PersonID {
	return PersonIDOf(u.ID)
}

// DisplayName prefers the full name, then the username.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return strconv.FormatInt(u.ChatID, 10)
}

func (u *User) Person() domain.Person {
	return domain.Person{ID: u.PersonID(), Label: u.DisplayName()}
}

func PersonIDOf(userID uint) domain.PersonID {
	return domain.PersonID(strconv.FormatUint(uint64(userID), 10))
}

// UserIDOf parses a person id produced by PersonIDOf.
func UserIDOf(id domain.PersonID) (uint, error) {
	n, err := strconv.ParseUint(string(id), 10, 64)
	if err != nil || n == 0 {
		return 0, domain.ErrPersonNotFound
	}
	return uint(n), nil
}
