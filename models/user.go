package models

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/parishdesk/parish_backend/config"
	"github.com/parishdesk/parish_backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserDisabled       = errors.New("user is disabled")
	ErrSessionRequired    = errors.New("session is required")
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:100;not null;unique" json:"username"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Password  string    `gorm:"size:255;not null" json:"password,omitempty"`
	RoleId    int       `gorm:"index;not null" json:"role_id"`
	Role      *Role     `gorm:"foreignKey:RoleId" json:"-"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string `json:"username" validate:"required,max=100"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	RoleId   int    `json:"role_id" validate:"required,gt=0"`
	IsActive *bool  `json:"is_active"`
}

type LoginInfo struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
	RoleId   int    `json:"role_id"`
}

/*
caches:
	User:$username
	Token:$token -> username
	Tokens:$username -> set of tokens
*/

func (result *User) PrepareGive() {
	result.Password = ""
}

func CreateUser(ctx context.Context, db *gorm.DB, input *NewUser) (*User, error) {
	input.Username = html.EscapeString(strings.TrimSpace(input.Username))
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	exists, err := RoleExists(ctx, db, input.RoleId)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, utils.ValidationFailed("role_id", "role does not exist")
	}
	if err := utils.ValidateUnique[User](ctx, db, "username", input.Username, 0); err != nil {
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	isActive := input.IsActive
	if isActive == nil {
		isActive = utils.NewTrue()
	}

	user := User{
		Username: input.Username,
		Name:     input.Name,
		Password: string(hashedPassword),
		RoleId:   input.RoleId,
		IsActive: isActive,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, classifyWriteError("users", err)
	}
	user.PrepareGive()
	return &user, nil
}

// SeedAdmin creates the admin user, or resets its password and reactivates it.
func SeedAdmin(ctx context.Context, db *gorm.DB, username string, name string, password string) (*User, error) {
	role, err := GetRoleByName(ctx, db, RoleAdmin)
	if err != nil {
		return nil, err
	}
	var existing User
	err = db.WithContext(ctx).Where("username = ?", username).Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CreateUser(ctx, db, &NewUser{Username: username, Name: name, Password: password, RoleId: role.ID})
	}
	if err != nil {
		return nil, classifyWriteError("users", err)
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
		"password":  string(hashedPassword),
		"role_id":   role.ID,
		"is_active": true,
	}).Error; err != nil {
		return nil, classifyWriteError("users", err)
	}
	if err := existing.DestroyAllSessions(ctx); err != nil {
		return nil, err
	}
	existing.PrepareGive()
	return &existing, nil
}

func getUserByUsername(ctx context.Context, db *gorm.DB, username string) (*User, error) {
	var user User
	exists, err := config.GetRedisObject("User:"+username, &user)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := db.WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
			return nil, err
		}
		if err := config.SetRedisObject("User:"+username, &user, config.SessionLifespan()); err != nil {
			return nil, err
		}
	}
	return &user, nil
}

func Login(ctx context.Context, db *gorm.DB, username string, password string) (*LoginInfo, error) {
	user, err := getUserByUsername(ctx, db, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// check login credentials
	if err := utils.ComparePassword(user.Password, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.IsActive == nil || !*user.IsActive {
		return nil, ErrUserDisabled
	}

	token := uuid.New().String()
	// add new token to the user's tokens set
	if err := config.AddRedisSet("Tokens:"+user.Username, token); err != nil {
		return nil, err
	}
	if err := config.SetRedisValue("Token:"+token, user.Username, config.SessionLifespan()); err != nil {
		return nil, err
	}

	return &LoginInfo{
		Token:    token,
		Username: user.Username,
		Name:     user.Name,
		RoleId:   user.RoleId,
	}, nil
}

// destroy current session
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, ErrSessionRequired
	}
	if err := config.RemoveRedisKey("Token:" + token); err != nil {
		return false, err
	}
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return false, ErrSessionRequired
	}
	if err := config.RemoveRedisSetMember("Tokens:"+username, token); err != nil {
		return false, err
	}
	return true, nil
}

// ResolveSession returns the active user behind a session token, or
// ErrSessionRequired when the token is unknown or expired.
func ResolveSession(ctx context.Context, db *gorm.DB, token string) (*User, error) {
	username, ok, err := config.GetRedisValue("Token:" + token)
	if err != nil {
		return nil, err
	}
	if !ok || username == "" {
		return nil, ErrSessionRequired
	}
	user, err := getUserByUsername(ctx, db, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionRequired
		}
		return nil, err
	}
	if user.IsActive == nil || !*user.IsActive {
		return nil, ErrUserDisabled
	}
	return user, nil
}

func (user *User) DestroyAllSessions(ctx context.Context) error {
	allTokens, err := config.GetRedisSetMembers("Tokens:" + user.Username)
	if err != nil {
		return err
	}
	for _, token := range allTokens {
		if err := config.RemoveRedisKey("Token:" + token); err != nil {
			return err
		}
	}
	if err := config.RemoveRedisKey("Tokens:"+user.Username, "User:"+user.Username); err != nil {
		return err
	}
	return nil
}
