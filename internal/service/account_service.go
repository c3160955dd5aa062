package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tasktracker/internal/apperr"
	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

// AccountService implements account creation and credential checks.
type AccountService struct {
	users *repository.UserRepository
}

func NewAccountService(users *repository.UserRepository) *AccountService {
	return &AccountService{users: users}
}

// NormalizeEmail lower-cases the domain portion of an email address,
// leaving the local part as given. Applying it twice yields the same
// result.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

// CreateAccount registers a new user. An empty password stores no usable
// credential, so authentication fails until a password is set.
func (s *AccountService) CreateAccount(ctx context.Context, email, name, password string) (*model.User, error) {
	email = NormalizeEmail(email)

	fields := make(map[string]string)
	if email == "" {
		fields["email"] = "email is required"
	}
	if strings.TrimSpace(name) == "" {
		fields["name"] = "name is required"
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	user := &model.User{Email: email, Name: strings.TrimSpace(name)}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateSuperuser registers a user and grants the staff and superuser
// flags.
func (s *AccountService) CreateSuperuser(ctx context.Context, email, name, password string) (*model.User, error) {
	user, err := s.CreateAccount(ctx, email, name, password)
	if err != nil {
		return nil, err
	}

	user.IsStaff = true
	user.IsSuperuser = true
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CheckPassword reports whether password matches the user's stored hash.
// Accounts without a usable credential never match.
func (s *AccountService) CheckPassword(user *model.User, password string) bool {
	if user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// Authenticate resolves an email/password pair to a user. Unknown email
// and wrong password are reported identically.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeUnauthorized, "invalid email or password")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !s.CheckPassword(user, password) {
		return nil, apperr.New(apperr.CodeUnauthorized, "invalid email or password")
	}
	return user, nil
}

// DeleteAccount removes a user and, inside the same transaction, every
// task it owns.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uint) error {
	return s.users.Delete(ctx, userID)
}
