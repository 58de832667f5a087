package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/bankbridge-backend/internal/logger"
	"github.com/yungbote/bankbridge-backend/internal/repos"
	"github.com/yungbote/bankbridge-backend/internal/types"
	"github.com/yungbote/bankbridge-backend/internal/utils"
)

type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Profile  *types.UserProfile
}

type UserService interface {
	Create(ctx context.Context, name, email, password string, profile *types.UserProfile) (*types.User, error)
	Get(ctx context.Context, userID uint) (*types.User, error)
	List(ctx context.Context) ([]*types.User, error)
	Update(ctx context.Context, userID uint, input UpdateUserInput) (*types.User, error)
	Delete(ctx context.Context, userID uint) error
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{db: db, log: serviceLog, userRepo: userRepo}
}

func (us *userService) Create(ctx context.Context, name, email, password string, profile *types.UserProfile) (*types.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" {
		return nil, fmt.Errorf("name and email are required")
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var out *types.User
	if err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := us.userRepo.EmailExists(ctx, tx, email, 0)
		if err != nil {
			return fmt.Errorf("Failed to check user email: %w", err)
		}
		if exists {
			return types.ErrEmailInUse
		}
		u := &types.User{
			Name:     name,
			Email:    email,
			Password: hashed,
			Profile:  profile,
		}
		if _, err := us.userRepo.Create(ctx, tx, []*types.User{u}); err != nil {
			return fmt.Errorf("Failed to create user: %w", err)
		}
		out = u
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (us *userService) Get(ctx context.Context, userID uint) (*types.User, error) {
	found, err := us.userRepo.GetByIDs(ctx, nil, []uint{userID})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 || found[0] == nil {
		return nil, types.ErrUserNotFound
	}
	return found[0], nil
}

func (us *userService) List(ctx context.Context) ([]*types.User, error) {
	return us.userRepo.List(ctx, nil)
}

func (us *userService) Update(ctx context.Context, userID uint, input UpdateUserInput) (*types.User, error) {
	var out *types.User
	if err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := us.userRepo.GetByIDs(ctx, tx, []uint{userID})
		if err != nil {
			return err
		}
		if len(found) == 0 || found[0] == nil {
			return types.ErrUserNotFound
		}

		fields := map[string]interface{}{}
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return fmt.Errorf("name must not be empty")
			}
			fields["name"] = name
		}
		if input.Email != nil {
			email := strings.TrimSpace(strings.ToLower(*input.Email))
			exists, err := us.userRepo.EmailExists(ctx, tx, email, userID)
			if err != nil {
				return fmt.Errorf("Failed to check user email: %w", err)
			}
			if exists {
				return types.ErrEmailInUse
			}
			fields["email"] = email
		}
		if input.Password != nil {
			hashed, err := utils.HashPassword(*input.Password)
			if err != nil {
				return err
			}
			fields["password"] = hashed
		}
		if len(fields) > 0 {
			if err := us.userRepo.UpdateFields(ctx, tx, userID, fields); err != nil {
				return err
			}
		}
		if input.Profile != nil {
			input.Profile.UserID = userID
			if err := us.userRepo.UpsertProfile(ctx, tx, input.Profile); err != nil {
				return fmt.Errorf("Failed to upsert profile: %w", err)
			}
		}

		reloaded, err := us.userRepo.GetByIDs(ctx, tx, []uint{userID})
		if err != nil || len(reloaded) == 0 {
			return fmt.Errorf("Failed to reload user")
		}
		out = reloaded[0]
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete refuses while the user still owns bank accounts.
func (us *userService) Delete(ctx context.Context, userID uint) error {
	return us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := us.userRepo.GetByIDs(ctx, tx, []uint{userID})
		if err != nil {
			return err
		}
		if len(found) == 0 || found[0] == nil {
			return types.ErrUserNotFound
		}
		accounts, err := us.userRepo.CountAccounts(ctx, tx, userID)
		if err != nil {
			return err
		}
		if accounts > 0 {
			return types.ErrConflict
		}
		return us.userRepo.DeleteByIDs(ctx, tx, []uint{userID})
	})
}
