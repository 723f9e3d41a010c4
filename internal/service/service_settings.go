package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rhysmalcolm13/agentity/internal/store"
	"github.com/Rhysmalcolm13/agentity/internal/validators"
	"github.com/Rhysmalcolm13/agentity/models"
	"golang.org/x/crypto/bcrypt"
)

type settingsService struct {
	users      store.UserRepository
	changer    *emailChanger
	validator  validators.Validator
	bcryptCost int
}

func newSettingsService(users store.UserRepository, changer *emailChanger, v validators.Validator, bcryptCost int) SettingsService {
	return &settingsService{users: users, changer: changer, validator: v, bcryptCost: bcryptCost}
}

// UpdateSettings applies every provided field of req.
//
// A new password requires the current one. A new e-mail address is only
// recorded once confirmed through the link sent to it, which is reported by
// EmailChangePending.
func (s *settingsService) UpdateSettings(ctx context.Context, userID string, req models.SettingsRequest) (models.SettingsResult, error) {
	if err := s.validator.Validate(ctx, req); err != nil {
		return models.SettingsResult{}, fmt.Errorf("invalid settings request: %w", err)
	}

	user, err := s.users.FindUserByID(ctx, userID)
	if errors.Is(err, store.ErrNoUserWasFound) {
		return models.SettingsResult{}, ErrUserNotFound
	}
	if err != nil {
		return models.SettingsResult{}, fmt.Errorf("error finding user: %w", err)
	}

	var update models.UserUpdate

	if req.NewPassword != nil {
		if req.CurrentPassword == nil || *req.CurrentPassword == "" {
			return models.SettingsResult{}, ErrCurrentPasswordRequired
		}
		if !user.HasPassword() ||
			bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(*req.CurrentPassword)) != nil {
			return models.SettingsResult{}, ErrInvalidCurrentPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.NewPassword), s.bcryptCost)
		if err != nil {
			return models.SettingsResult{}, fmt.Errorf("error hashing password: %w", err)
		}
		passwordHash := string(hash)
		update.PasswordHash = &passwordHash
	}

	var result models.SettingsResult
	if req.Email != nil {
		if result.EmailChangePending, err = s.changer.request(ctx, user, *req.Email); err != nil {
			return models.SettingsResult{}, err
		}
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		completed := isProfileComplete(name, user.Email)
		update.Name = &name
		update.ProfileCompleted = &completed
	}

	if n := req.Notifications; n != nil {
		update.NotifyEmail = n.Email
		update.NotifyPush = n.Push
		update.NotifyAgent = n.Agent
	}
	if req.Appearance != nil {
		update.Animations = req.Appearance.Animations
	}
	if req.API != nil {
		update.WebhookURL = req.API.WebhookURL
	}

	if update.IsEmpty() {
		return result, nil
	}
	if err = s.users.UpdateUser(ctx, userID, update); err != nil {
		return models.SettingsResult{}, fmt.Errorf("error updating settings: %w", err)
	}
	return result, nil
}
