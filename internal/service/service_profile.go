package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Rhysmalcolm13/agentity/internal/autherr"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/store"
	"github.com/Rhysmalcolm13/agentity/internal/tokens"
	"github.com/Rhysmalcolm13/agentity/models"
)

// ProfileCompletionURL is where users with an incomplete profile are sent.
const ProfileCompletionURL = "/profile/complete"

// Fields counted by the profile progress indicator.
const (
	FieldName          = "name"
	FieldEmail         = "email"
	FieldEmailVerified = "emailVerified"
)

// emailChanger starts the confirmation flow of a new e-mail address. The
// stored address is left untouched until the link is followed.
type emailChanger struct {
	users  store.UserRepository
	tokens *tokens.Issuer
	email  EmailService
}

// request issues an email_change token for newEmail and mails it. It returns
// false when newEmail is the current address.
func (c *emailChanger) request(ctx context.Context, user models.User, newEmail string) (bool, error) {
	newEmail = normalizeEmail(newEmail)
	if newEmail == "" || newEmail == user.Email {
		return false, nil
	}

	_, err := c.users.FindUserByEmail(ctx, newEmail)
	if err == nil {
		return false, ErrEmailInUse
	}
	if !errors.Is(err, store.ErrNoUserWasFound) {
		return false, fmt.Errorf("error checking e-mail availability: %w", err)
	}

	token, err := c.tokens.IssueEmailChange(ctx, user.ID, newEmail)
	if err != nil {
		return false, err
	}
	if err = c.email.SendVerificationEmail(ctx, newEmail, user.Name, token); err != nil {
		return false, err
	}

	logger.FromContext(ctx).Info().Str("user_id", user.ID).Msg("e-mail change requested")
	return true, nil
}

type profileService struct {
	users   store.UserRepository
	changer *emailChanger
}

func newProfileService(users store.UserRepository, changer *emailChanger) ProfileService {
	return &profileService{users: users, changer: changer}
}

// UpdateProfile applies data to the user and recomputes ProfileCompleted
// from the resulting profile. A different e-mail address is not written
// directly; it goes through the e-mail change confirmation instead.
func (s *profileService) UpdateProfile(ctx context.Context, userID string, data models.ProfileData) (models.SettingsResult, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return models.SettingsResult{}, err
	}

	var (
		result models.SettingsResult
		update models.UserUpdate
	)

	if data.Email != nil {
		if result.EmailChangePending, err = s.changer.request(ctx, user, *data.Email); err != nil {
			return models.SettingsResult{}, err
		}
	}
	if data.Name != nil {
		name := strings.TrimSpace(*data.Name)
		update.Name = &name
		user.Name = name
	}
	if data.Image != nil {
		update.Image = data.Image
	}

	completed := isProfileComplete(user.Name, user.Email)
	update.ProfileCompleted = &completed

	if err = s.users.UpdateUser(ctx, userID, update); err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return models.SettingsResult{}, ErrUserNotFound
		}
		return models.SettingsResult{}, fmt.Errorf("error updating profile: %w", err)
	}
	return result, nil
}

// GetProgress reports the share of the name, email and emailVerified fields
// that are filled in.
func (s *profileService) GetProgress(ctx context.Context, userID string) (models.ProfileProgress, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return models.ProfileProgress{}, err
	}

	required := []struct {
		name string
		set  bool
	}{
		{FieldName, strings.TrimSpace(user.Name) != ""},
		{FieldEmail, user.Email != ""},
		{FieldEmailVerified, user.IsVerified()},
	}

	missing := make([]string, 0, len(required))
	for _, f := range required {
		if !f.set {
			missing = append(missing, f.name)
		}
	}

	done := len(required) - len(missing)
	return models.ProfileProgress{
		Percentage:    int(math.Round(float64(done) / float64(len(required)) * 100)),
		MissingFields: missing,
	}, nil
}

func (s *profileService) EnsureComplete(ctx context.Context, userID string) error {
	user, err := s.users.FindUserByID(ctx, userID)
	if errors.Is(err, store.ErrNoUserWasFound) {
		return autherr.New(autherr.CodeUnauthorized, "User not found")
	}
	if err != nil {
		return fmt.Errorf("error finding user: %w", err)
	}

	if !user.ProfileCompleted {
		return autherr.New(autherr.CodeProfileIncomplete, autherr.ErrProfileIncomplete.Message, map[string]any{
			"redirectUrl": ProfileCompletionURL,
		})
	}
	return nil
}

func (s *profileService) findUser(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if errors.Is(err, store.ErrNoUserWasFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("error finding user: %w", err)
	}
	return user, nil
}
