package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/okian/podium/internal/adapters/cache"
	"github.com/okian/podium/internal/auth"
	"github.com/okian/podium/internal/domain/model"
)

// Users returns every known participant from the mirror, sorted by
// username. Reads never touch the remote store.
func (s *Service) Users(ctx context.Context) ([]model.User, error) {
	entries, err := s.mirror.List(ctx, cache.KindUsers)
	if err != nil {
		return nil, fmt.Errorf("reading user mirror: %w", err)
	}
	users := make([]model.User, 0, len(entries))
	for _, e := range entries {
		var u model.User
		if err := json.Unmarshal(e.Data, &u); err != nil {
			return nil, fmt.Errorf("decoding mirrored user %s: %w", e.ID, err)
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		return model.NormalizeUsername(users[i].Username) < model.NormalizeUsername(users[j].Username)
	})
	return users, nil
}

// UserByID returns one participant from the mirror.
func (s *Service) UserByID(ctx context.Context, userID string) (model.User, error) {
	e, err := s.mirror.Get(ctx, cache.KindUsers, userID)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return model.User{}, ErrUnknownUser
		}
		return model.User{}, err
	}
	var u model.User
	if err := json.Unmarshal(e.Data, &u); err != nil {
		return model.User{}, fmt.Errorf("decoding mirrored user %s: %w", userID, err)
	}
	return u, nil
}

// userByUsername resolves a participant by case-folded username.
func (s *Service) userByUsername(ctx context.Context, username string) (model.User, error) {
	users, err := s.Users(ctx)
	if err != nil {
		return model.User{}, err
	}
	want := model.NormalizeUsername(username)
	for _, u := range users {
		if model.NormalizeUsername(u.Username) == want {
			return u, nil
		}
	}
	return model.User{}, ErrUnknownUser
}

// RegisterUser creates a participant account. Usernames are unique
// case-insensitively. The returned bool is true when the creation was
// queued for sync.
func (s *Service) RegisterUser(ctx context.Context, username, displayName, password string) (model.User, bool, error) {
	if _, err := s.userByUsername(ctx, username); err == nil {
		return model.User{}, false, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return model.User{}, false, fmt.Errorf("hashing credentials: %w", err)
	}

	u := model.User{
		ID:             uuid.NewString(),
		Username:       username,
		DisplayName:    displayName,
		CredentialHash: hash,
	}
	if err := model.ValidateUser(&u); err != nil {
		return model.User{}, false, err
	}

	queued, err := s.applyWrite(ctx, writeOp{
		entity:  "user",
		kind:    model.ActionCreateUser,
		payload: model.UserPayload{User: u},
		remote:  func(ctx context.Context) error { return s.remote.CreateUser(ctx, u) },
		mirror:  func(ctx context.Context, pending bool) error { return s.mirrorUser(ctx, u, pending) },
	})
	if err != nil {
		return model.User{}, false, err
	}
	return u, queued, nil
}

// Login verifies credentials and mints a session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, model.User, error) {
	if s.tokens == nil {
		return "", model.User{}, ErrTokensUnavailable
	}

	u, err := s.userByUsername(ctx, username)
	if err != nil {
		return "", model.User{}, auth.ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, u.CredentialHash) {
		return "", model.User{}, auth.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(u.ID, u.Username, u.DisplayName, s.admins[u.Username])
	if err != nil {
		return "", model.User{}, fmt.Errorf("minting token: %w", err)
	}
	return token, u, nil
}

// UpdateDisplayName changes a participant's display name.
func (s *Service) UpdateDisplayName(ctx context.Context, userID, displayName string) (bool, error) {
	u, err := s.UserByID(ctx, userID)
	if err != nil {
		return false, err
	}
	u.DisplayName = displayName

	return s.applyWrite(ctx, writeOp{
		entity:  "user",
		kind:    model.ActionUpdateUser,
		payload: model.UserPayload{User: u},
		remote:  func(ctx context.Context) error { return s.remote.UpdateUser(ctx, u) },
		mirror:  func(ctx context.Context, pending bool) error { return s.mirrorUser(ctx, u, pending) },
	})
}

// DeleteUser removes a participant and, via the remote store's cascade,
// their predictions.
func (s *Service) DeleteUser(ctx context.Context, userID string) (bool, error) {
	if _, err := s.UserByID(ctx, userID); err != nil {
		return false, err
	}

	return s.applyWrite(ctx, writeOp{
		entity:  "user",
		kind:    model.ActionDeleteUser,
		payload: model.UserRefPayload{UserID: userID},
		remote:  func(ctx context.Context) error { return s.remote.DeleteUser(ctx, userID) },
		mirror: func(ctx context.Context, _ bool) error {
			if err := s.mirror.Delete(ctx, cache.KindUsers, userID); err != nil {
				return err
			}
			return s.dropMirroredPredictions(ctx, func(up model.UserPrediction) bool {
				return up.UserID == userID
			})
		},
	})
}
