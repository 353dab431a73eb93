package services

import (
	"errors"

	"github.com/okrhub/okrhub/backend/internal/models"
	"gorm.io/gorm"
)

type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// EnsureProfile returns the profile for uid, creating it on first sight.
// Called by the auth middleware after token verification, so every
// authenticated request is backed by a profile row.
func (s *ProfileService) EnsureProfile(uid, email, username string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.First(&profile, "uid = ?", uid).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile = models.Profile{
		UID:      uid,
		Email:    email,
		Username: username,
	}
	if err := s.db.Create(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent first request for the same identity, or a username
			// collision with another identity.
			if ferr := s.db.First(&profile, "uid = ?", uid).Error; ferr == nil {
				return &profile, nil
			}
			return nil, ErrConflict("username already taken")
		}
		return nil, err
	}
	return &profile, nil
}

// GetByUID returns the profile for uid.
func (s *ProfileService) GetByUID(uid string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.First(&profile, "uid = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("profile not found")
		}
		return nil, err
	}
	return &profile, nil
}

// GetByUsername resolves a username to a profile.
func (s *ProfileService) GetByUsername(username string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.First(&profile, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("profile not found")
		}
		return nil, err
	}
	return &profile, nil
}

type UpdateProfileRequest struct {
	Username  string  `json:"username"`
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

// Update modifies the profile owned by uid. Only the owner may update it.
func (s *ProfileService) Update(uid string, req *UpdateProfileRequest, actingUID string) (*models.Profile, error) {
	if actingUID != uid {
		return nil, ErrNotAuthorized("profiles can only be updated by their owner")
	}

	profile, err := s.GetByUID(uid)
	if err != nil {
		return nil, err
	}

	if req.Username != "" {
		profile.Username = req.Username
	}
	if req.FullName != nil {
		profile.FullName = req.FullName
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = req.AvatarURL
	}

	if err := s.db.Save(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict("username already taken")
		}
		return nil, err
	}
	return profile, nil
}
