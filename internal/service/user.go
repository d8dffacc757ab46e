package service

import (
	"context"
	"fmt"
	"strings"

	"music_library/internal/domain"

	"gorm.io/gorm"
)

// UserService manages accounts and favorites
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a UserService over db
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// UserUpdate holds the fields to change; nil fields are left alone
type UserUpdate struct {
	Username     *string
	Email        *string
	PasswordHash *string
	AvatarURL    *string
	Role         *string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a user. A taken email is a conflict.
func (s *UserService) Create(ctx context.Context, user *domain.User) error {
	user.Email = normalizeEmail(user.Email)
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("creating user: %w", translate(err))
	}
	return nil
}

// GetByEmail returns the user with that email, or nil
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding user by email: %w", err)
	}
	return &user, nil
}

// GetAll returns every user
func (s *UserService) GetAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// GetByID returns the user, or nil
func (s *UserService) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding user %d: %w", id, err)
	}
	return &user, nil
}

// Update applies the non-nil fields and returns the user, or nil if it does not exist
func (s *UserService) Update(ctx context.Context, id uint, in UserUpdate) (*domain.User, error) {
	updates := map[string]any{}
	if in.Username != nil && strings.TrimSpace(*in.Username) != "" {
		updates["username"] = strings.TrimSpace(*in.Username)
	}
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
		updates["email"] = normalizeEmail(*in.Email)
	}
	if in.PasswordHash != nil {
		updates["password_hash"] = *in.PasswordHash
	}
	if in.AvatarURL != nil {
		updates["avatar_url"] = *in.AvatarURL
	}
	if in.Role != nil {
		if *in.Role != domain.RoleUser && *in.Role != domain.RoleAdmin {
			return nil, domain.NewValidationError("role: must be user or admin")
		}
		updates["role"] = *in.Role
	}

	user, err := s.GetByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("updating user %d: %w", id, translate(err))
	}
	return s.GetByID(ctx, id)
}

// deleteUserRows removes users along with their favorites and owned playlists
func deleteUserRows(tx *gorm.DB, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	if err := tx.Where("user_id IN ?", userIDs).Delete(&domain.Favorite{}).Error; err != nil {
		return err
	}
	owned := tx.Model(&domain.Playlist{}).Select("id").Where("user_id IN ?", userIDs)
	if err := tx.Where("playlist_id IN (?)", owned).Delete(&domain.PlaylistSong{}).Error; err != nil {
		return err
	}
	if err := tx.Where("user_id IN ?", userIDs).Delete(&domain.Playlist{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", userIDs).Delete(&domain.User{}).Error
}

// Remove deletes the user with their favorites and playlists.
// It reports whether the user existed.
func (s *UserService) Remove(ctx context.Context, id uint) (bool, error) {
	var existed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		existed = n > 0
		return deleteUserRows(tx, []uint{id})
	})
	if err != nil {
		return false, fmt.Errorf("deleting user %d: %w", id, err)
	}
	return existed, nil
}

// CountAll returns the number of users
func (s *UserService) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

// DeleteAllUsers deletes every non-admin account and returns how many were removed
func (s *UserService) DeleteAllUsers(ctx context.Context) (int, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.User{}).Where("role <> ?", domain.RoleAdmin).Pluck("id", &ids).Error; err != nil {
			return err
		}
		return deleteUserRows(tx, ids)
	})
	if err != nil {
		return 0, fmt.Errorf("deleting users: %w", err)
	}
	return len(ids), nil
}

func (s *UserService) setBlocked(ctx context.Context, id uint, blocked bool) (*domain.User, error) {
	res := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("is_blocked", blocked)
	if res.Error != nil {
		return nil, fmt.Errorf("updating block flag of user %d: %w", id, res.Error)
	}
	return s.GetByID(ctx, id)
}

// BlockUser sets the blocked flag. Favorites and playlists are kept.
func (s *UserService) BlockUser(ctx context.Context, id uint) (*domain.User, error) {
	return s.setBlocked(ctx, id, true)
}

// UnblockUser clears the blocked flag
func (s *UserService) UnblockUser(ctx context.Context, id uint) (*domain.User, error) {
	return s.setBlocked(ctx, id, false)
}

// AddFavoriteSong records a favorite; adding it again is a no-op
func (s *UserService) AddFavoriteSong(ctx context.Context, userID, songID uint) (*domain.Favorite, error) {
	tx := s.db.WithContext(ctx)
	var n int64
	if err := tx.Model(&domain.Song{}).Where("id = ?", songID).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("checking song %d: %w", songID, err)
	}
	if n == 0 {
		return nil, domain.ErrNotFound
	}
	fav := domain.Favorite{UserID: userID, SongID: songID}
	if err := ignoreConflict(tx).Create(&fav).Error; err != nil {
		return nil, fmt.Errorf("adding favorite: %w", err)
	}
	return &fav, nil
}

// RemoveFavoriteSong deletes a favorite pair
func (s *UserService) RemoveFavoriteSong(ctx context.Context, userID, songID uint) error {
	err := s.db.WithContext(ctx).Where("user_id = ? AND song_id = ?", userID, songID).Delete(&domain.Favorite{}).Error
	if err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}
	return nil
}

// GetFavoriteSongs returns the full rows of the user's favorite songs, oldest favorite first
func (s *UserService) GetFavoriteSongs(ctx context.Context, userID uint) ([]domain.Song, error) {
	var songs []domain.Song
	err := s.db.WithContext(ctx).
		Joins("JOIN favorites ON favorites.song_id = songs.id").
		Where("favorites.user_id = ?", userID).
		Preload("Artists", artistColumns).
		Order("favorites.created_at, songs.id").
		Find(&songs).Error
	if err != nil {
		return nil, fmt.Errorf("listing favorites of user %d: %w", userID, err)
	}
	return songs, nil
}
