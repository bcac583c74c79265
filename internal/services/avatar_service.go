package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"groupsync/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// MaxAvatarSize is the largest accepted avatar upload in bytes
const MaxAvatarSize = 5 << 20

var allowedAvatarTypes = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// AvatarUploader stores avatar images and returns their public URL
type AvatarUploader interface {
	UploadAvatar(ctx context.Context, file io.Reader, filename, userID string) (string, error)
}

// CloudinaryAvatars uploads avatars to Cloudinary
type CloudinaryAvatars struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryAvatars(cfg config.CloudinaryConfig) (*CloudinaryAvatars, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("missing Cloudinary configuration")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryAvatars{cld: cld}, nil
}

// ValidateAvatar checks the file extension and size before an upload
func ValidateAvatar(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedAvatarTypes[ext] {
		return fmt.Errorf("%w: invalid file type %q, allowed types: jpg, jpeg, png, gif, webp", ErrInvalidInput, ext)
	}
	if size > MaxAvatarSize {
		return fmt.Errorf("%w: file too large: %d bytes (max %d bytes)", ErrInvalidInput, size, MaxAvatarSize)
	}
	return nil
}

// UploadAvatar implements AvatarUploader. Each user has one avatar that is overwritten.
func (s *CloudinaryAvatars) UploadAvatar(ctx context.Context, file io.Reader, filename, userID string) (string, error) {
	overwrite := true
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       "user_" + userID,
		Folder:         "groupsync/avatars",
		Overwrite:      &overwrite,
		ResourceType:   "image",
		Transformation: "c_fill,g_face,h_300,w_300/q_auto,f_auto",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to upload image: %s", result.Error.Message)
	}
	return result.SecureURL, nil
}
