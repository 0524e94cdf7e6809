package helpers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	ProfileFolder  = "profiles"
	PropertyFolder = "properties"
)

var (
	phonePattern = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	hasLower     = regexp.MustCompile(`[a-z]`)
	hasUpper     = regexp.MustCompile(`[A-Z]`)
	hasNumber    = regexp.MustCompile(`\d`)
	hasSpecial   = regexp.MustCompile(`[@$!%*?&]`)
)

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	return hasLower.MatchString(password) &&
		hasUpper.MatchString(password) &&
		hasNumber.MatchString(password) &&
		hasSpecial.MatchString(password)
}

// IsValidPhone accepts the 123-456-7890 form.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func StringTrim(s string) string {
	return strings.TrimSpace(s)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GenerateResetToken returns 32 random bytes hex encoded.
func GenerateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %v", err)
	}
	return hex.EncodeToString(buf), nil
}

// CloudinaryUploader stores images that are not already hosted and returns their secure URLs.
type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
	tag string
}

func NewCloudinaryUploader(cld *cloudinary.Cloudinary) *CloudinaryUploader {
	return &CloudinaryUploader{cld: cld, tag: "realtorhub"}
}

func (cu *CloudinaryUploader) UploadImages(ctx context.Context, images []string, folder string) ([]string, error) {
	urls := make([]string, 0, len(images))
	for i, file := range images {
		file = strings.TrimSpace(file)
		if file == "" {
			continue
		}
		if IsHostedURL(file) || cu.cld == nil {
			urls = append(urls, file)
			continue
		}

		res, err := cu.cld.Upload.Upload(ctx, file, uploader.UploadParams{
			Folder: folder,
			Tags:   []string{cu.tag},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upload image %d: %v", i, err)
		}
		urls = append(urls, res.SecureURL)
	}
	return urls, nil
}

func IsHostedURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "/")
}
