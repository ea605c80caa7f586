package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength    = 3
	MaxUsernameLength    = 30
	MaxDisplayNameLength = 100
	MaxBioLength         = 500
	MaxLocationLength    = 100
	MaxAvatarLength      = 500
	MaxPostContentLength = 2000
	MaxCommentLength     = 1000
	MaxPlaceNameLength   = 200
	MaxTagLength         = 30
	MaxTagsCount         = 10
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._%+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	usernameRegex    = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)
)

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateLength проверяет длину строки в символах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s must be at most %d characters", fieldName, max)
	}
	return nil
}

// ValidateRequired проверяет, что строка не пустая.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateEmail проверяет формат email. Ожидает уже нормализованный адрес.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("Email is required")
	}

	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return fmt.Errorf("Invalid email format")
	}
	if len(local) == 0 || len(local) > 64 || len(domain) > 255 {
		return fmt.Errorf("Invalid email format")
	}
	if !emailLocalRegex.MatchString(local) || !emailDomainRegex.MatchString(domain) {
		return fmt.Errorf("Invalid email format")
	}

	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("Username is required")
	}
	if err := ValidateLength("Username", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("Username may contain only letters, digits, dots and underscores")
	}
	return nil
}

// ValidateDisplayName проверяет отображаемое имя. Пустое допустимо.
func ValidateDisplayName(displayName *string) error {
	if displayName == nil {
		return nil
	}
	return ValidateLength("Display name", strings.TrimSpace(*displayName), 0, MaxDisplayNameLength)
}

func ValidateBio(bio *string) error {
	if bio == nil {
		return nil
	}
	return ValidateLength("Bio", strings.TrimSpace(*bio), 0, MaxBioLength)
}

func ValidateLocation(location *string) error {
	if location == nil {
		return nil
	}
	return ValidateLength("Location", strings.TrimSpace(*location), 0, MaxLocationLength)
}

func ValidateAvatar(avatar *string) error {
	if avatar == nil {
		return nil
	}
	return ValidateLength("Avatar", *avatar, 0, MaxAvatarLength)
}

// ValidatePostContent проверяет текст поста.
func ValidatePostContent(content string) error {
	if err := ValidateRequired("Content", content); err != nil {
		return err
	}
	return ValidateLength("Content", strings.TrimSpace(content), 1, MaxPostContentLength)
}

// ValidateCommentContent проверяет текст комментария.
func ValidateCommentContent(content string) error {
	if err := ValidateRequired("Content", content); err != nil {
		return err
	}
	return ValidateLength("Content", strings.TrimSpace(content), 1, MaxCommentLength)
}

// ValidatePlaceName проверяет название места в посте.
func ValidatePlaceName(name string) error {
	if err := ValidateRequired("Location name", name); err != nil {
		return err
	}
	return ValidateLength("Location name", strings.TrimSpace(name), 1, MaxPlaceNameLength)
}

// NormalizeTags обрезает пробелы, убирает пустые и повторяющиеся теги.
func NormalizeTags(tags []string) ([]string, error) {
	result := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return nil, fmt.Errorf("Tag must be at most %d characters", MaxTagLength)
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, tag)
	}
	if len(result) > MaxTagsCount {
		return nil, fmt.Errorf("At most %d tags are allowed", MaxTagsCount)
	}
	return result, nil
}
