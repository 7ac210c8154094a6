package validation

import (
	"strings"
	"unicode"

	"github.com/rutgers-seed/proposal-portal/internal/pkg/apperror"
)

const minPasswordLength = 8

// passwordRules требования к паролю локального администратора, проверяются по порядку.
var passwordRules = []struct {
	ok      func(rune) bool
	message string
}{
	{unicode.IsUpper, "Password must contain an uppercase letter"},
	{unicode.IsLower, "Password must contain a lowercase letter"},
	{unicode.IsNumber, "Password must contain a digit"},
}

// ValidatePassword проверяет пароль перед хэшированием для ADMIN_USERS.
// Сообщение об ошибке показывается оператору как есть.
func ValidatePassword(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return apperror.New(apperror.ErrCodeBadRequest, "Password must be at least 8 characters")
	}
	for _, rule := range passwordRules {
		if !strings.ContainsFunc(password, rule.ok) {
			return apperror.New(apperror.ErrCodeBadRequest, rule.message)
		}
	}
	return nil
}
