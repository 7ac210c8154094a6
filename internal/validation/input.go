package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateAbsoluteURL проверяет, что непустая ссылка является абсолютным URL.
// Пустая строка считается отсутствующей ссылкой.
func ValidateAbsoluteURL(link string) error {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil
	}

	parsedURL, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("некорректный формат URL")
	}

	if parsedURL.Scheme == "" {
		return fmt.Errorf("ссылка должна содержать схему")
	}

	if parsedURL.Host == "" && parsedURL.Opaque == "" {
		return fmt.Errorf("ссылка должна содержать адрес")
	}

	return nil
}

// ValidateInstitutionEmail проверяет адрес по списку разрешённых доменов.
// Домен сравнивается без учёта регистра и только целиком.
func ValidateInstitutionEmail(email string, domains []string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return fmt.Errorf("некорректный формат email")
	}

	if !localPartPattern.MatchString(local) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domain = strings.ToLower(domain)
	for _, allowed := range domains {
		if domain == strings.ToLower(allowed) {
			return nil
		}
	}
	return fmt.Errorf("домен %s не входит в список разрешённых", domain)
}
