package notify

import (
	"net/url"
	"strings"
)

// BuildWhatsAppURL строит ссылку wa.me с предзаполненным сообщением.
// Из номера убираются все символы кроме цифр.
func BuildWhatsAppURL(number, message string) string {
	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	encoded := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + digits.String() + "?text=" + encoded
}
