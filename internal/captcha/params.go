package captcha

import (
	"errors"
	"regexp"
	"strings"
)

var (
	strictCaptchaID = regexp.MustCompile(`captcha_id=([a-f0-9]{32})`)
	looseCaptchaID  = regexp.MustCompile(`captcha_id=([^&"']+)`)
)

// ExtractCaptchaID pulls the challenge session ID out of page markup.
// It first tries the strict fixed-length hex form and falls back to a looser
// "up to the next delimiter" match trimmed at the first tag boundary.
func ExtractCaptchaID(html string) (string, error) {
	if m := strictCaptchaID.FindStringSubmatch(html); m != nil {
		return m[1], nil
	}
	if m := looseCaptchaID.FindStringSubmatch(html); m != nil {
		id, _, _ := strings.Cut(m[1], "<")
		id = strings.TrimSpace(id)
		if id != "" {
			return id, nil
		}
	}
	return "", errors.New("captcha_id not found in page markup")
}
