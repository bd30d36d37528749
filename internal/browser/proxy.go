package browser

import (
	"strings"

	"github.com/playwright-community/playwright-go"
)

// NoProxy is the proxy-list sentinel meaning "connect directly".
const NoProxy = "no_proxy"

// ParseProxy turns an "ip:port:username:password" slot into a Playwright
// proxy. The NoProxy sentinel and malformed slots yield nil, which disables
// proxying for the cycle rather than failing it.
func ParseProxy(slot string) *playwright.Proxy {
	if slot == NoProxy || !strings.Contains(slot, ":") {
		return nil
	}

	parts := strings.Split(slot, ":")
	switch len(parts) {
	case 2:
		return &playwright.Proxy{Server: "http://" + parts[0] + ":" + parts[1]}
	case 4:
		return &playwright.Proxy{
			Server:   "http://" + parts[0] + ":" + parts[1],
			Username: playwright.String(parts[2]),
			Password: playwright.String(parts[3]),
		}
	default:
		return nil
	}
}
