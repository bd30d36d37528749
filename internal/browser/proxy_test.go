package browser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/playwright-community/playwright-go"
)

func TestParseProxy(t *testing.T) {
	tests := []struct {
		name string
		slot string
		want *playwright.Proxy
	}{
		{
			name: "full slot with credentials",
			slot: "10.0.0.1:8080:user:secret",
			want: &playwright.Proxy{
				Server:   "http://10.0.0.1:8080",
				Username: playwright.String("user"),
				Password: playwright.String("secret"),
			},
		},
		{
			name: "host and port only",
			slot: "10.0.0.1:3128",
			want: &playwright.Proxy{Server: "http://10.0.0.1:3128"},
		},
		{
			name: "no_proxy sentinel",
			slot: "no_proxy",
			want: nil,
		},
		{
			name: "malformed without colon",
			slot: "not-a-proxy",
			want: nil,
		},
		{
			name: "malformed part count",
			slot: "a:b:c",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseProxy(tt.slot)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseProxy(%q) mismatch (-want +got):\n%s", tt.slot, diff)
			}
		})
	}
}
