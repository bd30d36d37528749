package captcha

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var testSolution = &Solution{
	CaptchaID:     "0123456789abcdef0123456789abcdef",
	CaptchaOutput: "output-blob",
	GenTime:       "1700000000",
	LotNumber:     "lot-42",
	PassToken:     "pass-xyz",
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name      string
		transport *scriptedTransport
		wantErr   bool
	}{
		{
			name:      "accepted",
			transport: &scriptedTransport{responses: []string{`{"status":"success"}`}},
		},
		{
			name: "rejected non-200",
			transport: &scriptedTransport{
				responses: []string{`{"status":"fail"}`},
				statuses:  []int{http.StatusForbidden},
			},
			wantErr: true,
		},
		{
			name:      "network error",
			transport: &scriptedTransport{err: io.ErrUnexpectedEOF},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVerifier(tt.transport, "https://www.avito.ru/web/1/captcha/verify")
			vr := VerifyRequest{
				PageURL:     "https://www.avito.ru/sankt-peterburg?q=ipad",
				UserAgent:   "test-agent",
				ResultToken: "tok-1",
				Cookies:     "sid=abc; uid=42",
			}

			err := v.Verify(context.Background(), vr, testSolution)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestVerifyRequestShape(t *testing.T) {
	transport := &scriptedTransport{responses: []string{`{}`}}
	v := NewVerifier(transport, "https://www.avito.ru/web/1/captcha/verify")

	vr := VerifyRequest{
		PageURL:     "https://www.avito.ru/sankt-peterburg?q=ipad",
		UserAgent:   "test-agent",
		ResultToken: "tok-1",
		Cookies:     "sid=abc; uid=42",
	}
	if err := v.Verify(context.Background(), vr, testSolution); err != nil {
		t.Fatalf("verify: %v", err)
	}

	req := transport.requests[0]
	headers := map[string]string{
		"Content-Type":     "application/json",
		"User-Agent":       "test-agent",
		"Referer":          "https://www.avito.ru/sankt-peterburg?q=ipad",
		"Origin":           "https://www.avito.ru",
		"X-Captcha-Result": "tok-1",
		"Cookie":           "sid=abc; uid=42",
	}
	for name, want := range headers {
		if got := req.Header.Get(name); got != want {
			t.Errorf("header %s = %q, want %q", name, got, want)
		}
	}

	var payload verifyPayload
	if err := json.Unmarshal([]byte(transport.bodies[0]), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	want := verifyPayload{
		Captcha:       "geetest",
		CaptchaID:     testSolution.CaptchaID,
		CaptchaOutput: testSolution.CaptchaOutput,
		GenTime:       testSolution.GenTime,
		LotNumber:     testSolution.LotNumber,
		PassToken:     testSolution.PassToken,
	}
	if diff := cmp.Diff(want, payload); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestVerifyOmitsEmptyHeaders(t *testing.T) {
	transport := &scriptedTransport{responses: []string{`{}`}}
	v := NewVerifier(transport, "https://www.avito.ru/web/1/captcha/verify")

	vr := VerifyRequest{
		PageURL:   "https://www.avito.ru/page",
		UserAgent: "test-agent",
	}
	if err := v.Verify(context.Background(), vr, testSolution); err != nil {
		t.Fatalf("verify: %v", err)
	}

	req := transport.requests[0]
	if got := req.Header.Values("X-Captcha-Result"); len(got) != 0 {
		t.Errorf("expected no result token header, got %v", got)
	}
	if got := req.Header.Values("Cookie"); len(got) != 0 {
		t.Errorf("expected no cookie header, got %v", got)
	}
}

func TestOrigin(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.avito.ru/sankt-peterburg?q=ipad", "https://www.avito.ru"},
		{"http://host:8080/path", "http://host:8080"},
		{"not a url at all\x00", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := origin(tt.url); got != tt.want {
			t.Errorf("origin(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
