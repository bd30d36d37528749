package captcha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// resultTokenHeader carries the value read from the challenge widget's
// page-embedded result element.
const resultTokenHeader = "X-Captcha-Result"

// VerifyRequest is the browser-session state needed to replay a solution
// against the site's verification endpoint.
type VerifyRequest struct {
	PageURL     string
	UserAgent   string
	ResultToken string
	Cookies     string
}

type verifyPayload struct {
	Captcha          string `json:"captcha"`
	CaptchaID        string `json:"captcha_id"`
	CaptchaOutput    string `json:"captcha_output"`
	GenTime          string `json:"gen_time"`
	HCaptchaResponse string `json:"hCaptchaResponse"`
	LotNumber        string `json:"lot_number"`
	PassToken        string `json:"pass_token"`
}

// Verifier submits solved challenge tokens back to the target site.
type Verifier struct {
	client   HTTPClient
	endpoint string
}

// NewVerifier creates a Verifier posting to the given verification endpoint.
func NewVerifier(client HTTPClient, endpoint string) *Verifier {
	return &Verifier{client: client, endpoint: endpoint}
}

// Verify posts the solution payload with the session's identity headers and
// cookie jar. Only HTTP 200 counts as success.
func (v *Verifier) Verify(ctx context.Context, vr VerifyRequest, sol *Solution) error {
	payload := verifyPayload{
		Captcha:       "geetest",
		CaptchaID:     sol.CaptchaID,
		CaptchaOutput: sol.CaptchaOutput,
		GenTime:       sol.GenTime,
		LotNumber:     sol.LotNumber,
		PassToken:     sol.PassToken,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", vr.UserAgent)
	req.Header.Set("Referer", vr.PageURL)
	req.Header.Set("Origin", origin(vr.PageURL))
	if vr.ResultToken != "" {
		req.Header.Set(resultTokenHeader, vr.ResultToken)
	}
	if vr.Cookies != "" {
		req.Header.Set("Cookie", vr.Cookies)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("verification rejected with status %d", resp.StatusCode)
	}
	return nil
}

func origin(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
