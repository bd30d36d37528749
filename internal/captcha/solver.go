package captcha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Solution holds the fields of a solved interactive puzzle, replayed against
// the site's verification endpoint.
type Solution struct {
	CaptchaID     string `json:"captcha_id"`
	CaptchaOutput string `json:"captcha_output"`
	GenTime       string `json:"gen_time"`
	LotNumber     string `json:"lot_number"`
	PassToken     string `json:"pass_token"`
}

// Solver submits challenge tasks to an external solving service and polls
// for the solution.
type Solver struct {
	client        HTTPClient
	apiKey        string
	createTaskURL string
	resultURL     string
	pollInterval  time.Duration
	maxAttempts   int
	log           *slog.Logger
}

// NewSolver creates a Solver talking to a 2captcha-style task API.
func NewSolver(client HTTPClient, apiKey, createTaskURL, resultURL string, log *slog.Logger) *Solver {
	return &Solver{
		client:        client,
		apiKey:        apiKey,
		createTaskURL: createTaskURL,
		resultURL:     resultURL,
		pollInterval:  5 * time.Second,
		maxAttempts:   20,
		log:           log,
	}
}

// SetPollInterval overrides the default 5-second poll interval.
func (s *Solver) SetPollInterval(d time.Duration) {
	s.pollInterval = d
}

// Solve submits the challenge and polls until the service returns a terminal
// status or the attempt budget is exhausted.
func (s *Solver) Solve(ctx context.Context, pageURL, captchaID string) (*Solution, error) {
	taskID, err := s.createTask(ctx, pageURL, captchaID)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.log.Info("solve task created", "task_id", taskID)

	return s.pollResult(ctx, taskID)
}

type createTaskRequest struct {
	ClientKey string   `json:"clientKey"`
	Task      taskSpec `json:"task"`
}

type taskSpec struct {
	Type           string         `json:"type"`
	WebsiteURL     string         `json:"websiteURL"`
	Version        int            `json:"version"`
	InitParameters initParameters `json:"initParameters"`
}

type initParameters struct {
	CaptchaID string `json:"captcha_id"`
}

type createTaskResponse struct {
	ErrorID          int    `json:"errorId"`
	ErrorDescription string `json:"errorDescription"`
	TaskID           int64  `json:"taskId"`
}

func (s *Solver) createTask(ctx context.Context, pageURL, captchaID string) (int64, error) {
	req := createTaskRequest{
		ClientKey: s.apiKey,
		Task: taskSpec{
			Type:           "GeeTestTaskProxyless",
			WebsiteURL:     pageURL,
			Version:        4,
			InitParameters: initParameters{CaptchaID: captchaID},
		},
	}

	var resp createTaskResponse
	if err := s.post(ctx, s.createTaskURL, req, &resp); err != nil {
		return 0, err
	}
	if resp.ErrorID != 0 {
		return 0, fmt.Errorf("solving service error: %s", resp.ErrorDescription)
	}
	return resp.TaskID, nil
}

type taskResultRequest struct {
	ClientKey string `json:"clientKey"`
	TaskID    int64  `json:"taskId"`
}

type taskResultResponse struct {
	ErrorID          int       `json:"errorId"`
	ErrorDescription string    `json:"errorDescription"`
	Status           string    `json:"status"`
	Solution         *Solution `json:"solution"`
}

// pollResult queries the service at a fixed interval. A "processing" status
// means try again; any other status is terminal.
func (s *Solver) pollResult(ctx context.Context, taskID int64) (*Solution, error) {
	req := taskResultRequest{ClientKey: s.apiKey, TaskID: taskID}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		var resp taskResultResponse
		if err := s.post(ctx, s.resultURL, req, &resp); err != nil {
			return nil, err
		}

		if resp.Status == "processing" {
			s.log.Debug("solution not ready", "task_id", taskID, "attempt", attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.pollInterval):
			}
			continue
		}

		if resp.ErrorID != 0 {
			return nil, fmt.Errorf("solving service error: %s", resp.ErrorDescription)
		}
		if resp.Solution == nil {
			return nil, fmt.Errorf("terminal status %q without solution", resp.Status)
		}
		return resp.Solution, nil
	}

	return nil, fmt.Errorf("no solution after %d attempts", s.maxAttempts)
}

func (s *Solver) post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
