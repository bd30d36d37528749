package captcha

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// scriptedTransport returns canned responses in order and records requests.
type scriptedTransport struct {
	responses []string
	statuses  []int
	err       error
	requests  []*http.Request
	bodies    []string
}

func (m *scriptedTransport) Do(req *http.Request) (*http.Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	body, _ := io.ReadAll(req.Body)
	m.requests = append(m.requests, req)
	m.bodies = append(m.bodies, string(body))

	i := len(m.requests) - 1
	status := http.StatusOK
	if i < len(m.statuses) {
		status = m.statuses[i]
	}
	resp := "{}"
	if i < len(m.responses) {
		resp = m.responses[i]
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(resp)),
	}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSolver(transport *scriptedTransport) *Solver {
	s := NewSolver(transport, "api-key", "https://solver.test/createTask", "https://solver.test/getTaskResult", testLogger())
	s.SetPollInterval(time.Millisecond)
	return s
}

const readySolution = `{
	"errorId": 0,
	"status": "ready",
	"solution": {
		"captcha_id": "0123456789abcdef0123456789abcdef",
		"captcha_output": "output-blob",
		"gen_time": "1700000000",
		"lot_number": "lot-42",
		"pass_token": "pass-xyz"
	}
}`

func TestSolve(t *testing.T) {
	tests := []struct {
		name      string
		transport *scriptedTransport
		want      *Solution
		wantErr   bool
		wantCalls int
	}{
		{
			name: "immediate solution",
			transport: &scriptedTransport{responses: []string{
				`{"errorId":0,"taskId":7001}`,
				readySolution,
			}},
			want: &Solution{
				CaptchaID:     "0123456789abcdef0123456789abcdef",
				CaptchaOutput: "output-blob",
				GenTime:       "1700000000",
				LotNumber:     "lot-42",
				PassToken:     "pass-xyz",
			},
			wantCalls: 2,
		},
		{
			name: "processing then ready",
			transport: &scriptedTransport{responses: []string{
				`{"errorId":0,"taskId":7002}`,
				`{"errorId":0,"status":"processing"}`,
				`{"errorId":0,"status":"processing"}`,
				readySolution,
			}},
			want: &Solution{
				CaptchaID:     "0123456789abcdef0123456789abcdef",
				CaptchaOutput: "output-blob",
				GenTime:       "1700000000",
				LotNumber:     "lot-42",
				PassToken:     "pass-xyz",
			},
			wantCalls: 4,
		},
		{
			name: "create task error",
			transport: &scriptedTransport{responses: []string{
				`{"errorId":1,"errorDescription":"ERROR_KEY_DOES_NOT_EXIST"}`,
			}},
			wantErr:   true,
			wantCalls: 1,
		},
		{
			name: "terminal failure status",
			transport: &scriptedTransport{responses: []string{
				`{"errorId":0,"taskId":7003}`,
				`{"errorId":12,"status":"failed","errorDescription":"ERROR_CAPTCHA_UNSOLVABLE"}`,
			}},
			wantErr:   true,
			wantCalls: 2,
		},
		{
			name: "terminal status without solution",
			transport: &scriptedTransport{responses: []string{
				`{"errorId":0,"taskId":7004}`,
				`{"errorId":0,"status":"ready"}`,
			}},
			wantErr:   true,
			wantCalls: 2,
		},
		{
			name:      "network error propagates",
			transport: &scriptedTransport{err: io.ErrUnexpectedEOF},
			wantErr:   true,
		},
		{
			name: "http error status",
			transport: &scriptedTransport{
				responses: []string{`{}`},
				statuses:  []int{http.StatusBadGateway},
			},
			wantErr:   true,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSolver(tt.transport)
			got, err := s.Solve(context.Background(), "https://www.avito.ru/sankt-peterburg?q=ipad", "0123456789abcdef0123456789abcdef")

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("solution mismatch (-want +got):\n%s", diff)
			}
			if tt.wantCalls != 0 && len(tt.transport.requests) != tt.wantCalls {
				t.Errorf("request count = %d, want %d", len(tt.transport.requests), tt.wantCalls)
			}
		})
	}
}

func TestSolvePollBudget(t *testing.T) {
	processing := make([]string, 0, 22)
	processing = append(processing, `{"errorId":0,"taskId":7005}`)
	for i := 0; i < 21; i++ {
		processing = append(processing, `{"errorId":0,"status":"processing"}`)
	}
	transport := &scriptedTransport{responses: processing}

	s := newTestSolver(transport)
	_, err := s.Solve(context.Background(), "https://example.com", "id")
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	// 1 create + 20 poll attempts, no more.
	if got := len(transport.requests); got != 21 {
		t.Errorf("request count = %d, want 21", got)
	}
}

func TestCreateTaskPayload(t *testing.T) {
	transport := &scriptedTransport{responses: []string{
		`{"errorId":0,"taskId":1}`,
		readySolution,
	}}
	s := newTestSolver(transport)

	if _, err := s.Solve(context.Background(), "https://www.avito.ru/page", "deadbeef"); err != nil {
		t.Fatalf("solve: %v", err)
	}

	var req createTaskRequest
	if err := json.Unmarshal([]byte(transport.bodies[0]), &req); err != nil {
		t.Fatalf("decode create payload: %v", err)
	}

	want := createTaskRequest{
		ClientKey: "api-key",
		Task: taskSpec{
			Type:           "GeeTestTaskProxyless",
			WebsiteURL:     "https://www.avito.ru/page",
			Version:        4,
			InitParameters: initParameters{CaptchaID: "deadbeef"},
		},
	}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Errorf("create payload mismatch (-want +got):\n%s", diff)
	}
}
