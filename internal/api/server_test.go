package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dgnsrekt/chromescript/internal/controller"
	"github.com/dgnsrekt/chromescript/internal/discovery"
	"github.com/dgnsrekt/chromescript/internal/types"
)

type stubService struct {
	lastSel  discovery.Selector
	lastOpen controller.OpenRequest
	err      error
}

func (s *stubService) ListProcesses(ctx context.Context) ([]controller.ProcessInfo, error) {
	return []controller.ProcessInfo{{PID: 42, ConfigDir: "/cfg", Profiles: []string{"Work"}}}, s.err
}

func (s *stubService) ListProfiles(ctx context.Context) (controller.ProfilesResult, error) {
	return controller.ProfilesResult{
		Profiles: []discovery.ProfileSummary{{Name: "Work", Processes: []discovery.ProcessWindows{{PID: 42, ConfigDir: "/cfg", WindowIDs: []int{5}}}}},
		Failures: []discovery.Failure{},
	}, s.err
}

func (s *stubService) Refresh(ctx context.Context) (controller.ProfilesResult, error) {
	return s.ListProfiles(ctx)
}

func (s *stubService) ListWindows(ctx context.Context, sel discovery.Selector) ([]controller.WindowInfo, error) {
	s.lastSel = sel
	if s.err != nil {
		return nil, s.err
	}
	return []controller.WindowInfo{{ID: 5, URL: "https://work.example"}}, nil
}

func (s *stubService) Open(ctx context.Context, req controller.OpenRequest) (controller.OpenResult, error) {
	s.lastOpen = req
	if s.err != nil {
		return controller.OpenResult{}, s.err
	}
	return controller.OpenResult{WindowID: 5, URL: req.URL, Mode: controller.ModeNewTab}, nil
}

func (s *stubService) Activate(ctx context.Context, sel discovery.Selector) (controller.WindowInfo, error) {
	s.lastSel = sel
	return controller.WindowInfo{ID: 5}, s.err
}

func (s *stubService) Reload(ctx context.Context, sel discovery.Selector) (controller.WindowInfo, error) {
	s.lastSel = sel
	return controller.WindowInfo{ID: 5}, s.err
}

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestDocsDarkMode(t *testing.T) {
	w := serve(t, NewServer(&stubService{}), http.MethodGet, "/docs", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `data-theme="dark"`) {
		t.Fatalf("docs missing dark theme marker")
	}
}

func TestHealth(t *testing.T) {
	w := serve(t, NewServer(&stubService{}), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("GET /health = %d %s", w.Code, w.Body.String())
	}
}

func TestListProfiles(t *testing.T) {
	w := serve(t, NewServer(&stubService{}), http.MethodGet, "/api/v1/profiles", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var body controller.ProfilesResult
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if len(body.Profiles) != 1 || body.Profiles[0].Name != "Work" {
		t.Fatalf("profiles = %+v", body.Profiles)
	}
}

func TestListWindowsPassesSelector(t *testing.T) {
	svc := &stubService{}
	w := serve(t, NewServer(svc), http.MethodGet, "/api/v1/windows?profile=Work", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if svc.lastSel != discovery.ByProfile("Work") {
		t.Fatalf("selector = %+v; want profile=Work", svc.lastSel)
	}
}

func TestOpenPassesRequest(t *testing.T) {
	svc := &stubService{}
	w := serve(t, NewServer(svc), http.MethodPost, "/api/v1/open", `{"url":"https://a.example","new_tab":true,"pid":42}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	want := controller.OpenRequest{URL: "https://a.example", NewTab: true, Selector: discovery.ByPID(42)}
	if svc.lastOpen != want {
		t.Fatalf("request = %+v; want %+v", svc.lastOpen, want)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{code: types.CodeValidation, status: http.StatusBadRequest},
		{code: types.CodeNotFound, status: http.StatusNotFound},
		{code: types.CodeCorruptSession, status: http.StatusUnprocessableEntity},
		{code: types.CodeCDPUnavailable, status: http.StatusBadGateway},
		{code: types.CodeLocatorUnavailable, status: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		svc := &stubService{err: types.NewError(tt.code, "boom", nil)}
		w := serve(t, NewServer(svc), http.MethodPost, "/api/v1/activate", `{"profile":"Work"}`)
		if w.Code != tt.status {
			t.Fatalf("%s: status = %d, want %d", tt.code, w.Code, tt.status)
		}
	}
}

func TestRequestLoggerLogsRequest(t *testing.T) {
	var buf bytes.Buffer
	oldLogger := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() {
		slog.SetDefault(oldLogger)
	})

	serve(t, NewServer(&stubService{}), http.MethodGet, "/api/v1/processes", "")
	out := buf.String()
	if !strings.Contains(out, "http request") || !strings.Contains(out, "path=/api/v1/processes") || !strings.Contains(out, "status=200") {
		t.Fatalf("log output = %q; want request line", out)
	}
}
