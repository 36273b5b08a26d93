package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgnsrekt/chromescript/internal/controller"
	"github.com/dgnsrekt/chromescript/internal/discovery"
	"github.com/dgnsrekt/chromescript/internal/types"
)

type Service interface {
	ListProcesses(ctx context.Context) ([]controller.ProcessInfo, error)
	ListProfiles(ctx context.Context) (controller.ProfilesResult, error)
	Refresh(ctx context.Context) (controller.ProfilesResult, error)
	ListWindows(ctx context.Context, sel discovery.Selector) ([]controller.WindowInfo, error)
	Open(ctx context.Context, req controller.OpenRequest) (controller.OpenResult, error)
	Activate(ctx context.Context, sel discovery.Selector) (controller.WindowInfo, error)
	Reload(ctx context.Context, sel discovery.Selector) (controller.WindowInfo, error)
}

// selectorQuery picks a browser process from query parameters.
type selectorQuery struct {
	PID     int    `query:"pid" doc:"Browser process ID"`
	Path    string `query:"path" doc:"Browser config directory"`
	Profile string `query:"profile" doc:"Profile display name"`
}

func (q selectorQuery) selector() discovery.Selector {
	return discovery.Selector{PID: q.PID, Path: q.Path, Profile: q.Profile}
}

// selectorBody picks a browser process from a JSON body.
type selectorBody struct {
	PID     int    `json:"pid,omitempty" doc:"Browser process ID"`
	Path    string `json:"path,omitempty" doc:"Browser config directory"`
	Profile string `json:"profile,omitempty" doc:"Profile display name"`
}

func (b selectorBody) selector() discovery.Selector {
	return discovery.Selector{PID: b.PID, Path: b.Path, Profile: b.Profile}
}

func NewServer(svc Service) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("chromescript API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})

	registerHealthHandlers(api)
	registerDiscoveryHandlers(api, svc)
	registerWindowHandlers(api, svc)

	return router
}

func registerHealthHandlers(api huma.API) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *types.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case types.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case types.CodeNotFound:
			return huma.Error404NotFound(coded.Message)
		case types.CodeCorruptSession, types.CodeSessionUnavailable, types.CodeConfigUnavailable:
			return huma.Error422UnprocessableEntity(coded.Message)
		case types.CodeCDPUnavailable, types.CodeCommandFailed:
			return huma.Error502BadGateway(coded.Message)
		case types.CodeLocatorUnavailable:
			return huma.Error503ServiceUnavailable(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return huma.Error504GatewayTimeout(err.Error())
	}
	return huma.Error500InternalServerError(err.Error())
}
