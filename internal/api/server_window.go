package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/chromescript/internal/controller"
	"github.com/dgnsrekt/chromescript/internal/discovery"
)

func registerWindowHandlers(api huma.API, svc Service) {
	type listWindowsOutput struct {
		Body struct {
			Windows []controller.WindowInfo `json:"windows"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-windows", Method: http.MethodGet, Path: "/api/v1/windows", Summary: "List live windows of the selected browser", Tags: []string{"Windows"}},
		func(ctx context.Context, input *selectorQuery) (*listWindowsOutput, error) {
			windows, err := svc.ListWindows(ctx, input.selector())
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listWindowsOutput{}
			out.Body.Windows = windows
			return out, nil
		})

	type openInput struct {
		Body struct {
			URL       string `json:"url" doc:"Absolute URL to open"`
			NewTab    bool   `json:"new_tab,omitempty" doc:"Open in a new tab instead of navigating the active tab"`
			NewWindow bool   `json:"new_window,omitempty" doc:"Open in a new window"`
			PID       int    `json:"pid,omitempty" doc:"Browser process ID"`
			Path      string `json:"path,omitempty" doc:"Browser config directory"`
			Profile   string `json:"profile,omitempty" doc:"Profile display name"`
		}
	}
	type openOutput struct {
		Body controller.OpenResult
	}
	huma.Register(api, huma.Operation{OperationID: "open-url", Method: http.MethodPost, Path: "/api/v1/open", Summary: "Open a URL in the selected browser", Tags: []string{"Windows"}},
		func(ctx context.Context, input *openInput) (*openOutput, error) {
			result, err := svc.Open(ctx, controller.OpenRequest{
				URL:       input.Body.URL,
				NewTab:    input.Body.NewTab,
				NewWindow: input.Body.NewWindow,
				Selector:  discovery.Selector{PID: input.Body.PID, Path: input.Body.Path, Profile: input.Body.Profile},
			})
			if err != nil {
				return nil, mapErr(err)
			}
			out := &openOutput{}
			out.Body = result
			return out, nil
		})

	type windowOutput struct {
		Body controller.WindowInfo
	}
	huma.Register(api, huma.Operation{OperationID: "activate-window", Method: http.MethodPost, Path: "/api/v1/activate", Summary: "Bring the selected window to the front", Tags: []string{"Windows"}},
		func(ctx context.Context, input *struct{ Body selectorBody }) (*windowOutput, error) {
			info, err := svc.Activate(ctx, input.Body.selector())
			if err != nil {
				return nil, mapErr(err)
			}
			out := &windowOutput{}
			out.Body = info
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "reload-window", Method: http.MethodPost, Path: "/api/v1/reload", Summary: "Reload the active tab of the selected window", Tags: []string{"Windows"}},
		func(ctx context.Context, input *struct{ Body selectorBody }) (*windowOutput, error) {
			info, err := svc.Reload(ctx, input.Body.selector())
			if err != nil {
				return nil, mapErr(err)
			}
			out := &windowOutput{}
			out.Body = info
			return out, nil
		})
}
