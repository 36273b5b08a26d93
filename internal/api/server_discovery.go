package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/chromescript/internal/controller"
)

func registerDiscoveryHandlers(api huma.API, svc Service) {
	type listProcessesOutput struct {
		Body struct {
			Processes []controller.ProcessInfo `json:"processes"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-processes", Method: http.MethodGet, Path: "/api/v1/processes", Summary: "List running browser processes and their profiles", Tags: []string{"Discovery"}},
		func(ctx context.Context, input *struct{}) (*listProcessesOutput, error) {
			procs, err := svc.ListProcesses(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listProcessesOutput{}
			out.Body.Processes = procs
			return out, nil
		})

	type profilesOutput struct {
		Body controller.ProfilesResult
	}
	huma.Register(api, huma.Operation{OperationID: "list-profiles", Method: http.MethodGet, Path: "/api/v1/profiles", Summary: "List profiles with live windows and the processes hosting them", Tags: []string{"Discovery"}},
		func(ctx context.Context, input *struct{}) (*profilesOutput, error) {
			result, err := svc.ListProfiles(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &profilesOutput{}
			out.Body = result
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "refresh-discovery", Method: http.MethodPost, Path: "/api/v1/refresh", Summary: "Rediscover processes and rebuild the profile map", Tags: []string{"Discovery"}},
		func(ctx context.Context, input *struct{}) (*profilesOutput, error) {
			result, err := svc.Refresh(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &profilesOutput{}
			out.Body = result
			return out, nil
		})
}
