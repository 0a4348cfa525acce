package http

import (
	"github.com/novaera/caprail/internal/service"
)

// Handlers bundles the services behind the HTTP surface.
type Handlers struct {
	auth      *service.AuthService
	access    *service.AccessService
	clients   *service.ClientService
	pipeline  *service.PipelineService
	leads     *service.LeadService
	risks     *service.RiskService
	analysis  *service.AnalysisService
	dashboard *service.DashboardService
}

// NewHandlers creates the handler set.
func NewHandlers(
	auth *service.AuthService,
	access *service.AccessService,
	clients *service.ClientService,
	pipeline *service.PipelineService,
	leads *service.LeadService,
	risks *service.RiskService,
	analysis *service.AnalysisService,
	dashboard *service.DashboardService,
) *Handlers {
	return &Handlers{
		auth:      auth,
		access:    access,
		clients:   clients,
		pipeline:  pipeline,
		leads:     leads,
		risks:     risks,
		analysis:  analysis,
		dashboard: dashboard,
	}
}
