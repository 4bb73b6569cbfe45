// Package adminapi implements the catalog REST handlers.
package adminapi

import "github.com/verdantlabs/catalogd/internal/webserver"

// Init registers all API routes on srv.
func Init(srv *webserver.AdminServer) {
	registerAuthRoutes(srv)
	registerProductRoutes(srv)
	registerCategoryRoutes(srv)
	registerTeamRoutes(srv)
	registerCertificateRoutes(srv)
	registerContactRoutes(srv)
	registerMessageRoutes(srv)
	registerDashboardRoutes(srv)
	registerUploadRoutes(srv)
}
