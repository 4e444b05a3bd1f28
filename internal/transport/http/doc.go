// Package http implements the HTTP handlers of the malnutrition dashboard.
// Handlers are a thin layer over the services package: they parse and
// validate the query, call one service method and format the response.
//
// # Endpoints
//
//	GET /                                 redirect to /dashboard
//	GET /dashboard?tab=&level=&status=    server-rendered page with five tabs
//	GET /api/panels/prevalence            ranked rows and highlight values
//	GET /api/panels/{demographics|nutrition|program|mother-child}
//	GET /api/charts/{name}.svg            rendered chart
//	GET /api/reconciliation               place name mappings per level
//	GET /api/export.{csv|xlsx}            reconciled dataset download
//	GET /api/health, /api/health/ready, /api/health/live, /api/version
//
// # Handler Structure
//
//	func (h *Handler) GetSomething(w http.ResponseWriter, r *http.Request) {
//	    q, err := parsePanelQuery(r, h.validator)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//	    resp, err := h.service.Something(r.Context(), q)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, serviceError(err, q.Level))
//	        return
//	    }
//	    render.JSON(w, r, resp)
//	}
//
// # Error Handling
//
// All errors are written as RFC 7807 problem details by the shared
// errors.ErrorHandler. Invalid query values answer 400, unknown charts and
// sections the dataset cannot support answer 404, and a map whose boundary
// document failed to load answers 503 GEOMETRY_UNAVAILABLE.
//
// # Testing
//
// Handlers are tested with httptest against testify mocks of the service
// interfaces in service_interfaces.go.
package http
