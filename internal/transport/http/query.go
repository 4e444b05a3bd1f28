package http

import (
	"net/http"

	"github.com/MayaS12/Malnutrition-dashboard/internal/middleware"
	api "github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/api/v1"
)

// parsePanelQuery reads level and status from the query string. Missing
// values take the dashboard defaults; present values must be valid.
func parsePanelQuery(r *http.Request, v *middleware.Validator) (api.PanelQuery, error) {
	values := r.URL.Query()
	q := api.PanelQuery{
		Level:  values.Get("level"),
		Status: values.Get("status"),
	}.WithDefaults()

	if err := v.Struct(q); err != nil {
		return api.PanelQuery{}, err
	}
	return q, nil
}
