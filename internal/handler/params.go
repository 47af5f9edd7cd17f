package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/internal/domain"
)

// pathParam binds a simple-style path parameter into dest using the same
// binder generated OpenAPI servers use. On failure it writes a 422 and
// reports false.
func pathParam(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		requestError(w, "invalid "+name+": "+err.Error())
		return false
	}
	return true
}

func tripIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var id openapi_types.UUID
	ok := pathParam(w, r, "tripId", &id)
	return id, ok
}

// dateParam binds the {date} day key and returns it in domain.DateLayout.
func dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	var d openapi_types.Date
	if !pathParam(w, r, "date", &d) {
		return "", false
	}
	return d.Format(domain.DateLayout), true
}

// queryParam binds an optional form-style query parameter. dest is left
// untouched when the parameter is absent.
func queryParam(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		requestError(w, "invalid "+name+": "+err.Error())
		return false
	}
	return true
}
