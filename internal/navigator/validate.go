package navigator

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jusunglee/penzgtu-go/internal/models"
)

// Endpoint selects which parameters a request must carry
type Endpoint int

const (
	EndpointLevels Endpoint = iota
	EndpointForms
	EndpointTypes
	EndpointYears
	EndpointStreams
	EndpointGroups
	EndpointTimetable
)

var validate = validator.New()

// present reports whether a parameter was supplied
func present(v string) bool {
	return validate.Var(v, "required") == nil
}

// Validate checks q against the parameters endpoint requires.
// Checks run level, form, type, type restriction, year/stream presence,
// year/stream to type consistency, group; the first failure is returned.
func Validate(q models.TimetableQuery, endpoint Endpoint) error {
	if endpoint == EndpointLevels {
		return nil
	}
	if !present(q.Level) {
		return usageError("missing level")
	}
	if endpoint == EndpointForms {
		return nil
	}

	if !present(q.Form) {
		return usageError("missing form")
	}
	if endpoint == EndpointTypes {
		return nil
	}

	if !present(q.Type) {
		return usageError("missing type")
	}

	switch endpoint {
	case EndpointYears:
		if validate.Var(q.Type, "eq="+models.TypeTimetable) != nil {
			return usageError("/getYears is reserved for type=tt")
		}
		return nil
	case EndpointStreams:
		if validate.Var(q.Type, "eq="+models.TypeAttestation) != nil {
			return usageError("/getStreams is reserved for type=att")
		}
		return nil
	}

	hasYear, hasStream := present(q.Year), present(q.Stream)
	if !hasYear && !hasStream {
		return usageError("missing year/stream")
	}
	if q.Type == models.TypeTimetable && (!hasYear || hasStream) {
		return usageError("type=tt requires year")
	}
	if q.Type == models.TypeAttestation && (hasYear || !hasStream) {
		return usageError("type=att requires stream")
	}
	if endpoint == EndpointGroups {
		return nil
	}

	if !present(q.Group) {
		return usageError("missing group")
	}
	if q.Type != models.TypeTimetable && q.Type != models.TypeAttestation {
		return usageError(fmt.Sprintf("unsupported type %q", q.Type))
	}
	return nil
}
