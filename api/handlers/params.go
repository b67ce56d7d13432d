package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/jusunglee/penzgtu-go/internal/models"
	"github.com/jusunglee/penzgtu-go/internal/navigator"
)

// maxBodyBytes bounds request bodies; parameters are a handful of short strings
const maxBodyBytes = 64 << 10

// decodeQuery reads the request parameters from a JSON or form-encoded body
func decodeQuery(r *http.Request) (models.TimetableQuery, error) {
	params, err := decodeParams(r)
	if err != nil {
		return models.TimetableQuery{}, err
	}
	return models.TimetableQuery{
		Level:  params["level"],
		Form:   params["form"],
		Type:   params["type"],
		Year:   params["year"],
		Stream: params["stream"],
		Group:  params["group"],
	}, nil
}

func decodeParams(r *http.Request) (map[string]string, error) {
	if r.Body == nil {
		return map[string]string{}, nil
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return decodeJSONParams(r.Body)
	}

	if err := r.ParseForm(); err != nil {
		return nil, &navigator.UsageError{Message: "invalid request body"}
	}
	params := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		params[key] = r.PostForm.Get(key)
	}
	return params, nil
}

func decodeJSONParams(body io.Reader) (map[string]string, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{}, nil
		}
		return nil, &navigator.UsageError{Message: "invalid request body"}
	}

	params := make(map[string]string, len(raw))
	for key, value := range raw {
		params[key] = stringify(value)
	}
	return params, nil
}

// stringify renders a JSON scalar as a parameter value.
// null, false and the number zero count as absent.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		if f, err := val.Float64(); err == nil && f == 0 {
			return ""
		}
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return ""
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
