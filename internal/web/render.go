package web

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/restless-go/restless/jsonapi"
)

// IsJSONAPI checks if the request accepts JSON:API format
func IsJSONAPI(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return false
	}

	// Parse media type to handle parameters like charset
	mediaType, _, err := mime.ParseMediaType(accept)
	if err != nil {
		// Fall back to simple check if parsing fails
		return strings.Contains(accept, jsonapi.MediaType)
	}

	return mediaType == jsonapi.MediaType
}

// negotiate rejects requests whose Accept header cannot take the JSON:API
// media type. Absent and wildcard Accept headers pass through.
func negotiate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept := r.Header.Get("Accept")
		if accept == "" || IsJSONAPI(r) ||
			strings.Contains(accept, "*/*") || strings.Contains(accept, "application/*") {
			next.ServeHTTP(w, r)
			return
		}
		renderErrors(w, http.StatusNotAcceptable,
			jsonapi.NewError(http.StatusNotAcceptable,
				fmt.Sprintf("this endpoint only produces %s", jsonapi.MediaType)))
	})
}

// renderDocument writes a document as UTF-8 JSON with the JSON:API media
// type. It marshals FIRST, before touching the response, so nothing is
// written if marshaling fails.
func renderDocument(w http.ResponseWriter, status int, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", jsonapi.MediaType)
	w.WriteHeader(status)
	_, err = w.Write(data)
	return err
}

// renderErrors writes a JSON:API error document.
func renderErrors(w http.ResponseWriter, status int, errs ...*jsonapi.ErrorObject) {
	// Marshaling plain error objects cannot fail; ignore the write error the
	// same way the data path does once headers are out.
	_ = renderDocument(w, status, jsonapi.NewErrorDocument(errs...))
}

// ParseFields extracts sparse fieldsets from query parameters of the form
// fields[TYPE]=a,b. The returned map keys are resource type names; requesting
// fields for an unknown type is not an error, the entry simply never matches.
func ParseFields(r *http.Request) map[string][]string {
	fields := make(map[string][]string)
	for key, values := range r.URL.Query() {
		if !strings.HasPrefix(key, "fields[") || !strings.HasSuffix(key, "]") {
			continue
		}
		typ := key[len("fields[") : len(key)-1]
		if typ == "" {
			continue
		}
		for _, value := range values {
			for _, name := range strings.Split(value, ",") {
				if name = strings.TrimSpace(name); name != "" {
					fields[typ] = append(fields[typ], name)
				}
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
