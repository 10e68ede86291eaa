package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// decodeJSON decodes r's body into dst. An empty body is treated as a
// zero-valued request rather than an error, since several endpoints accept
// an all-optional body.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("httpapi: decode request body: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
