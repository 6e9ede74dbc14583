package mail

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
)

const (
	maxBodyBytes  = 1 << 20 // 1 MiB
	maxFormMemory = 1 << 20
)

// ParseRequest extracts the inbound webhook payload as a flat string map.
// JSON bodies, urlencoded forms, and multipart forms are all accepted.
// Anything unparsable yields an empty map; a bad body never fails a request.
func ParseRequest(r *http.Request) map[string]string {
	data := make(map[string]string)
	ctype := strings.ToLower(r.Header.Get("Content-Type"))

	switch {
	case strings.Contains(ctype, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err == nil {
			for k, vs := range r.PostForm {
				if len(vs) > 0 {
					data[k] = vs[0]
				}
			}
		}
	case strings.Contains(ctype, "multipart/form-data"):
		if err := r.ParseMultipartForm(maxFormMemory); err == nil {
			for k, vs := range r.MultipartForm.Value {
				if len(vs) > 0 {
					data[k] = vs[0]
				}
			}
		}
	default:
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return data
		}
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			return data
		}
		for k, v := range m {
			data[k] = stringify(v)
		}
	}

	return data
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
