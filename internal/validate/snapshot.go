package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	maxJSONBody      = 1 << 20
	maxMultipartBody = 32 << 20
)

var errMalformedBody = errors.New("malformed request body")

// snapshot is a read-only view of the request fields rules can address.
type snapshot struct {
	body  map[string]any
	query url.Values
	path  map[string]string
}

// takeSnapshot reads the request once. A JSON body is restored so handlers
// can decode it again; form values stay cached on the request.
func takeSnapshot(r *http.Request) (*snapshot, error) {
	s := &snapshot{
		body:  map[string]any{},
		query: r.URL.Query(),
		path:  map[string]string{},
	}

	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, k := range rctx.URLParams.Keys {
			if i < len(rctx.URLParams.Values) {
				s.path[k] = rctx.URLParams.Values[i]
			}
		}
	}

	if r.Body == nil || r.Body == http.NoBody {
		return s, nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody))
		if err != nil {
			return nil, fmt.Errorf("validate.takeSnapshot: read body: %w", err)
		}
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(raw))
		if len(bytes.TrimSpace(raw)) == 0 {
			return s, nil
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&s.body); err != nil {
			return nil, errMalformedBody
		}

	case mediaType == "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartBody); err != nil {
			return nil, errMalformedBody
		}
		addForm(s.body, r.MultipartForm.Value)

	case mediaType == "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, errMalformedBody
		}
		addForm(s.body, r.PostForm)
	}

	return s, nil
}

func addForm(dst map[string]any, values map[string][]string) {
	for k, vs := range values {
		switch len(vs) {
		case 0:
		case 1:
			dst[k] = vs[0]
		default:
			list := make([]any, len(vs))
			for i, v := range vs {
				list[i] = v
			}
			dst[k] = list
		}
	}
}

// lookup returns the raw value of a field. Empty query and path values count
// as absent.
func (s *snapshot) lookup(loc Location, field string) (any, bool) {
	switch loc {
	case Body:
		v, ok := s.body[field]
		return v, ok && v != nil
	case Query:
		vs := s.query[field]
		switch {
		case len(vs) == 0 || (len(vs) == 1 && vs[0] == ""):
			return nil, false
		case len(vs) == 1:
			return vs[0], true
		default:
			list := make([]any, len(vs))
			for i, v := range vs {
				list[i] = v
			}
			return list, true
		}
	case Path:
		v, ok := s.path[field]
		return v, ok && v != ""
	default:
		return nil, false
	}
}
