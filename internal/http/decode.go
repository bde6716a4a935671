package http

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
)

// Query schema decoder: caches structs, and safe for sharing.
var decoder *schema.Decoder

func init() {
	decoder = schema.NewDecoder()
	// Don't error if there are keys in the source map that are not present in
	// the destination struct.
	decoder.IgnoreUnknownKeys(true)
}

// DecodeQuery unmarshals a query string (k1=v1&k2=v2...) into dst.
func DecodeQuery(dst any, query url.Values) error {
	if err := decoder.Decode(dst, query); err != nil {
		return BadRequest(err.Error())
	}
	return nil
}

// DecodeRoute decodes mux route parameters (e.g. /cards/{name}) into dst.
// The router matches on the encoded path, so parameters are unescaped here;
// this lets a name contain an escaped slash.
func DecodeRoute(dst any, r *http.Request) error {
	// decoder only takes map[string][]string, not map[string]string
	vars := make(map[string][]string)
	for k, v := range mux.Vars(r) {
		unescaped, err := url.PathUnescape(v)
		if err != nil {
			return BadRequest(err.Error())
		}
		vars[k] = []string{unescaped}
	}
	if err := decoder.Decode(dst, vars); err != nil {
		return BadRequest(err.Error())
	}
	return nil
}
