package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

// URIEncoding rejects requests whose path or query decodes to something other
// than UTF-8, or whose query carries malformed percent-encoding. A path with
// malformed escapes never gets this far: net/http answers 400 while parsing
// the request line.
func URIEncoding(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !utf8.ValidString(r.URL.Path) || !validQueryEncoding(r.URL.RawQuery) {
			jsonError(w, http.StatusBadRequest, "Bad URI Encoding")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func validQueryEncoding(raw string) bool {
	for raw != "" {
		var part string
		part, raw, _ = strings.Cut(raw, "&")
		key, value, _ := strings.Cut(part, "=")
		if !validComponent(key) || !validComponent(value) {
			return false
		}
	}
	return true
}

func validComponent(s string) bool {
	decoded, err := url.QueryUnescape(s)
	return err == nil && utf8.ValidString(decoded)
}
