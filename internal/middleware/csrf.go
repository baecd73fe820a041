package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"

	"github.com/noah-isme/coaching-portal/pkg/config"
	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
	"github.com/noah-isme/coaching-portal/pkg/response"
)

// CSRF protects HTML form posts with a double-submit token. JSON API
// requests (Content-Type: application/json) carry no token; instead their
// Origin must be this host or one of the trusted origins.
func CSRF(cfg config.CSRFConfig, secure bool) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	hosts := make([]string, 0, len(cfg.TrustedOrigins))
	trusted := make(map[string]struct{}, len(cfg.TrustedOrigins))
	for _, origin := range cfg.TrustedOrigins {
		if host := originHost(origin); host != "" {
			hosts = append(hosts, host)
			trusted[host] = struct{}{}
		}
	}

	protect := csrf.Protect(
		[]byte(cfg.Key),
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.TrustedOrigins(hosts),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Your form expired. Please go back, reload the page and try again.", http.StatusForbidden)
		})),
	)

	return func(c *gin.Context) {
		if strings.HasPrefix(c.GetHeader("Content-Type"), "application/json") {
			if !sameOriginJSON(c.Request, trusted) {
				response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "Cross-origin request rejected."))
				c.Abort()
				return
			}
			c.Next()
			return
		}

		req := c.Request
		if !secure {
			req = csrf.PlaintextHTTPRequest(req)
		}

		passed := false
		protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, req)

		if !passed {
			c.Abort()
		}
	}
}

// sameOriginJSON accepts safe methods, requests without an Origin (non-browser
// clients) unless the browser flags them cross-site, and origins whose host is
// the request host or trusted.
func sameOriginJSON(r *http.Request, trusted map[string]struct{}) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return r.Header.Get("Sec-Fetch-Site") != "cross-site"
	}
	host := originHost(origin)
	if host == "" {
		return false
	}
	if host == r.Host {
		return true
	}
	_, ok := trusted[host]
	return ok
}

// originHost reduces "https://host:port" or a bare "host:port" to host:port.
// Opaque origins such as "null" yield "".
func originHost(origin string) string {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if !strings.Contains(origin, "://") {
		if origin == "null" {
			return ""
		}
		return origin
	}
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	return u.Host
}
