package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"dmdesk/internal/logging"
)

// SameOriginMiddleware rejects cross-site form submissions. The Origin
// header, or the Referer when Origin is absent, must name this host or one of
// allowedOrigins. Without either, Sec-Fetch-Site must not report another
// site. Requests carrying none of these headers do not come from a browser
// and pass.
func SameOriginMiddleware(allowedOrigins []string, logger logging.Logger) gin.HandlerFunc {
	logger = logging.OrNop(logger)
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin = normalizeOrigin(origin); origin != "" {
			allowed[origin] = struct{}{}
		}
	}
	return func(c *gin.Context) {
		if source, ok := sameOriginRequest(c.Request, allowed); !ok {
			logger.Warn("Rejected cross-site %s %s from %q", c.Request.Method, c.Request.URL.Path, source)
			c.String(http.StatusForbidden, "Cross-site form submission rejected")
			c.Abort()
			return
		}
		c.Next()
	}
}

func sameOriginRequest(r *http.Request, allowed map[string]struct{}) (string, bool) {
	if origin := strings.TrimSpace(r.Header.Get("Origin")); origin != "" {
		return origin, matchesOrigin(origin, r, allowed)
	}
	if referer := strings.TrimSpace(r.Referer()); referer != "" {
		return referer, matchesOrigin(referer, r, allowed)
	}
	switch site := strings.ToLower(strings.TrimSpace(r.Header.Get("Sec-Fetch-Site"))); site {
	case "", "same-origin", "none":
		return site, true
	default:
		return "Sec-Fetch-Site: " + site, false
	}
}

func matchesOrigin(raw string, r *http.Request, allowed map[string]struct{}) bool {
	if raw == "null" {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return false
	}
	if _, ok := allowed[strings.ToLower(parsed.Scheme+"://"+parsed.Host)]; ok {
		return true
	}
	if !strings.EqualFold(parsed.Host, r.Host) {
		return false
	}
	return strings.EqualFold(parsed.Scheme, requestScheme(r))
}

func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func normalizeOrigin(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}
