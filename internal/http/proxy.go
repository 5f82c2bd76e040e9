package http

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tutorgate/internal/service"
)

// Route es una entrada de la tabla estatica de reenvio del proxy.
type Route struct {
	// Prefix es el prefijo de path entrante (por ejemplo "/ask").
	Prefix string
	// Target es la URL base del upstream (por ejemplo "http://localhost:8000").
	Target string
	// Rewrite reemplaza al Prefix en el path reenviado; vacio lo deja igual.
	Rewrite string
}

// ProxyRouter reenvia los paths mapeados al QueryService sin alterar metodo
// ni body, reescribiendo solo el path y el origen. Los paths fuera de la
// tabla los atiende el gateway con sus rutas propias.
type ProxyRouter struct {
	logger      *zap.Logger
	routes      []Route
	client      *http.Client
	sessionServ *service.SessionService
	requireAuth bool
}

// NewProxyRouter crea el proxy con su tabla de rutas. Si requireAuth es true,
// cada request debe resolver una sesion valida antes de reenviarse.
func NewProxyRouter(logger *zap.Logger, routes []Route, sessionServ *service.SessionService, requireAuth bool) *ProxyRouter {
	return &ProxyRouter{
		logger: logger,
		routes: routes,
		client: &http.Client{
			Timeout: 30 * time.Second,
			// Los redirects se devuelven al caller sin seguirlos.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		sessionServ: sessionServ,
		requireAuth: requireAuth,
	}
}

// Routes devuelve la tabla configurada.
func (p *ProxyRouter) Routes() []Route {
	out := make([]Route, len(p.routes))
	copy(out, p.routes)
	return out
}

// SetTimeout ajusta el timeout hacia el upstream; es parametro de despliegue.
func (p *ProxyRouter) SetTimeout(d time.Duration) {
	p.client.Timeout = d
}

// Match busca la ruta de prefijo mas largo que cubra el path dado.
func (p *ProxyRouter) Match(path string) (Route, bool) {
	var best Route
	bestLen := -1
	for _, r := range p.routes {
		if !strings.HasPrefix(path, r.Prefix) {
			continue
		}
		rest := path[len(r.Prefix):]
		if rest != "" && !strings.HasPrefix(rest, "/") {
			continue
		}
		if len(r.Prefix) > bestLen {
			best = r
			bestLen = len(r.Prefix)
		}
	}
	return best, bestLen >= 0
}

// Handler atiende cualquier request cuyo path cayo dentro de la tabla.
func (p *ProxyRouter) Handler(c *gin.Context) {
	route, ok := p.Match(c.Request.URL.Path)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if p.requireAuth {
		if _, ok := p.sessionServ.Resolve(bearerToken(c)); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
	}

	upstreamURL := route.Target + rewritePath(c.Request.URL.Path, route)
	if c.Request.URL.RawQuery != "" {
		upstreamURL += "?" + c.Request.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, upstreamURL, c.Request.Body)
	if err != nil {
		p.logger.Error("proxy request build failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream unavailable"})
		return
	}
	copyProxyHeaders(req.Header, c.Request.Header)
	req.ContentLength = c.Request.ContentLength

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("upstream unreachable",
			zap.String("target", route.Target),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream unavailable"})
		return
	}
	defer resp.Body.Close()

	// Status y body del upstream pasan sin modificarse; el gateway nunca
	// sintetiza una respuesta en nombre del QueryService.
	for key, values := range resp.Header {
		if isHopByHop(key) {
			continue
		}
		for _, v := range values {
			c.Writer.Header().Add(key, v)
		}
	}
	c.Writer.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		p.logger.Warn("proxy body copy failed", zap.Error(err))
	}
}

func rewritePath(path string, route Route) string {
	if route.Rewrite == "" || route.Rewrite == route.Prefix {
		return path
	}
	return route.Rewrite + path[len(route.Prefix):]
}

// copyProxyHeaders copia headers del request entrante omitiendo los de
// conexion y los de origen: el upstream debe ver al gateway como caller directo.
func copyProxyHeaders(dst, src http.Header) {
	for key, values := range src {
		if isHopByHop(key) {
			continue
		}
		switch http.CanonicalHeaderKey(key) {
		case "Origin", "Referer", "Host":
			continue
		}
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}

var hopByHopHeaders = map[string]struct{}{
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

func isHopByHop(key string) bool {
	_, ok := hopByHopHeaders[http.CanonicalHeaderKey(key)]
	return ok
}
