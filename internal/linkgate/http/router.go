package http

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/KimDog-Studios/linkgate/internal/linkgate/audit"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/service"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/store"
	"github.com/KimDog-Studios/linkgate/pkg/httpx"
	"github.com/KimDog-Studios/linkgate/pkg/slogx"

	_ "github.com/KimDog-Studios/linkgate/api/linkgate" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	byMethod    map[string]*methodHandler
	middlewares []httpx.Middleware

	buildVersion  string
	startTime     time.Time
	logger        *slog.Logger
	secureCookies bool

	store      store.Store
	auditStore audit.Store

	LinkService  *service.LinkService
	ProxyService *service.ProxyService
	GiftService  *service.GiftService

	// GiftMintKeyHash gates minting behind an operator API key when set.
	GiftMintKeyHash string
}

func NewRouter(buildVersion string, secureCookies bool, st store.Store, auditStore audit.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		byMethod:      make(map[string]*methodHandler),
		buildVersion:  buildVersion,
		startTime:     time.Now(),
		logger:        logger,
		secureCookies: secureCookies,
		store:         st,
		auditStore:    auditStore,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// methodHandler dispatches by HTTP method on a single path, emulating the
// method-qualified ServeMux patterns of Go 1.22+ on the Go 1.21 mux: a GET
// handler also serves HEAD, and an unregistered method gets 405 with an
// Allow header.
type methodHandler struct {
	handlers map[string]http.Handler
}

func (m *methodHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h, ok := m.handlers[req.Method]
	if !ok && req.Method == http.MethodHead {
		h, ok = m.handlers[http.MethodGet]
	}
	if !ok {
		methods := make([]string, 0, len(m.handlers)+1)
		for method := range m.handlers {
			methods = append(methods, method)
			if method == http.MethodGet {
				methods = append(methods, http.MethodHead)
			}
		}
		sort.Strings(methods)
		w.Header().Set("Allow", strings.Join(methods, ", "))
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.ServeHTTP(w, req)
}

// handle registers a handler for a "METHOD /path" pattern; a pattern
// without a method is passed to the mux unchanged.
func (r *Router) handle(pattern string, h http.Handler) {
	method, path, found := strings.Cut(pattern, " ")
	if !found {
		r.Mux.Handle(pattern, h)
		return
	}
	mh, ok := r.byMethod[path]
	if !ok {
		mh = &methodHandler{handlers: make(map[string]http.Handler)}
		r.byMethod[path] = mh
		r.Mux.Handle(path, mh)
	}
	mh.handlers[method] = h
}

func (r *Router) ApplyRoutes() {
	r.registerDownloads()
	r.registerProxy()
	r.registerGifts()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			LinkGate Download Service API
//	@version		0.1.0
//	@description	One-time download link issuance and redemption for the KimDog Studios mod site,
//	@description	plus an SSRF-guarded status proxy for game server widgets.
//	@description
//	@description				Issued links are single-use, expire within seconds and are bound to the
//	@description				requesting client. Redemption streams the file from an allowlisted CDN origin.
//
//	@contact.name				KimDog Studios
//	@contact.url				https://github.com/KimDog-Studios/linkgate
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerDownloads() {
	// POST /issue-link - strict rate limit (mint operations)
	issueHandler := &IssueLinkHandler{
		LinkService:   r.LinkService,
		SecureCookies: r.secureCookies,
	}
	r.handle("POST /api/downloads/issue-link",
		httpx.Chain(issueHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /redeem - moderate rate limit; legitimate clients redeem once
	redeemHandler := &RedeemHandler{LinkService: r.LinkService}
	r.handle("GET /api/downloads/redeem",
		httpx.Chain(redeemHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerProxy() {
	proxyHandler := &ProxyHandler{ProxyService: r.ProxyService}

	// Status widgets poll this, so the limit is lenient.
	r.handle("GET /api/proxy",
		httpx.Chain(proxyHandler,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.handle("OPTIONS /api/proxy", proxyHandler)
}

func (r *Router) registerGifts() {
	mintHandler := &GiftMintHandler{GiftService: r.GiftService, MintKeyHash: r.GiftMintKeyHash}
	r.handle("POST /api/gifts/mint",
		httpx.Chain(mintHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	redeemHandler := &GiftRedeemHandler{GiftService: r.GiftService}
	r.handle("POST /api/gifts/redeem",
		httpx.Chain(redeemHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.auditStore),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
