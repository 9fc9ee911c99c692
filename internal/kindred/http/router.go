package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/service"
	"github.com/AvallenSolutions/kindredcollective/internal/kindred/store"
	"github.com/AvallenSolutions/kindredcollective/pkg/httpx"
	"github.com/AvallenSolutions/kindredcollective/pkg/jwtx"
	"github.com/AvallenSolutions/kindredcollective/pkg/slogx"

	_ "github.com/AvallenSolutions/kindredcollective/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	tokens       *jwtx.Tokens
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthService      *service.AuthService
	BootstrapService *service.BootstrapService
	UserService      *service.UserService
	InviteLinks      *service.InviteLinkService
	Organisations    *service.OrganisationService
	OrgInviteService *service.OrganisationInviteService
	ClaimService     *service.ClaimService
}

func NewRouter(
	tokens *jwtx.Tokens,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		tokens:       tokens,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.MetricsMiddleware(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMe()
	r.registerOrganisation()
	r.registerOrgInvites()
	r.registerClaims()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
	r.Mux.Handle("GET /metrics", httpx.MetricsHandler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Kindred Collective Membership API
//	@version		0.1.0
//	@description	Invite-gated signup, organisation membership and supplier claim flows for the Kindred Collective marketplace.
//
//	@contact.name				Avallen Solutions
//	@contact.url				https://github.com/AvallenSolutions/kindredcollective
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	validateHandler := &InviteValidateHandler{InviteLinks: r.InviteLinks}
	signupHandler := &SignupHandler{AuthService: r.AuthService}
	loginHandler := &LoginHandler{AuthService: r.AuthService}
	bootstrapHandler := &BootstrapHandler{Bootstrap: r.BootstrapService}

	// POST /bootstrap - token-guarded first-admin creation on a fresh database
	r.Mux.Handle("POST /api/bootstrap",
		httpx.Chain(bootstrapHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /api/invites/validate - public token check, moderate limit by IP
	r.Mux.Handle("GET /api/invites/validate",
		httpx.Chain(validateHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /signup - strict rate limit by IP (public account creation)
	r.Mux.Handle("POST /api/auth/signup",
		httpx.Chain(signupHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /login - strict rate limit by IP + submitted email to prevent brute
	// force; the login body is JSON, so the key comes from the JSON field.
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
}

func (r *Router) registerMe() {
	meHandler := &MeHandler{UserService: r.UserService}
	profileHandler := &ProfileHandler{UserService: r.UserService}

	r.Mux.Handle("GET /api/me",
		httpx.Chain(http.HandlerFunc(meHandler.HandleGet),
			httpx.AuthnMiddleware(r.tokens),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /api/me/member",
		httpx.Chain(http.HandlerFunc(meHandler.HandleUpdateMember),
			httpx.AuthnMiddleware(r.tokens),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Business profile bootstrap: gated by the application role granted at signup.
	r.Mux.Handle("POST /api/me/brand",
		httpx.Chain(http.HandlerFunc(profileHandler.HandleCreateBrand),
			httpx.AuthnMiddleware(r.tokens),
			httpx.RequireAnyRole(string(domain.RoleBrand), string(domain.RoleAdmin)),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/me/supplier",
		httpx.Chain(http.HandlerFunc(profileHandler.HandleCreateSupplier),
			httpx.AuthnMiddleware(r.tokens),
			httpx.RequireAnyRole(string(domain.RoleSupplier), string(domain.RoleAdmin)),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerOrganisation() {
	h := &OrganisationHandler{Organisations: r.Organisations}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.tokens),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /api/me/organisation", secured(h.HandleCreate))
	r.Mux.Handle("GET /api/me/organisation", secured(h.HandleGet))
	r.Mux.Handle("DELETE /api/me/organisation", secured(h.HandleDelete))
	r.Mux.Handle("PATCH /api/me/organisation/members/{id}", secured(h.HandleUpdateMemberRole))
	r.Mux.Handle("DELETE /api/me/organisation/members/{id}", secured(h.HandleRemoveMember))
	r.Mux.Handle("POST /api/me/organisation/leave", secured(h.HandleLeave))
	r.Mux.Handle("POST /api/me/organisation/transfer", secured(h.HandleTransfer))
}

func (r *Router) registerOrgInvites() {
	h := &OrgInviteHandler{OrgInvites: r.OrgInviteService}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.tokens),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	// Role checks (OWNER/ADMIN may invite, only OWNER invites admins) live in
	// the service because they depend on the organisation roster, not the
	// application role.
	r.Mux.Handle("POST /api/me/organisation/invites", secured(h.HandleCreate))
	r.Mux.Handle("GET /api/me/organisation/invite/{token}",
		httpx.Chain(http.HandlerFunc(h.HandleInspect),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/me/organisation/invite/{token}", secured(h.HandleAccept))
	r.Mux.Handle("DELETE /api/me/organisation/invite/{token}", secured(h.HandleRevoke))
}

func (r *Router) registerClaims() {
	h := &ClaimHandler{Claims: r.ClaimService, Users: r.UserService}

	// POST initiate - moderate by user
	r.Mux.Handle("POST /api/suppliers/{slug}/claim",
		httpx.Chain(http.HandlerFunc(h.HandleInitiate),
			httpx.AuthnMiddleware(r.tokens),
			httpx.RequireAnyRole(string(domain.RoleSupplier)),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// PATCH verify - strict by user (prevent brute force of verification codes)
	r.Mux.Handle("PATCH /api/suppliers/{slug}/claim",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.AuthnMiddleware(r.tokens),
			httpx.RequireAnyRole(string(domain.RoleSupplier)),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	inviteHandler := &AdminInviteHandler{InviteLinks: r.InviteLinks}
	supplierHandler := &AdminSupplierHandler{UserService: r.UserService}
	claimHandler := &AdminClaimHandler{Claims: r.ClaimService}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.tokens),
			httpx.RequireAnyRole(string(domain.RoleAdmin)),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /api/admin/invites", secured(inviteHandler.HandleCreate))
	r.Mux.Handle("GET /api/admin/invites", secured(inviteHandler.HandleList))
	r.Mux.Handle("PATCH /api/admin/invites/{id}", secured(inviteHandler.HandleUpdate))
	r.Mux.Handle("DELETE /api/admin/invites/{id}", secured(inviteHandler.HandleDelete))
	r.Mux.Handle("POST /api/admin/suppliers", secured(supplierHandler.HandleCreate))
	r.Mux.Handle("PATCH /api/admin/claims/{id}", secured(claimHandler.HandleResolve))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
