package server

import (
	"github.com/gin-gonic/gin"

	"poseidon-capital/backend/internal/audit"
	audithandler "poseidon-capital/backend/internal/audit/handler"
	auditrepo "poseidon-capital/backend/internal/audit/repository"
	bidlisthandler "poseidon-capital/backend/internal/bidlist/handler"
	bidlistrepo "poseidon-capital/backend/internal/bidlist/repository"
	curvepointhandler "poseidon-capital/backend/internal/curvepoint/handler"
	curvepointrepo "poseidon-capital/backend/internal/curvepoint/repository"
	healthhandler "poseidon-capital/backend/internal/health/handler"
	ratinghandler "poseidon-capital/backend/internal/rating/handler"
	ratingrepo "poseidon-capital/backend/internal/rating/repository"
	rulenamehandler "poseidon-capital/backend/internal/rulename/handler"
	rulenamerepo "poseidon-capital/backend/internal/rulename/repository"
	tradehandler "poseidon-capital/backend/internal/trade/handler"
	traderepo "poseidon-capital/backend/internal/trade/repository"
	userhandler "poseidon-capital/backend/internal/user/handler"
	userservice "poseidon-capital/backend/internal/user/service"
)

// Deps holds the handler dependencies for the HTTP API.
type Deps struct {
	// UserService drives the user lifecycle. If nil, user routes are not registered.
	UserService *userservice.Service
	// Recorder records back-office mutations. May be nil; mutations then go unaudited.
	Recorder audit.Recorder
	// HealthPinger is used for readiness (e.g. *sql.DB). May be nil.
	HealthPinger healthhandler.Pinger
	// AuditRepo backs the audit trail read API. If nil, the route is not registered.
	AuditRepo auditrepo.Repository

	BidListRepo    bidlistrepo.Repository
	CurvePointRepo curvepointrepo.Repository
	RatingRepo     ratingrepo.Repository
	RuleNameRepo   rulenamerepo.Repository
	TradeRepo      traderepo.Repository
}

// NewRouter builds the gin engine with all routes registered. A reference-data
// API is registered only when its repository is present.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestContext())

	healthhandler.NewHealthAPI(deps.HealthPinger).RegisterRoutes(r)

	api := r.Group("/api")
	if deps.UserService != nil {
		userhandler.NewUserAPI(deps.UserService).RegisterRoutes(api)
	}
	if deps.BidListRepo != nil {
		bidlisthandler.NewBidListAPI(deps.BidListRepo, deps.Recorder).RegisterRoutes(api)
	}
	if deps.CurvePointRepo != nil {
		curvepointhandler.NewCurvePointAPI(deps.CurvePointRepo, deps.Recorder).RegisterRoutes(api)
	}
	if deps.RatingRepo != nil {
		ratinghandler.NewRatingAPI(deps.RatingRepo, deps.Recorder).RegisterRoutes(api)
	}
	if deps.RuleNameRepo != nil {
		rulenamehandler.NewRuleNameAPI(deps.RuleNameRepo, deps.Recorder).RegisterRoutes(api)
	}
	if deps.TradeRepo != nil {
		tradehandler.NewTradeAPI(deps.TradeRepo, deps.Recorder).RegisterRoutes(api)
	}
	if deps.AuditRepo != nil {
		audithandler.NewAuditAPI(deps.AuditRepo).RegisterRoutes(api)
	}
	return r
}
