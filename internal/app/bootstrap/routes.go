// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	healthfeature "github.com/dalemusser/crewdeck/internal/app/features/health"
	projectsfeature "github.com/dalemusser/crewdeck/internal/app/features/projects"
	sessionfeature "github.com/dalemusser/crewdeck/internal/app/features/session"
	teamsfeature "github.com/dalemusser/crewdeck/internal/app/features/teams"
	todosfeature "github.com/dalemusser/crewdeck/internal/app/features/todos"
	accessstore "github.com/dalemusser/crewdeck/internal/app/store/access"
	projectstore "github.com/dalemusser/crewdeck/internal/app/store/projects"
	teamstore "github.com/dalemusser/crewdeck/internal/app/store/teams"
	todostore "github.com/dalemusser/crewdeck/internal/app/store/todos"
	userstore "github.com/dalemusser/crewdeck/internal/app/store/users"
	"github.com/dalemusser/crewdeck/internal/app/system/auth"
	"github.com/dalemusser/crewdeck/internal/app/system/authz"
	"github.com/dalemusser/crewdeck/internal/app/system/requestid"
	"github.com/dalemusser/crewdeck/internal/app/system/shortid"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// CrewDeck builds the store graph bottom-up (access rows first, then
// teams, projects, todos), wraps it in the authorization guard, and
// mounts the JSON feature routers under /teams, /projects, and
// /projects/{projectID}/todos.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.CrewDeckMongoDatabase

	// Store graph. Teams need the access store (to grant and revoke
	// project rows alongside membership changes) and the short id
	// generator; projects need teams and access; todos need both.
	access := accessstore.New(db)
	gen := shortid.New(appCfg.ShortIDLength, appCfg.ShortIDMaxAttempts)
	teams := teamstore.New(db, access, gen, logger)
	projects := projectstore.New(db, teams, access, logger)
	todos := todostore.New(db, projects, teams, logger)
	users := userstore.New(db)
	guard := authz.NewGuard(access)

	r := chi.NewRouter()

	// Tag every request with an id for log correlation, then load the
	// session user into context so handlers can use auth.CurrentUser.
	r.Use(requestid.Middleware)
	r.Use(logRequests(logger))
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.CrewDeckMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Session lifecycle (sign-in, sign-out, current user)
	sessionHandler := sessionfeature.NewHandler(users, sessionMgr, logger)
	r.Mount("/session", sessionfeature.Routes(sessionHandler))

	// Teams: lifecycle, membership, executive tier
	teamsHandler := teamsfeature.NewHandler(teams, logger)
	r.Mount("/teams", teamsfeature.Routes(teamsHandler, sessionMgr))

	// Projects: lifecycle, status pipeline, budget ledger. Todos are
	// nested under their project inside the projects router.
	projectsHandler := projectsfeature.NewHandler(projects, guard, logger)
	todosHandler := todosfeature.NewHandler(todos, guard, logger)
	projectsRouter := projectsfeature.Routes(projectsHandler, sessionMgr)
	projectsRouter.Mount("/{projectID}/todos", todosfeature.Routes(todosHandler, sessionMgr))
	r.Mount("/projects", projectsRouter)

	return r, nil
}

// logRequests emits one line per request, carrying the request id so
// client reports can be matched to server logs.
func logRequests(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("request",
				zap.String("request_id", requestid.FromContext(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("elapsed", time.Since(start)))
		})
	}
}
