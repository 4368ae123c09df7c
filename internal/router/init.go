package router

import (
	"github.com/julee/knowledge-service/internal/application"
	"github.com/julee/knowledge-service/internal/container"
	pginfra "github.com/julee/knowledge-service/internal/infrastructure/postgres"
	handlers "github.com/julee/knowledge-service/internal/interface/http"
	"github.com/julee/knowledge-service/internal/router/modules"
)

// InitModules builds the repository → service → handler chain for every
// entity family and registers the feature modules with the registry.
// Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	userRepo := pginfra.NewUserRepository(pool)
	orgRepo := pginfra.NewOrganisationRepository(pool)
	domainRepo := pginfra.NewDomainRepository(pool)

	// helpers.RabbitPublisher satisfies application.EventPublisher; a nil
	// publisher disables events without disabling the services.
	var events application.EventPublisher
	if pub := container.GetRabbitPub(); pub != nil {
		events = pub
	}

	userSvc := application.NewUserService(
		userRepo,
		orgRepo,
		container.GetJWT(),
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetRedis(),
		logger,
		container.GetES(),
		cfg.ESUsersIndex,
		events,
	)
	orgSvc := application.NewOrganisationService(orgRepo, logger, events)
	domainSvc := application.NewDomainService(domainRepo, orgRepo, logger, events)

	userHandler := handlers.NewUserHandler(userSvc, container.GetJWT(), logger, cfg.CookieDomain, cfg.CookieSecure)
	orgHandler := handlers.NewOrganisationHandler(orgSvc, logger)
	domainHandler := handlers.NewDomainHandler(domainSvc, logger)

	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewOrganisationModule(orgHandler))
	r.Add(modules.NewDomainModule(domainHandler))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
