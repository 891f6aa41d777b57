package main

import (
	"errors"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Abraxas-365/nimbus/pkg/config"
	"github.com/Abraxas-365/nimbus/pkg/errx"
	"github.com/Abraxas-365/nimbus/pkg/iam"
	"github.com/Abraxas-365/nimbus/pkg/kernel"
	"github.com/Abraxas-365/nimbus/pkg/logx"
)

// Headers the fronting gateway sets once it has verified the caller's
// federated identity.
const (
	HeaderIdentityID     = "X-Cognito-Identity-Id"
	HeaderIdentityPoolID = "X-Cognito-Identity-Pool-Id"
)

const internalErrorMessage = "Internal server error"

type serverDeps struct {
	Router   *iam.Router
	Pool     iam.PoolParams
	Gatherer prometheus.Gatherer
	Server   config.ServerConfig
}

func newApp(deps serverDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Nimbus",
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
	})

	// Global Middleware
	app.Use(recover.New())

	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))
	app.Use(requestContext)

	origins := deps.Server.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Accept, X-Request-ID",
		AllowMethods:  "GET, POST, OPTIONS",
		ExposeHeaders: "X-Request-ID",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${respHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	// Health & Metrics
	app.Get("/health", healthCheckHandler(deps.Server.AppVersion))
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Account routes
	resources := deps.Router.Resources()
	sort.Strings(resources)
	for _, resource := range resources {
		app.Post(resource, dispatchHandler(deps.Router, deps.Pool, resource))
		logx.Infof("✓ POST %s", resource)
	}

	app.Use(notFoundHandler)

	return app
}

// requestContext copies the request id into the context handlers receive.
func requestContext(c *fiber.Ctx) error {
	if id := c.GetRespHeader(fiber.HeaderXRequestID); id != "" {
		c.SetUserContext(kernel.WithRequestID(c.UserContext(), id))
	}
	return c.Next()
}

// dispatchHandler turns the HTTP request into an iam.Request for resource.
// Warming is read from ?warming= or a "warming" body key; with the query
// flag set the body is not required to parse.
func dispatchHandler(router *iam.Router, pool iam.PoolParams, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		warming := iam.ParseWarming(c.Query("warming"))

		body := map[string]any{}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil && !warming {
				return fiber.NewError(fiber.StatusBadRequest, "Request body must be a JSON object.")
			}
		}
		if !warming {
			warming = iam.ParseWarming(body["warming"])
		}

		req := &iam.Request{
			Resource: resource,
			Body:     body,
			Identity: iam.Identity{
				IdentityID:     kernel.NewIdentityID(c.Get(HeaderIdentityID)),
				IdentityPoolID: c.Get(HeaderIdentityPoolID),
			},
			Pool:    pool,
			Warming: warming,
		}

		resp, err := router.Dispatch(c.UserContext(), req)
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}

func healthCheckHandler(version string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "nimbus",
			"version": version,
		})
	}
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(errx.Response{Message: "Route not found"})
}

// globalErrorHandler renders typed errors as {"message": ...} with their
// status. Anything else is logged and answered with a generic 500.
func globalErrorHandler(c *fiber.Ctx, err error) error {
	entry := logx.WithContext(c.UserContext()).WithFields(logx.Fields{
		"path":   c.Path(),
		"method": c.Method(),
		"ip":     c.IP(),
	})

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(errx.Response{Message: fe.Message})
	}

	if status, body, ok := errx.Classify(err); ok {
		e, _ := errx.As(err)
		entry.WithFields(logx.Fields{"code": e.Code, "status": status}).WithError(e.Err).Info("Request rejected")
		return c.Status(status).JSON(body)
	}

	entry.WithError(err).Error("Request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(errx.Response{Message: internalErrorMessage})
}
