// Package courseplatform предоставляет маршруты для основного приложения.
package courseplatform

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/course-platform/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/auth/register"
	categorycreate "github.com/magabrotheeeer/course-platform/internal/http/handlers/category/create"
	categorylist "github.com/magabrotheeeer/course-platform/internal/http/handlers/category/list"
	categoryremove "github.com/magabrotheeeer/course-platform/internal/http/handlers/category/remove"
	daystateexport "github.com/magabrotheeeer/course-platform/internal/http/handlers/daystate/export"
	daystateread "github.com/magabrotheeeer/course-platform/internal/http/handlers/daystate/read"
	daystatesave "github.com/magabrotheeeer/course-platform/internal/http/handlers/daystate/save"
	enrollmentcreate "github.com/magabrotheeeer/course-platform/internal/http/handlers/enrollment/create"
	enrollmentlist "github.com/magabrotheeeer/course-platform/internal/http/handlers/enrollment/list"
	enrollmentupdate "github.com/magabrotheeeer/course-platform/internal/http/handlers/enrollment/update"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/health"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/newsletter/confirm"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/newsletter/exportsubs"
	subscriberlist "github.com/magabrotheeeer/course-platform/internal/http/handlers/newsletter/list"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/newsletter/subscribe"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/newsletter/unsubscribe"
	subscriberupdate "github.com/magabrotheeeer/course-platform/internal/http/handlers/newsletter/update"
	postcreate "github.com/magabrotheeeer/course-platform/internal/http/handlers/post/create"
	postlist "github.com/magabrotheeeer/course-platform/internal/http/handlers/post/list"
	postread "github.com/magabrotheeeer/course-platform/internal/http/handlers/post/read"
	postremove "github.com/magabrotheeeer/course-platform/internal/http/handlers/post/remove"
	postupdate "github.com/magabrotheeeer/course-platform/internal/http/handlers/post/update"
	programcreate "github.com/magabrotheeeer/course-platform/internal/http/handlers/program/create"
	programlist "github.com/magabrotheeeer/course-platform/internal/http/handlers/program/list"
	programread "github.com/magabrotheeeer/course-platform/internal/http/handlers/program/read"
	programremove "github.com/magabrotheeeer/course-platform/internal/http/handlers/program/remove"
	programupdate "github.com/magabrotheeeer/course-platform/internal/http/handlers/program/update"
	userarchive "github.com/magabrotheeeer/course-platform/internal/http/handlers/user/archive"
	userlist "github.com/magabrotheeeer/course-platform/internal/http/handlers/user/list"
	userupdate "github.com/magabrotheeeer/course-platform/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/course-platform/internal/services/auth"
	blogservice "github.com/magabrotheeeer/course-platform/internal/services/blog"
	daystateservice "github.com/magabrotheeeer/course-platform/internal/services/daystate"
	enrollmentservice "github.com/magabrotheeeer/course-platform/internal/services/enrollment"
	newsletterservice "github.com/magabrotheeeer/course-platform/internal/services/newsletter"
	programservice "github.com/magabrotheeeer/course-platform/internal/services/program"
	userservice "github.com/magabrotheeeer/course-platform/internal/services/user"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.AuthService,
	userService *userservice.UserService,
	programService *programservice.ProgramService,
	enrollmentService *enrollmentservice.EnrollmentService,
	dayStateService *daystateservice.DayStateService,
	blogService *blogservice.BlogService,
	newsletterService *newsletterservice.NewsletterService,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		r.Get("/programs", programlist.New(logger, programService).ServeHTTP)
		r.Get("/programs/{slug}", programread.New(logger, programService).ServeHTTP)

		r.Get("/posts", postlist.New(logger, blogService).ServeHTTP)
		r.Get("/posts/{slug}", postread.New(logger, blogService).ServeHTTP)
		r.Get("/categories", categorylist.New(logger, blogService).ServeHTTP)

		r.Post("/newsletter/subscribe", subscribe.New(logger, newsletterService).ServeHTTP)
		r.Get("/newsletter/confirm", confirm.New(logger, newsletterService).ServeHTTP)
		r.Get("/newsletter/unsubscribe", unsubscribe.New(logger, newsletterService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/enrollments", enrollmentcreate.New(logger, enrollmentService).ServeHTTP)
			r.Get("/enrollments", enrollmentlist.New(logger, enrollmentService).ServeHTTP)
			r.Put("/enrollments/{id}", enrollmentupdate.New(logger, enrollmentService).ServeHTTP)

			r.Put("/programs/{slug}/days/{day}/state", daystatesave.New(logger, dayStateService).ServeHTTP)
			r.Get("/programs/{slug}/days/{day}/state", daystateread.New(logger, dayStateService).ServeHTTP)
			r.Get("/programs/{slug}/state/export", daystateexport.New(logger, dayStateService).ServeHTTP)

			// Группа администратора
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin(logger))

				r.Get("/users", userlist.New(logger, userService).ServeHTTP)
				r.Put("/users/{uuid}", userupdate.New(logger, userService).ServeHTTP)
				r.Post("/users/{uuid}/archive", userarchive.New(logger, userService).ServeHTTP)

				r.Get("/admin/programs", programlist.New(logger, programService).ServeHTTP)
				r.Get("/admin/posts", postlist.New(logger, blogService).ServeHTTP)

				r.Post("/programs", programcreate.New(logger, programService).ServeHTTP)
				r.Put("/programs/{slug}", programupdate.New(logger, programService).ServeHTTP)
				r.Delete("/programs/{slug}", programremove.New(logger, programService).ServeHTTP)

				r.Post("/categories", categorycreate.New(logger, blogService).ServeHTTP)
				r.Delete("/categories/{id}", categoryremove.New(logger, blogService).ServeHTTP)

				r.Post("/posts", postcreate.New(logger, blogService).ServeHTTP)
				r.Put("/posts/{id}", postupdate.New(logger, blogService).ServeHTTP)
				r.Delete("/posts/{id}", postremove.New(logger, blogService).ServeHTTP)

				r.Get("/newsletter/subscribers", subscriberlist.New(logger, newsletterService).ServeHTTP)
				r.Put("/newsletter/subscribers/{id}", subscriberupdate.New(logger, newsletterService).ServeHTTP)
				r.Get("/newsletter/subscribers/export", exportsubs.New(logger, newsletterService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
