package reference

import (
	"booking-router/core/cache"
	"booking-router/core/database"
	"booking-router/modules/reference/controller"
	"booking-router/modules/reference/repository"
	"booking-router/modules/reference/router"
	"booking-router/modules/reference/service"

	"github.com/labstack/echo/v4"
)

// Init mounts /states and /timezone and returns the service so the booking
// pipeline can resolve state names.
func Init(e *echo.Echo, db database.IDatabase, c cache.Cache) service.ReferenceService {
	repo := repository.NewReferenceRepository(db)
	svc := service.NewReferenceService(repo, c)
	ctrl := controller.NewReferenceController(svc)
	router.NewReferenceRouter(ctrl).Setup(e, nil)
	return svc
}
