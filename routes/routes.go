package routes

import (
	"net/http"

	"lares/auth"
	"lares/booking"
	"lares/contacts"
	"lares/middleware"
	"lares/property"
	"lares/ratelim"
	"lares/rbac"
	"lares/scheduling"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router) {
	router.POST("/api/auth/register", ratelim.RateLimit(auth.Register))
	router.POST("/api/auth/login", ratelim.RateLimit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.LogoutUser))
	router.POST("/api/auth/token/refresh", ratelim.RateLimit(auth.RefreshToken))
	router.GET("/api/auth/me", middleware.Authenticate(auth.Me))
	router.PUT("/api/auth/me/avatar", middleware.Authenticate(auth.UploadAvatar))
}

func AddSchedulingRoutes(router *httprouter.Router) {
	router.POST("/api/scheduling/agendas",
		middleware.RequirePermission(rbac.PermManageAgenda, scheduling.CreateAgenda))
	router.GET("/api/scheduling/agendas",
		middleware.RequirePermission(rbac.PermViewAgenda, scheduling.GetAgendas))
	router.GET("/api/scheduling/agendas/:id",
		middleware.RequirePermission(rbac.PermViewAgenda, scheduling.GetAgenda))
	router.PUT("/api/scheduling/agendas/:id",
		middleware.RequirePermission(rbac.PermManageAgenda, scheduling.EditAgenda))
	router.DELETE("/api/scheduling/agendas/:id",
		middleware.RequirePermission(rbac.PermManageAgenda, scheduling.DeleteAgenda))
	router.PUT("/api/scheduling/agendas/:id/availability",
		middleware.RequirePermission(rbac.PermManageAgenda, scheduling.UpdateAvailability))
}

func AddBookingRoutes(router *httprouter.Router) {
	// Creation is public: visitors book without an account.
	router.POST("/api/scheduling/agendas/:id/bookings",
		ratelim.RateLimit(middleware.OptionalAuth(booking.CreateBooking)))

	router.GET("/api/scheduling/agendas/:id/bookings",
		middleware.RequirePermission(rbac.PermViewBookings, booking.ListBookings))
	router.GET("/api/scheduling/bookings/:id",
		middleware.RequirePermission(rbac.PermViewBookings, booking.GetBooking))
	router.PUT("/api/scheduling/bookings/:id/status",
		middleware.RequirePermission(rbac.PermManageBookings, booking.UpdateBookingStatus))
	router.POST("/api/scheduling/bookings/:id/cancel",
		ratelim.RateLimit(middleware.OptionalAuth(booking.CancelBooking)))
	router.GET("/api/scheduling/bookings/:id/confirmation",
		middleware.RequirePermission(rbac.PermViewBookings, booking.PrintConfirmation))

	router.GET("/ws/agendas/:id/bookings", booking.HandleWS)
}

func AddPropertyRoutes(router *httprouter.Router) {
	// Public portal search; everything else is CRM-side.
	router.GET("/api/properties", ratelim.RateLimit(property.SearchProperties))
	router.GET("/api/properties/:id", ratelim.RateLimit(property.GetProperty))

	router.GET("/api/crm/properties",
		middleware.RequirePermission(rbac.PermViewProperties, property.ListProperties))
	router.POST("/api/crm/properties",
		middleware.RequirePermission(rbac.PermManageProperties, property.CreateProperty))
	router.PUT("/api/crm/properties/:id",
		middleware.RequirePermission(rbac.PermManageProperties, property.EditProperty))
	router.DELETE("/api/crm/properties/:id",
		middleware.RequirePermission(rbac.PermManageProperties, property.DeleteProperty))
	router.POST("/api/crm/properties/:id/photos",
		middleware.RequirePermission(rbac.PermManageMedia, property.UploadPhotos))
	router.DELETE("/api/crm/properties/:id/photos/:photo",
		middleware.RequirePermission(rbac.PermManageMedia, property.DeletePhoto))
}

func AddContactRoutes(router *httprouter.Router) {
	router.GET("/api/contacts",
		middleware.RequirePermission(rbac.PermViewContacts, contacts.ListContacts))
	router.POST("/api/contacts",
		middleware.RequirePermission(rbac.PermManageContacts, contacts.CreateContact))
	router.GET("/api/contacts/:id",
		middleware.RequirePermission(rbac.PermViewContacts, contacts.GetContact))
	router.PUT("/api/contacts/:id",
		middleware.RequirePermission(rbac.PermManageContacts, contacts.EditContact))
	router.DELETE("/api/contacts/:id",
		middleware.RequirePermission(rbac.PermManageContacts, contacts.DeleteContact))
}

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/propertypic/*filepath", http.Dir("./static/propertypic"))
	router.ServeFiles("/static/userpic/*filepath", http.Dir("./static/userpic"))
}
