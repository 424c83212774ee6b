package app

import (
	"net/http"

	"github.com/xsoluti-sigelo/sigelo/internal/handler"
	"github.com/xsoluti-sigelo/sigelo/internal/middleware"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	mid := middleware.New(app.errorHandler, app.Logger, app.DB, &app.Config)

	auditor := handler.NewAuditRecorder(app.Kafka, app.helper)

	healthHandler := handler.NewHealthCheckHandler(app.errorHandler)
	authHandler := handler.NewAuthHandler(app.DB, app.errorHandler, &app.Config, app.Google, auditor)
	invitationHandler := handler.NewInvitationHandler(app.DB, app.errorHandler, app.helper, app.Mailer, auditor)
	tenantHandler := handler.NewTenantHandler(app.DB, app.errorHandler, auditor)
	eventHandler := handler.NewEventHandler(app.DB, app.errorHandler, auditor)
	operationHandler := handler.NewOperationHandler(app.DB, app.errorHandler, auditor)
	vehicleHandler := handler.NewVehicleHandler(app.DB, app.errorHandler, app.FileUploader, auditor)
	employeeHandler := handler.NewEmployeeHandler(app.DB, app.errorHandler, auditor)
	userHandler := handler.NewUserHandler(app.DB, app.errorHandler, auditor)
	dashboardHandler := handler.NewDashboardHandler(app.DB, app.errorHandler)
	activityLogHandler := handler.NewActivityLogHandler(app.DB, app.errorHandler, auditor)
	contaAzulHandler := handler.NewContaAzulHandler(app.DB, app.errorHandler, app.ContaAzul, auditor)

	mux.HandleFunc("GET /status", healthHandler.HandleHealthCheck)

	mux.HandleFunc("POST /tenants", tenantHandler.HandleRegisterTenant)
	mux.HandleFunc("POST /auth/login", authHandler.HandleAuthLogin)
	mux.HandleFunc("GET /auth/google", authHandler.HandleGoogleSignIn)
	mux.HandleFunc("GET /auth/google/callback", authHandler.HandleGoogleCallback)
	mux.HandleFunc("GET /invitations/accept", invitationHandler.HandleAcceptInvitation)
	mux.HandleFunc("POST /invitations/finalize", invitationHandler.HandleFinalizeInvitation)

	authenticated := func(next http.HandlerFunc) http.Handler {
		return mid.RequireAuthenticatedUser(next)
	}
	adminOnly := func(next http.HandlerFunc) http.Handler {
		return mid.RequireAdminUser(next)
	}

	mux.Handle("POST /auth/refresh", authenticated(authHandler.HandleAuthRefresh))
	mux.Handle("POST /auth/logout", authenticated(authHandler.HandleAuthLogout))

	mux.Handle("POST /invitations", adminOnly(invitationHandler.HandleCreateInvitation))
	mux.Handle("GET /invitations", adminOnly(invitationHandler.HandleListInvitations))

	mux.Handle("GET /users", adminOnly(userHandler.HandleListUsers))
	mux.Handle("PATCH /users/{id}/role", adminOnly(userHandler.HandleUpdateUserRole))
	mux.Handle("DELETE /users/{id}", adminOnly(userHandler.HandleDeleteUser))

	mux.Handle("POST /events", authenticated(eventHandler.HandleCreateEvent))
	mux.Handle("GET /events", authenticated(eventHandler.HandleListEvents))
	mux.Handle("GET /events/{id}", authenticated(eventHandler.HandleGetEvent))
	mux.Handle("PUT /events/{id}", authenticated(eventHandler.HandleUpdateEvent))
	mux.Handle("DELETE /events/{id}", authenticated(eventHandler.HandleDeleteEvent))

	mux.Handle("POST /operations", authenticated(operationHandler.HandleCreateOperation))
	mux.Handle("PUT /operations/{id}", authenticated(operationHandler.HandleUpdateOperation))
	mux.Handle("DELETE /operations/{id}", authenticated(operationHandler.HandleDeleteOperation))
	mux.Handle("POST /operations/{id}/driver", authenticated(operationHandler.HandleAssignDriver))
	mux.Handle("POST /operations/{id}/vehicle", authenticated(operationHandler.HandleAssignVehicle))

	mux.Handle("POST /vehicles", authenticated(vehicleHandler.HandleCreateVehicle))
	mux.Handle("GET /vehicles", authenticated(vehicleHandler.HandleListVehicles))
	mux.Handle("PUT /vehicles/{id}", authenticated(vehicleHandler.HandleUpdateVehicle))
	mux.Handle("POST /vehicles/{id}/photo", authenticated(vehicleHandler.HandleUploadVehiclePhoto))
	mux.Handle("DELETE /vehicles/{id}", authenticated(vehicleHandler.HandleDeleteVehicle))

	mux.Handle("POST /employees", authenticated(employeeHandler.HandleCreateEmployee))
	mux.Handle("GET /employees", authenticated(employeeHandler.HandleListEmployees))
	mux.Handle("PUT /employees/{id}", authenticated(employeeHandler.HandleUpdateEmployee))
	mux.Handle("DELETE /employees/{id}", authenticated(employeeHandler.HandleDeleteEmployee))

	mux.Handle("GET /dashboard", authenticated(dashboardHandler.HandleDashboard))

	mux.Handle("GET /activity-logs", authenticated(activityLogHandler.HandleListActivityLogs))
	mux.Handle("GET /activity-logs/stats", authenticated(activityLogHandler.HandleActivityLogStats))
	mux.Handle("GET /activity-logs/export", authenticated(activityLogHandler.HandleExportActivityLogs))

	mux.Handle("POST /integrations/conta-azul/sync", adminOnly(contaAzulHandler.HandleSyncContaAzul))

	return mid.LogAccess(mid.RecoverPanic(mid.Authenticate(mux)))
}
