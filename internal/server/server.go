// Package server wires the services into a Fiber app.
package server

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"shiftplan/internal/audit"
	"shiftplan/internal/auth"
	"shiftplan/internal/config"
	"shiftplan/internal/dashboard"
	"shiftplan/internal/logging"
	"shiftplan/internal/models"
	"shiftplan/internal/payroll"
	"shiftplan/internal/schedule"
	"shiftplan/internal/shifts"
	"shiftplan/internal/store"
	"shiftplan/internal/users"
)

type Server struct {
	App *fiber.App

	Audit     *audit.Recorder
	Auth      *auth.Service
	Users     *users.Service
	Shifts    *shifts.Service
	Payroll   *payroll.Service
	Dashboard *dashboard.Service

	cfg   *config.Config
	store store.Store
	log   *zap.Logger
}

func New(cfg *config.Config, st store.Store, log *zap.Logger) *Server {
	rec := audit.NewRecorder(st, log)
	s := &Server{
		Audit:     rec,
		Auth:      auth.NewService(st, rec, log, cfg.JWTSecret, cfg.JWTTTL),
		Users:     users.NewService(st, rec, log),
		Shifts:    shifts.NewService(st, rec, log, cfg.MinRest),
		Payroll:   payroll.NewService(st, rec, log),
		Dashboard: dashboard.NewService(st),
		cfg:       cfg,
		store:     st,
		log:       log,
	}

	app := fiber.New(fiber.Config{
		AppName:      "shiftplan",
		ErrorHandler: ErrorHandler(log),
		BodyLimit:    10 * 1024 * 1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	})

	app.Use(requestid.New())
	app.Use(logging.Middleware(log))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Origins(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	s.App = app
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.App.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Public auth
	api.Post("/auth/login", auth.LoginHandler(s.Auth))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(s.cfg.JWTSecret), auth.ReloadUser(s.store))

	protected.Get("/auth/me", auth.MeHandler(s.Auth))
	protected.Put("/auth/password", auth.ChangePasswordHandler(s.Auth))
	protected.Get("/shift-types", shiftTypesHandler())

	// head_admin routes
	headRoutes := protected.Group("/admin")
	headRoutes.Use(auth.RequireRole(models.RoleHeadAdmin))

	headRoutes.Get("/users", users.ListUsersHandler(s.Users))
	headRoutes.Post("/users", users.CreateUserHandler(s.Users))
	headRoutes.Put("/users/:username", users.UpdateUserHandler(s.Users))
	headRoutes.Delete("/users/:username", users.DeleteUserHandler(s.Users))
	headRoutes.Get("/audit-logs", audit.ListAuditLogsHandler(s.Audit))

	// admin and head_admin routes
	staff := auth.RequireRole(models.RoleAdmin, models.RoleHeadAdmin)

	protected.Get("/dashboard", staff, dashboard.OverviewHandler(s.Dashboard))
	protected.Get("/dashboard/hours-chart", staff, dashboard.HoursChartHandler(s.Dashboard))

	protected.Get("/employees", staff, users.ListEmployeesHandler(s.Users))
	protected.Post("/employees", staff, users.CreateEmployeeHandler(s.Users))
	protected.Post("/employees/import", staff, users.ImportEmployeesHandler(s.Users))

	protected.Post("/shifts", staff, shifts.CreateShiftHandler(s.Shifts))
	protected.Get("/shifts", staff, shifts.ListShiftsHandler(s.Shifts))
	protected.Get("/shifts/pending", staff, shifts.PendingShiftsHandler(s.Shifts))
	protected.Post("/shifts/:id/approve", staff, shifts.ApproveShiftHandler(s.Shifts))

	protected.Get("/payroll", staff, payroll.PayrollHandler(s.Payroll))
	protected.Get("/payroll/entries", staff, payroll.ListEntriesHandler(s.Payroll))
	protected.Post("/payroll/entries", staff, payroll.CreateEntryHandler(s.Payroll))
	protected.Get("/payroll/export", staff, payroll.ExportHandler(s.Payroll))

	// employee routes
	me := protected.Group("/me")
	me.Use(auth.RequireRole(models.RoleEmployee))

	me.Get("/shifts", shifts.MyShiftsHandler(s.Shifts))
	me.Post("/shifts/:id/accept", shifts.AcceptShiftHandler(s.Shifts))
	me.Post("/shifts/:id/decline", shifts.DeclineShiftHandler(s.Shifts))
	me.Get("/calendar/monthly", shifts.MonthlyCalendarHandler(s.Shifts, s.Users))
	me.Get("/calendar/weekly", shifts.WeeklyCalendarHandler(s.Shifts, s.Users))
	me.Get("/timesheet", payroll.TimesheetHandler(s.Payroll))
}

// GET /api/shift-types
func shiftTypesHandler() fiber.Handler {
	type shiftType struct {
		schedule.Definition
		Hours      float64            `json:"hours"`
		Compatible []models.ShiftType `json:"compatible_secondary"`
	}
	return func(c *fiber.Ctx) error {
		defs := schedule.Definitions()
		out := make([]shiftType, 0, len(defs))
		for _, d := range defs {
			h, _ := schedule.Hours(d.Start, d.End)
			out = append(out, shiftType{Definition: d, Hours: h, Compatible: schedule.Compatible(d.Type)})
		}
		return c.JSON(out)
	}
}

func (s *Server) Listen() error {
	s.log.Info("http server listening", zap.String("port", s.cfg.HTTPPort))
	return s.App.Listen(":" + s.cfg.HTTPPort)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.App.ShutdownWithContext(ctx)
}
