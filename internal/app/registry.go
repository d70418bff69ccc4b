package app

import (
	"database/sql"
	"go-attend/internal/attendance"
	"go-attend/internal/auth"
	"go-attend/internal/department"
	"go-attend/internal/employee"
	"go-attend/internal/leave"
	"go-attend/internal/messaging/kafka"
	"go-attend/internal/rbac"
	"go-attend/internal/rbac/infra"
	"go-attend/internal/recalc"
	"go-attend/internal/shared/counter"
	"go-attend/internal/shift"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	shiftRepo := shift.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	departmentRepo := department.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	recalcRepo := recalc.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	shiftService := shift.NewService(db, shiftRepo)
	leaveService := leave.NewService(db, leaveRepo)
	attendanceService := attendance.NewService(db, attendanceRepo, shiftService, leave.NewSpanSource(leaveRepo))
	employeeService := employee.NewServiceWithOutbox(db, employeeRepo, counterRepo, outboxRepo, rdb)
	departmentService := department.NewService(db, departmentRepo)
	recalcService := recalc.NewService(db, recalcRepo, counterRepo, outboxRepo, rdb)
	authService := auth.NewService(authRepo, rbacService, employeeRepo)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	shiftHandler := shift.NewHandler(shiftService)
	attendanceHandler := attendance.NewHandler(attendanceService)
	departmentHandler := department.NewHandler(departmentService)
	employeeHandler := employee.NewHandler(employeeService)
	leaveHandler := leave.NewHandler(leaveService)
	recalcHandler := recalc.NewHandler(recalcService, rdb)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		shift.RegisterRoutes(api, shiftHandler, rbacService)
		attendance.RegisterRoutes(api, attendanceHandler, rbacService)
		department.RegisterRoutes(api, departmentHandler, rbacService)
		employee.RegisterRoutes(api, employeeHandler, rbacService, logger)
		leave.RegisterRoutes(api, leaveHandler, rbacService)
		recalc.RegisterRoutes(api, recalcHandler, rbacService, rdb)
		rbac.RegisterRoutes(api, rbacHandler, rbacService)
	}

	return nil
}
