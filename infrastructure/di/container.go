// Package di wires the application with google/wire.
package di

import (
	"context"

	"attendance-backend/application/commands"
	"attendance-backend/application/ports"
	"attendance-backend/application/queries"
	"attendance-backend/infrastructure/config"
	"attendance-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Tracing   *observability.TracerProvider
	Collector *observability.Collector

	Faces      ports.FaceCollection
	Employees  ports.EmployeeRepository
	Attendance ports.AttendanceRepository

	RegisterEmployee *commands.RegisterEmployeeHandler
	RecordAttendance *commands.RecordAttendanceHandler
	DailyReport      *queries.DailyReportHandler
	WeeklyReport     *queries.WeeklyReportHandler
}

// Provision creates the face collection and both tables if they are missing
func (c *Container) Provision(ctx context.Context) error {
	if err := c.Faces.EnsureCollection(ctx); err != nil {
		return err
	}
	if err := c.Employees.EnsureTable(ctx); err != nil {
		return err
	}
	return c.Attendance.EnsureTable(ctx)
}

// Flush exports buffered spans. Lambda handlers call it before returning
// because the runtime may freeze the process afterwards.
func (c *Container) Flush(ctx context.Context) {
	if err := c.Tracing.ForceFlush(ctx); err != nil {
		c.Logger.Warn("Failed to flush traces", zap.Error(err))
	}
}

// Shutdown releases the tracer and syncs the logger
func (c *Container) Shutdown(ctx context.Context) error {
	err := c.Tracing.Shutdown(ctx)
	_ = c.Logger.Sync()
	return err
}
