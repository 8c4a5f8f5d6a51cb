// Package handler implements the HTTP handlers for the device lending API.
// All handlers are methods on Server, which implements gen.StrictServerInterface.
// Methods are split by resource (health.go, device.go) but share one Server.
package handler

import (
	"context"

	"github.com/pkordes/device-lending/backend/internal/domain"
)

// DeviceServicer defines the business operations the device handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type DeviceServicer interface {
	GetInfo(ctx context.Context, deviceID int64) (domain.DeviceInfo, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.DeviceInfo, int64, error)
	Book(ctx context.Context, deviceID, userID int64) (domain.Booking, error)
	Return(ctx context.Context, deviceID int64) (domain.Booking, error)
}

// Server implements gen.StrictServerInterface for all API endpoints.
// Wire it in main.go via gen.NewStrictHandlerWithOptions(server, nil, StrictOptions()).
type Server struct {
	devices DeviceServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(devices DeviceServicer) *Server {
	return &Server{devices: devices}
}
