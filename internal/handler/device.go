package handler

import (
	"context"
	"errors"

	"github.com/pkordes/device-lending/backend/internal/domain"
	"github.com/pkordes/device-lending/backend/internal/handler/gen"
)

// ListDevices handles GET /devices.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListDevices(ctx context.Context, req gen.ListDevicesRequestObject) (gen.ListDevicesResponseObject, error) {
	params := domain.NewPaginationParams(req.Params.Page, req.Params.Limit)
	infos, total, err := s.devices.ListPaged(ctx, params)
	if err != nil {
		return nil, err
	}

	data := make([]gen.DeviceInfo, len(infos))
	for i, info := range infos {
		data[i] = deviceInfoToResponse(info)
	}
	return gen.ListDevices200JSONResponse{
		Data: data,
		Pagination: gen.Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	}, nil
}

// GetDevice handles GET /devices/{id}.
func (s *Server) GetDevice(ctx context.Context, req gen.GetDeviceRequestObject) (gen.GetDeviceResponseObject, error) {
	info, err := s.devices.GetInfo(ctx, req.Id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return gen.GetDevice404JSONResponse{NotFoundJSONResponse: notFoundBody(err)}, nil
		}
		return nil, err
	}

	return gen.GetDevice200JSONResponse(deviceInfoToResponse(info)), nil
}

// BookDevice handles PUT /devices/{id}/book.
func (s *Server) BookDevice(ctx context.Context, req gen.BookDeviceRequestObject) (gen.BookDeviceResponseObject, error) {
	booking, err := s.devices.Book(ctx, req.Id, req.Body.UserId)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return gen.BookDevice404JSONResponse{NotFoundJSONResponse: notFoundBody(err)}, nil
		}
		if body, ok := badRequestBody(err); ok {
			return gen.BookDevice400JSONResponse{BadRequestJSONResponse: body}, nil
		}
		return nil, err
	}

	return gen.BookDevice200JSONResponse(bookingToResponse(booking)), nil
}

// ReturnDevice handles PUT /devices/{id}/return.
func (s *Server) ReturnDevice(ctx context.Context, req gen.ReturnDeviceRequestObject) (gen.ReturnDeviceResponseObject, error) {
	booking, err := s.devices.Return(ctx, req.Id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return gen.ReturnDevice404JSONResponse{NotFoundJSONResponse: notFoundBody(err)}, nil
		}
		if body, ok := badRequestBody(err); ok {
			return gen.ReturnDevice400JSONResponse{BadRequestJSONResponse: body}, nil
		}
		return nil, err
	}

	return gen.ReturnDevice200JSONResponse(bookingToResponse(booking)), nil
}

// --- mapping helpers --------------------------------------------------------

func deviceToResponse(d domain.Device) gen.Device {
	return gen.Device{Id: d.ID, Name: d.Name}
}

func bookingToResponse(b domain.Booking) gen.Booking {
	return gen.Booking{
		Id:         b.ID,
		Device:     deviceToResponse(b.Device),
		User:       gen.User{Id: b.User.ID, Name: b.User.Name},
		BookedAt:   b.BookedAt,
		ReturnedAt: b.ReturnedAt,
	}
}

// deviceInfoToResponse converts the read view. A never-booked device keeps a
// nil LatestBooking so it serializes as "latestBooking": null.
func deviceInfoToResponse(info domain.DeviceInfo) gen.DeviceInfo {
	resp := gen.DeviceInfo{
		Device:      deviceToResponse(info.Device),
		IsAvailable: info.IsAvailable,
	}
	if info.LatestBooking != nil {
		lb := bookingToResponse(*info.LatestBooking)
		resp.LatestBooking = &lb
	}
	return resp
}
