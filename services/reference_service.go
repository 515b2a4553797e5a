package services

import (
	"context"

	"p2h.app/models"
	"p2h.app/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IReferenceService serves the read-only master data the forms need.
type IReferenceService interface {
	InspectionItems(ctx context.Context) ([]models.InspectionItem, error)
	SearchSupervisors(ctx context.Context, query string, limit int) ([]models.Supervisor, error)
	Vehicles(ctx context.Context) ([]models.VehicleOption, error)
}

type ReferenceService struct {
	items       repositories.IInspectionItemRepository
	supervisors repositories.ISupervisorRepository
	vehicles    repositories.IVehicleRepository
}

func NewReferenceService(db *gorm.DB) IReferenceService {
	return &ReferenceService{
		items:       repositories.NewInspectionItemRepository(db),
		supervisors: repositories.NewSupervisorRepository(db),
		vehicles:    repositories.NewVehicleRepository(db),
	}
}

func (s *ReferenceService) InspectionItems(ctx context.Context) ([]models.InspectionItem, error) {
	items, err := s.items.FindActive(ctx)
	if err != nil {
		return nil, upstream("list inspection items", err)
	}
	return items, nil
}

func (s *ReferenceService) SearchSupervisors(ctx context.Context, query string, limit int) ([]models.Supervisor, error) {
	found, err := s.supervisors.Search(ctx, query, limit)
	if err != nil {
		return nil, upstream("search supervisors", err)
	}
	return found, nil
}

func (s *ReferenceService) Vehicles(ctx context.Context) ([]models.VehicleOption, error) {
	vehicles, err := s.vehicles.FindAll(ctx)
	if err != nil {
		return nil, upstream("list vehicles", err)
	}
	typeIDs := make([]uuid.UUID, 0, len(vehicles))
	for _, v := range vehicles {
		typeIDs = append(typeIDs, v.VehicleTypeID)
	}
	names := map[uuid.UUID]string{}
	if types, err := s.vehicles.FindTypesByIDs(ctx, typeIDs); err == nil {
		for _, t := range types {
			names[t.ID] = t.Name
		}
	}

	options := make([]models.VehicleOption, 0, len(vehicles))
	for _, v := range vehicles {
		options = append(options, models.VehicleOption{
			ID:            v.ID,
			VehicleNumber: v.VehicleNumber,
			VehicleType:   nameOr(names, v.VehicleTypeID, models.UnknownVehicleType),
			Status:        v.Status,
		})
	}
	return options, nil
}

var _ IReferenceService = (*ReferenceService)(nil)
