package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/nileops/remit-console/internal/domain"
	"github.com/nileops/remit-console/internal/models"
	"github.com/nileops/remit-console/internal/reference"
)

// ClientInput is the console's new-client form.
type ClientInput struct {
	FullName string
	Phone    string
	Email    string
	Address  models.Address
}

type ClientService struct {
	clients ClientStore
	codes   reference.Generator
	audit   *AuditService
}

func NewClientService(clients ClientStore, audit *AuditService) *ClientService {
	return &ClientService{
		clients: clients,
		codes:   reference.NewSequential(domain.ClientCodeWidth),
		audit:   audit,
	}
}

// Create registers a client and assigns the next client code.
func (s *ClientService) Create(ctx context.Context, in ClientInput) (*models.Client, error) {
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, domain.NewValidationError("full_name", "is required")
	}

	codes, err := s.clients.ListClientCodes(ctx)
	if err != nil {
		return nil, domain.WrapStore("list client codes", err)
	}

	client := &models.Client{
		ID:         uuid.New(),
		ClientCode: s.codes.Next(domain.ClientCodePrefix, codes),
		FullName:   name,
		Phone:      optionalString(in.Phone),
		Email:      optionalString(in.Email),
		Address: models.Address{
			Country:    domain.NormalizeCountry(in.Address.Country),
			City:       strings.TrimSpace(in.Address.City),
			Street:     strings.TrimSpace(in.Address.Street),
			PostalCode: strings.TrimSpace(in.Address.PostalCode),
		},
	}
	if err := s.clients.CreateClient(ctx, client); err != nil {
		return nil, domain.WrapStore("create client", err)
	}
	s.audit.Record(ctx, domain.AuditEntityClient, client.ID, "client.created", "", client.ClientCode, nil)
	return client, nil
}

func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	c, err := s.clients.GetClient(ctx, id)
	if err != nil {
		return nil, domain.WrapStore("get client", err)
	}
	return c, nil
}

func (s *ClientService) List(ctx context.Context, page, pageSize int) ([]models.Client, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize
	rows, err := s.clients.ListClients(ctx, pageSize, offset)
	if err != nil {
		return nil, domain.WrapStore("list clients", err)
	}
	return rows, nil
}
