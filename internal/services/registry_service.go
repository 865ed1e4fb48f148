package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/repositories"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/utils"
)

// VehicleInput são os dados de um veículo do cliente.
type VehicleInput struct {
	Placa     string           `json:"placa" validate:"required,placa"`
	Marca     string           `json:"marca" validate:"max=100"`
	Modelo    string           `json:"modelo" validate:"max=150"`
	Ano       *int             `json:"ano" validate:"omitempty,min=1900,max=2100"`
	Cor       string           `json:"cor" validate:"max=50"`
	Chassi    string           `json:"chassi" validate:"omitempty,len=17"`
	Renavam   string           `json:"renavam" validate:"omitempty,numeric,max=11"`
	FipeCode  string           `json:"fipeCode" validate:"max=20"`
	FipeValue *decimal.Decimal `json:"fipeValue"`
	Categoria string           `json:"categoria" validate:"max=50"`
}

// ClientInput são os dados de criação e edição de um cliente.
type ClientInput struct {
	Nome            string         `json:"nome" validate:"required,max=255"`
	Documento       string         `json:"documento" validate:"omitempty,documento"`
	Email           string         `json:"email" validate:"max=254"`
	Telefone        string         `json:"telefone" validate:"max=30"`
	Endereco        string         `json:"endereco" validate:"max=500"`
	Responsavel     string         `json:"responsavel" validate:"max=255"`
	RepresentacaoID string         `json:"representacaoId"`
	Vehicles        []VehicleInput `json:"vehicles" validate:"dive"`
}

// normalize valida e normaliza o cliente: e-mail, telefone em E.164 e placas únicas.
func (in ClientInput) normalize() (models.Client, error) {
	errs := fieldErrors{}
	client := models.Client{
		Nome:            utils.SanitizeInput(in.Nome),
		Documento:       models.CleanDocumento(in.Documento),
		Email:           strings.TrimSpace(strings.ToLower(in.Email)),
		Endereco:        utils.SanitizeInput(in.Endereco),
		Responsavel:     utils.SanitizeInput(in.Responsavel),
		RepresentacaoID: strings.TrimSpace(in.RepresentacaoID),
	}
	if client.Email != "" {
		if err := utils.ValidateEmail(client.Email); err != nil {
			errs.add("email", "formato inválido")
		}
	}
	if strings.TrimSpace(in.Telefone) != "" {
		phone, err := utils.NormalizePhone(in.Telefone)
		if err != nil {
			errs.add("telefone", "telefone inválido")
		} else {
			client.Telefone = phone
		}
	}

	seen := make(map[string]bool)
	for i, v := range in.Vehicles {
		placa := models.NormalizePlaca(v.Placa)
		if seen[placa] {
			errs.add(fmt.Sprintf("vehicles[%d].placa", i), "placa repetida")
			continue
		}
		seen[placa] = true
		vehicle := models.Vehicle{
			Placa:     placa,
			Marca:     strings.TrimSpace(v.Marca),
			Modelo:    strings.TrimSpace(v.Modelo),
			Ano:       copyIntPtr(v.Ano),
			Cor:       strings.TrimSpace(v.Cor),
			Chassi:    strings.TrimSpace(v.Chassi),
			Renavam:   strings.TrimSpace(v.Renavam),
			FipeCode:  strings.TrimSpace(v.FipeCode),
			Categoria: strings.TrimSpace(v.Categoria),
		}
		if v.FipeValue != nil {
			if v.FipeValue.IsNegative() {
				errs.add(fmt.Sprintf("vehicles[%d].fipeValue", i), "não pode ser negativo")
			}
			fv := v.FipeValue.Round(2)
			vehicle.FipeValue = &fv
		}
		client.Vehicles = append(client.Vehicles, vehicle)
	}
	if err := errs.merge(validateStruct(in)); err != nil {
		return models.Client{}, err
	}
	return client, nil
}

// RepresentationInput são os dados de uma representação/parceiro.
type RepresentationInput struct {
	Nome          string `json:"nome" validate:"required,max=255"`
	CommissionDay *int   `json:"commissionDay" validate:"omitempty,min=1,max=31"`
}

// RegistryService mantém o cadastro de clientes, veículos e representações.
type RegistryService interface {
	CreateClient(ctx context.Context, userID string, in ClientInput) (*models.Snapshot, error)
	UpdateClient(ctx context.Context, userID, id string, in ClientInput) (*models.Snapshot, error)
	DeleteClient(ctx context.Context, userID, id string) (*models.Snapshot, error)

	CreateRepresentation(ctx context.Context, userID string, in RepresentationInput) (*models.Snapshot, error)
	UpdateRepresentation(ctx context.Context, userID, id string, in RepresentationInput) (*models.Snapshot, error)
	DeleteRepresentation(ctx context.Context, userID, id string) (*models.Snapshot, error)
}

type registryServiceImpl struct {
	clients         repositories.ClientRepository
	representations repositories.RepresentationRepository
	store           SnapshotStore
}

// NewRegistryService cria uma nova instância de RegistryService.
func NewRegistryService(clients repositories.ClientRepository, representations repositories.RepresentationRepository, store SnapshotStore) RegistryService {
	if clients == nil || representations == nil || store == nil {
		appLogger.Fatalf("Dependências nulas fornecidas para NewRegistryService")
	}
	return &registryServiceImpl{clients: clients, representations: representations, store: store}
}

func (s *registryServiceImpl) CreateClient(ctx context.Context, userID string, in ClientInput) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	client, err := in.normalize()
	if err != nil {
		return nil, err
	}
	if err := s.checkRepresentation(ctx, userID, client.RepresentacaoID); err != nil {
		return nil, err
	}
	row := models.FromClient(userID, client)
	if err := s.clients.Create(ctx, &row, vehicleRows(userID, client.Vehicles)); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao cadastrar cliente")
	}
	appLogger.Infof("Cliente %s cadastrado (usuário %s)", row.ID, userID)
	return s.store.Refetch(ctx, userID)
}

func (s *registryServiceImpl) UpdateClient(ctx context.Context, userID, id string, in ClientInput) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	client, err := in.normalize()
	if err != nil {
		return nil, err
	}
	if err := s.checkRepresentation(ctx, userID, client.RepresentacaoID); err != nil {
		return nil, err
	}
	existing, err := s.clients.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	client.ID = id
	client.CreatedAt = existing.CreatedAt
	row := models.FromClient(userID, client)
	if err := s.clients.Update(ctx, &row, vehicleRows(userID, client.Vehicles)); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao atualizar cliente %s", id)
	}
	return s.store.Refetch(ctx, userID)
}

func (s *registryServiceImpl) DeleteClient(ctx context.Context, userID, id string) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := s.clients.Delete(ctx, userID, id); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao excluir cliente %s", id)
	}
	return s.store.Refetch(ctx, userID)
}

func (s *registryServiceImpl) CreateRepresentation(ctx context.Context, userID string, in RepresentationInput) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	row := models.FromRepresentation(userID, models.Representation{Nome: in.Nome, CommissionDay: copyIntPtr(in.CommissionDay)})
	if err := s.representations.Create(ctx, &row); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao cadastrar representação")
	}
	return s.store.Refetch(ctx, userID)
}

func (s *registryServiceImpl) UpdateRepresentation(ctx context.Context, userID, id string, in RepresentationInput) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	existing, err := s.representations.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	row := models.FromRepresentation(userID, models.Representation{ID: id, Nome: in.Nome, CommissionDay: copyIntPtr(in.CommissionDay)})
	row.CreatedAt = existing.CreatedAt
	if err := s.representations.Update(ctx, &row); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao atualizar representação %s", id)
	}
	return s.store.Refetch(ctx, userID)
}

func (s *registryServiceImpl) DeleteRepresentation(ctx context.Context, userID, id string) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := s.representations.Delete(ctx, userID, id); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao excluir representação %s", id)
	}
	return s.store.Refetch(ctx, userID)
}

func (s *registryServiceImpl) checkRepresentation(ctx context.Context, userID, id string) error {
	if id == "" {
		return nil
	}
	if _, err := s.representations.GetByID(ctx, userID, id); err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return appErrors.NewValidationError("Representação não encontrada.", map[string]string{"representacaoId": "representação não encontrada"})
		}
		return err
	}
	return nil
}

func vehicleRows(userID string, vehicles []models.Vehicle) []models.DBVehicle {
	rows := make([]models.DBVehicle, len(vehicles))
	for i, v := range vehicles {
		rows[i] = models.FromVehicle(userID, v)
	}
	return rows
}
