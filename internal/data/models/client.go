package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DBClient representa um registro na tabela 'clients'.
type DBClient struct {
	ID              string  `gorm:"type:varchar(36);primaryKey"`
	UserID          string  `gorm:"type:varchar(64);not null;index"`
	Nome            string  `gorm:"type:varchar(255);not null"`
	Documento       *string `gorm:"type:varchar(14);index"` // CPF/CNPJ apenas dígitos
	Email           *string `gorm:"type:varchar(254)"`
	Telefone        *string `gorm:"type:varchar(20)"` // E.164
	Endereco        *string `gorm:"type:text"`
	Responsavel     *string `gorm:"type:varchar(255)"`
	RepresentacaoID *string `gorm:"type:varchar(36);index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (DBClient) TableName() string { return "clients" }

func (c *DBClient) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}

// DBVehicle representa um registro na tabela 'vehicles'.
type DBVehicle struct {
	ID        string  `gorm:"type:varchar(36);primaryKey"`
	UserID    string  `gorm:"type:varchar(64);not null;index"`
	ClientID  string  `gorm:"type:varchar(36);not null;index"`
	Placa     string  `gorm:"type:varchar(8);not null;index"`
	Marca     *string `gorm:"type:varchar(100)"`
	Modelo    *string `gorm:"type:varchar(150)"`
	Ano       *int
	Cor       *string `gorm:"type:varchar(50)"`
	Chassi    *string `gorm:"type:varchar(17)"`
	Renavam   *string `gorm:"type:varchar(11)"`
	FipeCode  *string `gorm:"type:varchar(20)"`
	FipeValue *string `gorm:"type:varchar(30)"`
	Categoria *string `gorm:"type:varchar(50)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DBVehicle) TableName() string { return "vehicles" }

func (v *DBVehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = NewID()
	}
	return nil
}

// DBRepresentation representa uma representação/parceiro na tabela 'representations'.
type DBRepresentation struct {
	ID            string `gorm:"type:varchar(36);primaryKey"`
	UserID        string `gorm:"type:varchar(64);not null;index"`
	Nome          string `gorm:"type:varchar(255);not null"`
	CommissionDay *int   `gorm:"type:smallint"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (DBRepresentation) TableName() string { return "representations" }

func (r *DBRepresentation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = NewID()
	}
	return nil
}

// Client é a forma de domínio de um cliente, com seus veículos.
type Client struct {
	ID              string    `json:"id"`
	Nome            string    `json:"nome"`
	Documento       string    `json:"documento,omitempty"`
	Email           string    `json:"email,omitempty"`
	Telefone        string    `json:"telefone,omitempty"`
	Endereco        string    `json:"endereco,omitempty"`
	Responsavel     string    `json:"responsavel,omitempty"`
	RepresentacaoID string    `json:"representacaoId,omitempty"`
	Vehicles        []Vehicle `json:"vehicles"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Vehicle é a forma de domínio de um veículo.
type Vehicle struct {
	ID        string           `json:"id"`
	ClientID  string           `json:"clientId"`
	Placa     string           `json:"placa"`
	Marca     string           `json:"marca,omitempty"`
	Modelo    string           `json:"modelo,omitempty"`
	Ano       *int             `json:"ano,omitempty"`
	Cor       string           `json:"cor,omitempty"`
	Chassi    string           `json:"chassi,omitempty"`
	Renavam   string           `json:"renavam,omitempty"`
	FipeCode  string           `json:"fipeCode,omitempty"`
	FipeValue *decimal.Decimal `json:"fipeValue,omitempty"`
	Categoria string           `json:"categoria,omitempty"`
}

// Representation é a forma de domínio de uma representação/parceiro.
type Representation struct {
	ID            string `json:"id"`
	Nome          string `json:"nome"`
	CommissionDay *int   `json:"commissionDay,omitempty"`
}

// ValidCommissionDay devolve o dia de comissão se estiver entre 1 e 31.
func (r Representation) ValidCommissionDay() *int {
	if r.CommissionDay == nil || *r.CommissionDay < 1 || *r.CommissionDay > 31 {
		return nil
	}
	return copyInt(r.CommissionDay)
}

func ToClient(row DBClient, vehicles []Vehicle) Client {
	if vehicles == nil {
		vehicles = []Vehicle{}
	}
	return Client{
		ID:              row.ID,
		Nome:            row.Nome,
		Documento:       deref(row.Documento),
		Email:           deref(row.Email),
		Telefone:        deref(row.Telefone),
		Endereco:        deref(row.Endereco),
		Responsavel:     deref(row.Responsavel),
		RepresentacaoID: deref(row.RepresentacaoID),
		Vehicles:        vehicles,
		CreatedAt:       row.CreatedAt,
	}
}

func FromClient(userID string, c Client) DBClient {
	return DBClient{
		ID:              c.ID,
		UserID:          userID,
		Nome:            strings.TrimSpace(c.Nome),
		Documento:       optional(CleanDocumento(c.Documento)),
		Email:           optional(strings.ToLower(c.Email)),
		Telefone:        optional(c.Telefone),
		Endereco:        optional(c.Endereco),
		Responsavel:     optional(c.Responsavel),
		RepresentacaoID: optional(c.RepresentacaoID),
		CreatedAt:       c.CreatedAt,
	}
}

func ToVehicle(row DBVehicle) (Vehicle, error) {
	fipe, err := parseOptionalMoney(row.FipeValue)
	if err != nil {
		return Vehicle{}, fmt.Errorf("veículo %s: valor FIPE: %w", row.ID, err)
	}
	return Vehicle{
		ID:        row.ID,
		ClientID:  row.ClientID,
		Placa:     row.Placa,
		Marca:     deref(row.Marca),
		Modelo:    deref(row.Modelo),
		Ano:       copyInt(row.Ano),
		Cor:       deref(row.Cor),
		Chassi:    deref(row.Chassi),
		Renavam:   deref(row.Renavam),
		FipeCode:  deref(row.FipeCode),
		FipeValue: fipe,
		Categoria: deref(row.Categoria),
	}, nil
}

func FromVehicle(userID string, v Vehicle) DBVehicle {
	return DBVehicle{
		ID:        v.ID,
		UserID:    userID,
		ClientID:  v.ClientID,
		Placa:     NormalizePlaca(v.Placa),
		Marca:     optional(v.Marca),
		Modelo:    optional(v.Modelo),
		Ano:       copyInt(v.Ano),
		Cor:       optional(v.Cor),
		Chassi:    optional(strings.ToUpper(v.Chassi)),
		Renavam:   optional(v.Renavam),
		FipeCode:  optional(v.FipeCode),
		FipeValue: formatOptionalMoney(v.FipeValue),
		Categoria: optional(v.Categoria),
	}
}

func ToRepresentation(row DBRepresentation) Representation {
	return Representation{ID: row.ID, Nome: row.Nome, CommissionDay: copyInt(row.CommissionDay)}
}

func FromRepresentation(userID string, r Representation) DBRepresentation {
	return DBRepresentation{ID: r.ID, UserID: userID, Nome: strings.TrimSpace(r.Nome), CommissionDay: copyInt(r.CommissionDay)}
}

// CleanDocumento remove caracteres não numéricos de um CPF/CNPJ.
func CleanDocumento(doc string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1 // Descarta o caractere
	}, doc)
}
