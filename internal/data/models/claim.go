package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
)

// ClaimStatus é o estágio de um sinistro.
type ClaimStatus string

const (
	ClaimOpen      ClaimStatus = "aberto"
	ClaimReview    ClaimStatus = "em_analise"
	ClaimApproved  ClaimStatus = "aprovado"
	ClaimDenied    ClaimStatus = "negado"
	ClaimFinalized ClaimStatus = "finalizado"
)

var ValidClaimStatuses = map[ClaimStatus]bool{
	ClaimOpen:      true,
	ClaimReview:    true,
	ClaimApproved:  true,
	ClaimDenied:    true,
	ClaimFinalized: true,
}

// DBClaim representa um registro na tabela 'claims'.
type DBClaim struct {
	ID             string      `gorm:"type:varchar(36);primaryKey"`
	UserID         string      `gorm:"type:varchar(64);not null;index"`
	ClientID       string      `gorm:"type:varchar(36);not null;index"`
	ClientName     string      `gorm:"type:varchar(255)"`
	Placa          *string     `gorm:"type:varchar(8)"`
	Tipo           string      `gorm:"type:varchar(50);not null"`
	Status         string      `gorm:"type:varchar(12);not null;default:'aberto'"`
	DataOcorrencia *types.Date `gorm:"type:date"`
	Descricao      *string     `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (DBClaim) TableName() string { return "claims" }

func (c *DBClaim) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}

// DBClaimStatusChange é uma linha do histórico de status de um sinistro.
type DBClaimStatusChange struct {
	ID         string    `gorm:"type:varchar(36);primaryKey"`
	UserID     string    `gorm:"type:varchar(64);not null;index"`
	ClaimID    string    `gorm:"type:varchar(36);not null;index"`
	FromStatus *string   `gorm:"type:varchar(12)"`
	ToStatus   string    `gorm:"type:varchar(12);not null"`
	Observacao *string   `gorm:"type:text"`
	ChangedAt  time.Time `gorm:"not null;index"`
}

func (DBClaimStatusChange) TableName() string { return "claim_status_history" }

func (c *DBClaimStatusChange) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}

// Claim é a forma de domínio de um sinistro.
type Claim struct {
	ID             string              `json:"id"`
	ClientID       string              `json:"clientId"`
	ClientName     string              `json:"clientName"`
	Placa          string              `json:"placa,omitempty"`
	Tipo           string              `json:"tipo"`
	Status         ClaimStatus         `json:"status"`
	DataOcorrencia *types.Date         `json:"dataOcorrencia,omitempty"`
	Descricao      string              `json:"descricao,omitempty"`
	History        []ClaimStatusChange `json:"history"`
	CreatedAt      time.Time           `json:"createdAt"`
}

// ClaimStatusChange é uma transição registrada no histórico do sinistro.
type ClaimStatusChange struct {
	ID         string      `json:"id"`
	ClaimID    string      `json:"claimId"`
	FromStatus ClaimStatus `json:"fromStatus,omitempty"`
	ToStatus   ClaimStatus `json:"toStatus"`
	Observacao string      `json:"observacao,omitempty"`
	ChangedAt  time.Time   `json:"changedAt"`
}

func ToClaim(row DBClaim, history []ClaimStatusChange) Claim {
	if history == nil {
		history = []ClaimStatusChange{}
	}
	c := Claim{
		ID:         row.ID,
		ClientID:   row.ClientID,
		ClientName: row.ClientName,
		Placa:      deref(row.Placa),
		Tipo:       row.Tipo,
		Status:     ClaimStatus(row.Status),
		Descricao:  deref(row.Descricao),
		History:    history,
		CreatedAt:  row.CreatedAt,
	}
	if row.DataOcorrencia != nil && !row.DataOcorrencia.IsZero() {
		d := *row.DataOcorrencia
		c.DataOcorrencia = &d
	}
	return c
}

func FromClaim(userID string, c Claim) DBClaim {
	status := c.Status
	if status == "" {
		status = ClaimOpen
	}
	row := DBClaim{
		ID:         c.ID,
		UserID:     userID,
		ClientID:   c.ClientID,
		ClientName: c.ClientName,
		Placa:      optional(NormalizePlaca(c.Placa)),
		Tipo:       c.Tipo,
		Status:     string(status),
		Descricao:  optional(c.Descricao),
		CreatedAt:  c.CreatedAt,
	}
	if c.DataOcorrencia != nil && !c.DataOcorrencia.IsZero() {
		d := *c.DataOcorrencia
		row.DataOcorrencia = &d
	}
	return row
}

func ToClaimStatusChange(row DBClaimStatusChange) ClaimStatusChange {
	return ClaimStatusChange{
		ID:         row.ID,
		ClaimID:    row.ClaimID,
		FromStatus: ClaimStatus(deref(row.FromStatus)),
		ToStatus:   ClaimStatus(row.ToStatus),
		Observacao: deref(row.Observacao),
		ChangedAt:  row.ChangedAt,
	}
}

func FromClaimStatusChange(userID string, c ClaimStatusChange) DBClaimStatusChange {
	return DBClaimStatusChange{
		ID:         c.ID,
		UserID:     userID,
		ClaimID:    c.ClaimID,
		FromStatus: optional(string(c.FromStatus)),
		ToStatus:   string(c.ToStatus),
		Observacao: optional(c.Observacao),
		ChangedAt:  c.ChangedAt,
	}
}
