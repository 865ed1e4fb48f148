package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
)

// QuotationStatus é o estágio de uma cotação.
type QuotationStatus string

const (
	QuotationOpen     QuotationStatus = "aberta"
	QuotationSent     QuotationStatus = "enviada"
	QuotationApproved QuotationStatus = "aprovada"
	QuotationRejected QuotationStatus = "recusada"
)

// ValidQuotationStatuses lista os status aceitos na gravação.
var ValidQuotationStatuses = map[QuotationStatus]bool{
	QuotationOpen:     true,
	QuotationSent:     true,
	QuotationApproved: true,
	QuotationRejected: true,
}

// DBQuotation representa um registro na tabela 'quotations'.
type DBQuotation struct {
	ID         string      `gorm:"type:varchar(36);primaryKey"`
	UserID     string      `gorm:"type:varchar(64);not null;index"`
	ClientID   string      `gorm:"type:varchar(36);not null;index"`
	ClientName string      `gorm:"type:varchar(255)"`
	Placa      *string     `gorm:"type:varchar(8)"`
	Seguradora string      `gorm:"type:varchar(150);not null"`
	Valor      string      `gorm:"type:varchar(30);not null"`
	Status     string      `gorm:"type:varchar(12);not null;default:'aberta'"`
	Validade   *types.Date `gorm:"type:date"`
	Observacao *string     `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (DBQuotation) TableName() string { return "quotations" }

func (q *DBQuotation) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = NewID()
	}
	return nil
}

// Quotation é a forma de domínio de uma cotação de seguro.
type Quotation struct {
	ID         string          `json:"id"`
	ClientID   string          `json:"clientId"`
	ClientName string          `json:"clientName"`
	Placa      string          `json:"placa,omitempty"`
	Seguradora string          `json:"seguradora"`
	Valor      decimal.Decimal `json:"valor"`
	Status     QuotationStatus `json:"status"`
	Validade   *types.Date     `json:"validade,omitempty"`
	Observacao string          `json:"observacao,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func ToQuotation(row DBQuotation) (Quotation, error) {
	valor, err := ParseMoney(row.Valor)
	if err != nil {
		return Quotation{}, fmt.Errorf("cotação %s: %w", row.ID, err)
	}
	q := Quotation{
		ID:         row.ID,
		ClientID:   row.ClientID,
		ClientName: row.ClientName,
		Placa:      deref(row.Placa),
		Seguradora: row.Seguradora,
		Valor:      valor,
		Status:     QuotationStatus(row.Status),
		Observacao: deref(row.Observacao),
		CreatedAt:  row.CreatedAt,
	}
	if row.Validade != nil && !row.Validade.IsZero() {
		d := *row.Validade
		q.Validade = &d
	}
	return q, nil
}

func FromQuotation(userID string, q Quotation) DBQuotation {
	status := q.Status
	if status == "" {
		status = QuotationOpen
	}
	row := DBQuotation{
		ID:         q.ID,
		UserID:     userID,
		ClientID:   q.ClientID,
		ClientName: q.ClientName,
		Placa:      optional(NormalizePlaca(q.Placa)),
		Seguradora: strings.TrimSpace(q.Seguradora),
		Valor:      FormatMoney(q.Valor),
		Status:     string(status),
		Observacao: optional(q.Observacao),
		CreatedAt:  q.CreatedAt,
	}
	if q.Validade != nil && !q.Validade.IsZero() {
		d := *q.Validade
		row.Validade = &d
	}
	return row
}
