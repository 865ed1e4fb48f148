package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
)

// TransactionType é o sentido do lançamento.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// CommissionKind distingue a comissão projetada da confirmada.
type CommissionKind string

const (
	CommissionExpected  CommissionKind = "expected"
	CommissionConfirmed CommissionKind = "confirmed"
)

// Categorias usadas pelos lançamentos de comissão.
const (
	CategoryCommission         = "Comissão"
	CategoryExpectedCommission = "Comissão Esperada"
)

// Category devolve a categoria de exibição do tipo de comissão.
func (k CommissionKind) Category() string {
	if k == CommissionExpected {
		return CategoryExpectedCommission
	}
	return CategoryCommission
}

// CommissionDescription monta a descrição legível do lançamento de comissão.
// A identidade do lançamento é (SourceBoletoID, CommissionKind), não este texto.
func CommissionDescription(kind CommissionKind, boletoID string) string {
	return fmt.Sprintf("%s Boleto #%s", kind.Category(), boletoID)
}

// DBTransaction representa um registro na tabela 'transactions'.
// O índice único (source_boleto_id, commission_kind) garante no máximo um
// lançamento de cada tipo de comissão por boleto; linhas comuns têm ambos nulos.
type DBTransaction struct {
	ID             string     `gorm:"type:varchar(36);primaryKey"`
	UserID         string     `gorm:"type:varchar(64);not null;index"`
	Tipo           string     `gorm:"type:varchar(10);not null"`
	Descricao      string     `gorm:"type:varchar(255);not null"`
	Valor          string     `gorm:"type:varchar(30);not null"`
	Data           types.Date `gorm:"type:date;not null;index"`
	Categoria      string     `gorm:"type:varchar(100);not null;index"`
	ClientID       *string    `gorm:"type:varchar(36);index"`
	SourceBoletoID *string    `gorm:"type:varchar(36);uniqueIndex:idx_transactions_commission_source"`
	CommissionKind *string    `gorm:"type:varchar(10);uniqueIndex:idx_transactions_commission_source"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (DBTransaction) TableName() string {
	return "transactions"
}

func (t *DBTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = NewID()
	}
	return nil
}

// Transaction é um lançamento financeiro de domínio.
type Transaction struct {
	ID             string          `json:"id"`
	Tipo           TransactionType `json:"tipo"`
	Descricao      string          `json:"descricao"`
	Valor          decimal.Decimal `json:"valor"`
	Data           types.Date      `json:"data"`
	Categoria      string          `json:"categoria"`
	ClientID       string          `json:"clientId,omitempty"`
	SourceBoletoID string          `json:"sourceBoletoId,omitempty"`
	CommissionKind CommissionKind  `json:"commissionKind,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// IsCommission indica se o lançamento é mantido pelo motor de comissões.
func (t Transaction) IsCommission() bool {
	return t.SourceBoletoID != "" && t.CommissionKind != ""
}

func ToTransaction(row DBTransaction) (Transaction, error) {
	valor, err := ParseMoney(row.Valor)
	if err != nil {
		return Transaction{}, fmt.Errorf("transação %s: %w", row.ID, err)
	}
	return Transaction{
		ID:             row.ID,
		Tipo:           TransactionType(row.Tipo),
		Descricao:      row.Descricao,
		Valor:          valor,
		Data:           row.Data,
		Categoria:      row.Categoria,
		ClientID:       deref(row.ClientID),
		SourceBoletoID: deref(row.SourceBoletoID),
		CommissionKind: CommissionKind(deref(row.CommissionKind)),
		CreatedAt:      row.CreatedAt,
	}, nil
}

func FromTransaction(userID string, t Transaction) DBTransaction {
	row := DBTransaction{
		ID:             t.ID,
		UserID:         userID,
		Tipo:           string(t.Tipo),
		Descricao:      t.Descricao,
		Valor:          FormatMoney(t.Valor),
		Data:           t.Data,
		Categoria:      t.Categoria,
		ClientID:       optional(t.ClientID),
		SourceBoletoID: optional(t.SourceBoletoID),
		CreatedAt:      t.CreatedAt,
	}
	if t.CommissionKind != "" {
		row.CommissionKind = optional(string(t.CommissionKind))
	}
	return row
}

// NewCommissionTransaction monta o lançamento de comissão de um boleto.
func NewCommissionTransaction(kind CommissionKind, b Boleto, amount decimal.Decimal, date types.Date) Transaction {
	return Transaction{
		Tipo:           TransactionIncome,
		Descricao:      CommissionDescription(kind, b.ID),
		Valor:          amount,
		Data:           date,
		Categoria:      kind.Category(),
		ClientID:       b.ClientID,
		SourceBoletoID: b.ID,
		CommissionKind: kind,
	}
}
