package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
)

// BoletoStatus é o status de um boleto. Apenas pending e paid são gravados;
// overdue é derivado na leitura.
type BoletoStatus string

const (
	BoletoPending BoletoStatus = "pending"
	BoletoPaid    BoletoStatus = "paid"
	BoletoOverdue BoletoStatus = "overdue"
)

// IsStored indica se o status pode ser persistido.
func (s BoletoStatus) IsStored() bool {
	return s == BoletoPending || s == BoletoPaid
}

// RecurrenceType define se a série recorrente tem fim.
type RecurrenceType string

const (
	RecurrenceIndefinite RecurrenceType = "indefinite"
	RecurrenceLimited    RecurrenceType = "limited"
)

// CommissionType define como comissaoRecorrente é interpretada.
type CommissionType string

const (
	CommissionPercent CommissionType = "percentual" // percentual do valor do boleto
	CommissionFixed   CommissionType = "valor"      // valor fixo
)

// DBBoleto representa um registro na tabela 'boletos'.
type DBBoleto struct {
	ID                 string      `gorm:"type:varchar(36);primaryKey"`
	UserID             string      `gorm:"type:varchar(64);not null;index"`
	ClientID           string      `gorm:"type:varchar(36);not null;index"`
	ClientName         string      `gorm:"type:varchar(255)"`
	Placas             string      `gorm:"type:text;not null"` // placas separadas por vírgula
	RepresentacaoID    *string     `gorm:"type:varchar(36);index"`
	Representacao      *string     `gorm:"type:varchar(255)"`
	CommissionDay      *int        `gorm:"type:smallint"`
	Valor              string      `gorm:"type:varchar(30);not null"` // ex: "1234.56"
	Vencimento         types.Date  `gorm:"type:date;not null;index"`
	DataPagamento      *types.Date `gorm:"type:date"`
	Status             string      `gorm:"type:varchar(10);not null;default:'pending'"`
	IsRecurring        bool        `gorm:"not null;default:false"`
	RecurrenceType     *string     `gorm:"type:varchar(12)"`
	RecurrenceMonths   *int
	RecurrenceGroupID  *string `gorm:"type:varchar(36);index"`
	ComissaoRecorrente *string `gorm:"type:varchar(30)"`
	ComissaoTipo       *string `gorm:"type:varchar(12)"`
	Observacao         *string `gorm:"type:text"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName especifica o nome da tabela para GORM.
func (DBBoleto) TableName() string {
	return "boletos"
}

// BeforeCreate gera o ID quando ausente.
func (b *DBBoleto) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	return nil
}

// Boleto é a forma de domínio de um boleto, como servida no snapshot.
type Boleto struct {
	ID                 string           `json:"id"`
	ClientID           string           `json:"clientId"`
	ClientName         string           `json:"clientName"`
	Placas             []string         `json:"placas"`
	RepresentacaoID    string           `json:"representacaoId,omitempty"`
	Representacao      string           `json:"representacao,omitempty"`
	CommissionDay      *int             `json:"commissionDay,omitempty"`
	Valor              decimal.Decimal  `json:"valor"`
	Vencimento         types.Date       `json:"vencimento"`
	DataPagamento      *types.Date      `json:"dataPagamento,omitempty"`
	Status             BoletoStatus     `json:"status"`
	IsRecurring        bool             `json:"isRecurring"`
	RecurrenceType     RecurrenceType   `json:"recurrenceType,omitempty"`
	RecurrenceMonths   *int             `json:"recurrenceMonths,omitempty"`
	RecurrenceGroupID  string           `json:"recurrenceGroupId,omitempty"`
	ComissaoRecorrente *decimal.Decimal `json:"comissaoRecorrente,omitempty"`
	ComissaoTipo       CommissionType   `json:"comissaoTipo,omitempty"`
	Observacao         string           `json:"observacao,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
}

// Clone copia o boleto sem compartilhar placas nem campos opcionais.
func (b Boleto) Clone() Boleto {
	b.Placas = slices.Clone(b.Placas)
	b.CommissionDay = clonePtr(b.CommissionDay)
	b.DataPagamento = clonePtr(b.DataPagamento)
	b.RecurrenceMonths = clonePtr(b.RecurrenceMonths)
	b.ComissaoRecorrente = clonePtr(b.ComissaoRecorrente)
	return b
}

// HasCommission indica se o boleto tem termos de comissão configurados.
func (b Boleto) HasCommission() bool {
	return b.ComissaoRecorrente != nil
}

// ToBoleto converte a linha do banco na forma de domínio.
// O status devolvido é o gravado; a derivação de overdue fica em billing.
func ToBoleto(row DBBoleto) (Boleto, error) {
	valor, err := ParseMoney(row.Valor)
	if err != nil {
		return Boleto{}, fmt.Errorf("boleto %s: %w", row.ID, err)
	}
	comissao, err := parseOptionalMoney(row.ComissaoRecorrente)
	if err != nil {
		return Boleto{}, fmt.Errorf("boleto %s: comissão: %w", row.ID, err)
	}
	status := BoletoStatus(row.Status)
	if !status.IsStored() {
		status = BoletoPending
	}
	b := Boleto{
		ID:                 row.ID,
		ClientID:           row.ClientID,
		ClientName:         row.ClientName,
		Placas:             SplitPlacas(row.Placas),
		RepresentacaoID:    deref(row.RepresentacaoID),
		Representacao:      deref(row.Representacao),
		CommissionDay:      copyInt(row.CommissionDay),
		Valor:              valor,
		Vencimento:         row.Vencimento,
		Status:             status,
		IsRecurring:        row.IsRecurring,
		RecurrenceType:     RecurrenceType(deref(row.RecurrenceType)),
		RecurrenceMonths:   copyInt(row.RecurrenceMonths),
		RecurrenceGroupID:  deref(row.RecurrenceGroupID),
		ComissaoRecorrente: comissao,
		ComissaoTipo:       CommissionType(deref(row.ComissaoTipo)),
		Observacao:         deref(row.Observacao),
		CreatedAt:          row.CreatedAt,
	}
	if row.DataPagamento != nil && !row.DataPagamento.IsZero() {
		d := *row.DataPagamento
		b.DataPagamento = &d
	}
	return b, nil
}

// FromBoleto converte a forma de domínio na linha do banco.
// overdue nunca é gravado: vira pending.
func FromBoleto(userID string, b Boleto) DBBoleto {
	status := b.Status
	if !status.IsStored() {
		status = BoletoPending
	}
	row := DBBoleto{
		ID:                 b.ID,
		UserID:             userID,
		ClientID:           b.ClientID,
		ClientName:         b.ClientName,
		Placas:             JoinPlacas(b.Placas),
		RepresentacaoID:    optional(b.RepresentacaoID),
		Representacao:      optional(b.Representacao),
		CommissionDay:      copyInt(b.CommissionDay),
		Valor:              FormatMoney(b.Valor),
		Vencimento:         b.Vencimento,
		Status:             string(status),
		IsRecurring:        b.IsRecurring,
		RecurrenceMonths:   copyInt(b.RecurrenceMonths),
		RecurrenceGroupID:  optional(b.RecurrenceGroupID),
		ComissaoRecorrente: formatOptionalMoney(b.ComissaoRecorrente),
		Observacao:         optional(b.Observacao),
		CreatedAt:          b.CreatedAt,
	}
	if b.RecurrenceType != "" {
		row.RecurrenceType = optional(string(b.RecurrenceType))
	}
	if b.ComissaoRecorrente != nil && b.ComissaoTipo != "" {
		row.ComissaoTipo = optional(string(b.ComissaoTipo))
	}
	if b.DataPagamento != nil && !b.DataPagamento.IsZero() {
		d := *b.DataPagamento
		row.DataPagamento = &d
	}
	return row
}

// SplitPlacas separa a coluna de placas, normalizando para maiúsculas sem hífen.
func SplitPlacas(raw string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range strings.Split(raw, ",") {
		placa := NormalizePlaca(p)
		if placa == "" || seen[placa] {
			continue
		}
		seen[placa] = true
		out = append(out, placa)
	}
	return out
}

// JoinPlacas grava as placas como lista separada por vírgula, sem repetições.
func JoinPlacas(placas []string) string {
	return strings.Join(SplitPlacas(strings.Join(placas, ",")), ",")
}

// NormalizePlaca remove espaços e hífen e coloca em maiúsculas ("abc-1d23" -> "ABC1D23").
func NormalizePlaca(p string) string {
	return strings.ToUpper(strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(p)))
}
