package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JSONMetadata guarda o campo metadata (JSON) do log de auditoria.
// Implementa sql.Scanner e driver.Valuer.
type JSONMetadata map[string]interface{}

// Value converte JSONMetadata para a string JSON gravada no banco.
func (jm JSONMetadata) Value() (driver.Value, error) {
	if jm == nil {
		return nil, nil
	}
	b, err := json.Marshal(jm)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan converte o JSON vindo do banco para JSONMetadata.
func (jm *JSONMetadata) Scan(value interface{}) error {
	if value == nil {
		*jm = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("tipo de valor inválido para JSONMetadata scan, esperado []byte ou string")
	}
	if len(b) == 0 {
		*jm = make(JSONMetadata)
		return nil
	}
	return json.Unmarshal(b, jm)
}

// Ações registradas no log de auditoria.
const (
	AuditBoletoCreated     = "BOLETO_CREATED"
	AuditBoletoUpdated     = "BOLETO_UPDATED"
	AuditBoletoPaid        = "BOLETO_PAID"
	AuditBoletoReverted    = "BOLETO_REVERTED"
	AuditBoletoDeleted     = "BOLETO_DELETED"
	AuditSeriesExtended    = "BOLETO_SERIES_EXTENDED"
	AuditClaimStatus       = "CLAIM_STATUS_CHANGED"
	AuditTransactionChange = "TRANSACTION_CHANGED"
)

// AuditLogEntry é uma entrada do log de auditoria (tabela 'audit_logs').
type AuditLogEntry struct {
	ID          uint64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp   time.Time    `gorm:"not null;index" json:"timestamp"`
	Action      string       `gorm:"type:varchar(100);not null;index" json:"action"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Severity    string       `gorm:"type:varchar(10);not null;index" json:"severity"` // DEBUG, INFO, WARNING, ERROR, CRITICAL
	UserID      string       `gorm:"type:varchar(64);not null;index" json:"userId"`
	EntityID    *string      `gorm:"type:varchar(36);index" json:"entityId,omitempty"`
	IPAddress   *string      `gorm:"type:varchar(45)" json:"ipAddress,omitempty"`
	Metadata    JSONMetadata `gorm:"type:text" json:"metadata,omitempty"`
}

func (AuditLogEntry) TableName() string {
	return "audit_logs"
}

// ValidSeverities define os níveis de severidade válidos.
var ValidSeverities = map[string]bool{
	"DEBUG":    true,
	"INFO":     true,
	"WARNING":  true,
	"ERROR":    true,
	"CRITICAL": true,
}
