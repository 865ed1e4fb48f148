package models

import (
	"time"

	"gorm.io/gorm"
)

// DBEvent representa um compromisso da agenda na tabela 'events'.
type DBEvent struct {
	ID        string     `gorm:"type:varchar(36);primaryKey"`
	UserID    string     `gorm:"type:varchar(64);not null;index"`
	Titulo    string     `gorm:"type:varchar(255);not null"`
	Descricao *string    `gorm:"type:text"`
	Inicio    time.Time  `gorm:"not null;index"`
	Fim       *time.Time
	Tipo      *string    `gorm:"type:varchar(50)"`
	ClientID  *string    `gorm:"type:varchar(36);index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DBEvent) TableName() string { return "events" }

func (e *DBEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = NewID()
	}
	return nil
}

// Event é a forma de domínio de um compromisso.
type Event struct {
	ID        string     `json:"id"`
	Titulo    string     `json:"titulo"`
	Descricao string     `json:"descricao,omitempty"`
	Inicio    time.Time  `json:"inicio"`
	Fim       *time.Time `json:"fim,omitempty"`
	Tipo      string     `json:"tipo,omitempty"`
	ClientID  string     `json:"clientId,omitempty"`
}

func ToEvent(row DBEvent) Event {
	e := Event{
		ID:        row.ID,
		Titulo:    row.Titulo,
		Descricao: deref(row.Descricao),
		Inicio:    row.Inicio,
		Tipo:      deref(row.Tipo),
		ClientID:  deref(row.ClientID),
	}
	if row.Fim != nil {
		fim := *row.Fim
		e.Fim = &fim
	}
	return e
}

func FromEvent(userID string, e Event) DBEvent {
	row := DBEvent{
		ID:        e.ID,
		UserID:    userID,
		Titulo:    e.Titulo,
		Descricao: optional(e.Descricao),
		Inicio:    e.Inicio.UTC(),
		Tipo:      optional(e.Tipo),
		ClientID:  optional(e.ClientID),
	}
	if e.Fim != nil {
		fim := e.Fim.UTC()
		row.Fim = &fim
	}
	return row
}
