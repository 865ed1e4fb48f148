package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout é o formato de serialização de Date em JSON e no banco.
const DateLayout = "2006-01-02"

// Date é uma data de calendário pura (ano, mês, dia), sem hora nem fuso.
// O valor zero representa "sem data".
type Date struct {
	year  int
	month time.Month
	day   int
}

// NewDate cria uma Date normalizada (ex: 31/02 vira 02 ou 03/03, como time.Date).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf extrai a data de calendário de t no fuso do próprio t.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// Today devolve a data corrente no fuso local do relógio informado.
func Today(now func() time.Time) Date {
	if now == nil {
		now = time.Now
	}
	return DateOf(now())
}

// ParseDate aceita "YYYY-MM-DD", "DD/MM/YYYY" e timestamps RFC3339 (usa só a parte da data).
func ParseDate(s string) (Date, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Date{}, errors.New("data vazia")
	}
	for _, layout := range []string{DateLayout, "02/01/2006", "2/1/2006"} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return DateOf(t), nil
		}
	}
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return DateOf(t), nil
	}
	// Alguns drivers devolvem "YYYY-MM-DD HH:MM:SS..." para colunas date.
	if len(trimmed) > len(DateLayout) {
		if t, err := time.Parse(DateLayout, trimmed[:len(DateLayout)]); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("formato de data inválido: '%s'", s)
}

// MustParseDate é ParseDate que entra em pânico; para constantes e testes.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) Year() int         { return d.year }
func (d Date) Month() time.Month { return d.month }
func (d Date) Day() int          { return d.day }
func (d Date) IsZero() bool      { return d.year == 0 && d.month == 0 && d.day == 0 }

// Time devolve a meia-noite da data no fuso informado.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}

func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

// AddDays soma n dias.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time(time.UTC).AddDate(0, 0, n))
}

// AddMonths soma n meses; se o dia não existir no mês de destino usa o último dia
// (31/01 + 1 mês = 28 ou 29/02).
func (d Date) AddMonths(n int) Date {
	first := time.Date(d.year, d.month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return Date{year: first.Year(), month: first.Month(), day: min(d.day, daysIn(first.Year(), first.Month()))}
}

// WithDay troca o dia do mês, limitado ao último dia do mês.
func (d Date) WithDay(day int) Date {
	if day < 1 {
		day = 1
	}
	return Date{year: d.year, month: d.month, day: min(day, daysIn(d.year, d.month))}
}

// FirstOfMonth devolve o dia 1 do mês da data.
func (d Date) FirstOfMonth() Date {
	return Date{year: d.year, month: d.month, day: 1}
}

// Compare devolve -1, 0 ou 1.
func (d Date) Compare(other Date) int {
	switch {
	case d.year != other.year:
		return cmpInt(d.year, other.year)
	case d.month != other.month:
		return cmpInt(int(d.month), int(other.month))
	default:
		return cmpInt(d.day, other.day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }
func (d Date) Equal(other Date) bool  { return d.Compare(other) == 0 }

// MonthsBetween conta os meses de calendário de d até other (ignora o dia).
func (d Date) MonthsBetween(other Date) int {
	return (other.year-d.year)*12 + int(other.month) - int(d.month)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

// MarshalJSON serializa como "YYYY-MM-DD" ou null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON aceita string de data ou null.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("data deve ser string: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implementa driver.Valuer gravando "YYYY-MM-DD".
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implementa sql.Scanner para string, []byte e time.Time.
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		// Colunas date voltam como meia-noite UTC; não converter de fuso.
		*d = DateOf(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("tipo %T não suportado para Date", value)
	}
}

func (d *Date) scanString(s string) error {
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GormDataType informa o tipo da coluna ao GORM.
func (Date) GormDataType() string {
	return "date"
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
