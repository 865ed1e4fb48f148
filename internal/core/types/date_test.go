package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"2024-01-31", 1, "2024-02-29"},
		{"2023-01-31", 1, "2023-02-28"},
		{"2024-03-10", 1, "2024-04-10"},
		{"2024-11-15", 2, "2025-01-15"},
		{"2024-05-31", -1, "2024-04-30"},
		{"2024-08-31", 12, "2025-08-31"},
	}
	for _, c := range cases {
		got := MustParseDate(c.in).AddMonths(c.n)
		if got.String() != c.want {
			t.Errorf("%s + %d meses = %s, esperado %s", c.in, c.n, got, c.want)
		}
	}
}

func TestWithDayClamps(t *testing.T) {
	if got := MustParseDate("2024-04-10").WithDay(31).String(); got != "2024-04-30" {
		t.Fatalf("WithDay(31) em abril = %s", got)
	}
	if got := MustParseDate("2024-04-10").WithDay(0).String(); got != "2024-04-01" {
		t.Fatalf("WithDay(0) = %s", got)
	}
}

func TestParseDateFormats(t *testing.T) {
	for _, in := range []string{"2024-03-10", "10/03/2024", "2024-03-10T23:30:00-03:00", "2024-03-10 00:00:00+00:00"} {
		d, err := ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", in, err)
		}
		if d.String() != "2024-03-10" {
			t.Fatalf("ParseDate(%q) = %s", in, d)
		}
	}
	if _, err := ParseDate("10-2024-03"); err == nil {
		t.Fatalf("esperado erro para formato inválido")
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	type payload struct {
		Vencimento Date  `json:"vencimento"`
		Pagamento  *Date `json:"pagamento"`
	}
	var p payload
	if err := json.Unmarshal([]byte(`{"vencimento":"2024-03-10","pagamento":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Vencimento.String() != "2024-03-10" || p.Pagamento != nil {
		t.Fatalf("decodificado incorretamente: %+v", p)
	}
	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"vencimento":"2024-03-10","pagamento":null}` {
		t.Fatalf("json inesperado: %s", out)
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	// Meia-noite UTC não pode virar o dia anterior.
	if err := d.Scan(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)); err != nil || d.String() != "2024-03-10" {
		t.Fatalf("scan time.Time: %v %s", err, d)
	}
	if err := d.Scan([]byte("2024-12-01")); err != nil || d.String() != "2024-12-01" {
		t.Fatalf("scan []byte: %v %s", err, d)
	}
	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Fatalf("scan nil: %v %s", err, d)
	}
}

func TestCompareAndMonthsBetween(t *testing.T) {
	a, b := MustParseDate("2024-03-10"), MustParseDate("2025-01-02")
	if !a.Before(b) || b.Before(a) || !a.Equal(MustParseDate("2024-03-10")) {
		t.Fatalf("comparação incorreta")
	}
	if got := a.MonthsBetween(b); got != 10 {
		t.Fatalf("MonthsBetween = %d", got)
	}
}
