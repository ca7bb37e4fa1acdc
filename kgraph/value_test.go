package kgraph

import (
	"testing"
)

func TestValueString(t *testing.T) {
	cases := []struct {
		value Value
		want  string
	}{
		{NewString("Alice"), "Alice"},
		{NewQuantity(180, "centimetre"), "180 centimetre"},
		{NewQuantity(180, Dimensionless), "180"},
		{NewQuantity(180.5, "centimetre"), "180.5 centimetre"},
		{NewQuantity(179.9999999, "centimetre"), "180 centimetre"},
		{NewYear(1960), "1960"},
		{NewDate(1960, 2, 1), "1960-02-01"},
	}
	for _, c := range cases {
		if got := c.value.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestParseLiteralQuantity(t *testing.T) {
	v, err := ParseLiteral("200 centimetre", KindQuantity)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.Num != 200 || v.Unit != "centimetre" {
		t.Errorf("got %v %q", v.Num, v.Unit)
	}

	v, err = ParseLiteral("42", KindQuantity)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.Unit != Dimensionless {
		t.Errorf("bare number unit = %q, want dimensionless", v.Unit)
	}

	v, err = ParseLiteral("1000000 United States dollar", KindQuantity)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.Unit != "United States dollar" {
		t.Errorf("multi-word unit = %q", v.Unit)
	}

	if _, err := ParseLiteral("tall", KindQuantity); err == nil {
		t.Error("expected parse error for non-numeric quantity")
	}
}

func TestParseLiteralTemporal(t *testing.T) {
	v, err := ParseLiteral("1984-12-30", KindDate)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.Kind != KindDate || v.Date != (Date{1984, 12, 30}) {
		t.Errorf("got %+v", v)
	}

	v, err = ParseLiteral("1984/12/30", KindDate)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.Date != (Date{1984, 12, 30}) {
		t.Errorf("slash separator: got %+v", v.Date)
	}

	// No separator parses as a year, even under KindDate: the two kinds
	// share one key type.
	v, err = ParseLiteral("1984", KindDate)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.Kind != KindYear || v.Year != 1984 {
		t.Errorf("got %+v", v)
	}

	// A leading minus is a sign, not a separator.
	v, err = ParseLiteral("-500", KindYear)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.Kind != KindYear || v.Year != -500 {
		t.Errorf("got %+v", v)
	}

	if _, err := ParseLiteral("1990-05", KindDate); err == nil {
		t.Error("expected parse error for a single separator")
	}
	if _, err := ParseLiteral("1990-13-01", KindDate); err == nil {
		t.Error("expected parse error for month 13")
	}
	if _, err := ParseLiteral("1990-02-30", KindDate); err == nil {
		t.Error("expected parse error for February 30")
	}
}

func TestParseLiteralLeapYear(t *testing.T) {
	if _, err := ParseLiteral("2000-02-29", KindDate); err != nil {
		t.Errorf("2000-02-29 should parse: %v", err)
	}
	if _, err := ParseLiteral("1900-02-29", KindDate); err == nil {
		t.Error("1900-02-29 should not parse")
	}
}
