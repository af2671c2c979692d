package catalog

import (
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"

	"github.com/centinela/backoffice/internal/store"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"12500", 12500},
		{"12.500", 12500},
		{"1.234.567", 1234567},
		{"12.500,49", 12500},
		{"12.500,50", 12501},
		{"$ 45.000", 45000},
		{"0", 0},
	}
	for _, c := range cases {
		got, err := ParseMoney(c.in)
		if err != nil {
			t.Fatalf("ParseMoney(%q) returned error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseMoney(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseMoneyRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "  ", "abc", "-5.000"} {
		if _, err := ParseMoney(in); err == nil {
			t.Fatalf("ParseMoney(%q) expected error, got none", in)
		}
	}
}

func TestItemsFromFrame(t *testing.T) {
	df := dataframe.LoadRecords([][]string{
		{"Nombre", "Precio", "Unidad"},
		{"Camisa invierno", "12.500", "unidad"},
		{"Pantalon", "18.990", "unidad"},
		{"", "5.000", "unidad"},
		{"Gorro", "no-price", "unidad"},
	})

	items, skipped := ItemsFromFrame(df, store.CatalogKindUniform)

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skipped rows, got %d", len(skipped))
	}

	first := items[0]
	if first.Name != "Camisa invierno" || first.BasePriceCLP != 12500 {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if first.Kind != store.CatalogKindUniform || !first.Active {
		t.Fatalf("item metadata not set: %+v", first)
	}
	if items[1].BasePriceCLP != 18990 {
		t.Fatalf("expected second price 18990, got %d", items[1].BasePriceCLP)
	}
}

func TestReadPriceListDecodesLatin1(t *testing.T) {
	csv := "Nombre;Precio;Unidad\nChaleco antibalas peque\xf1o;120.000;unidad\n"

	df, err := ReadPriceList(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadPriceList failed: %v", err)
	}

	items, skipped := ItemsFromFrame(df, store.CatalogKindUniform)
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped rows: %v", skipped)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Name != "Chaleco antibalas pequeño" {
		t.Fatalf("latin-1 name not decoded: %q", items[0].Name)
	}
	if items[0].BasePriceCLP != 120000 {
		t.Fatalf("expected price 120000, got %d", items[0].BasePriceCLP)
	}
}
