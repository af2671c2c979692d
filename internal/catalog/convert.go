// Package catalog maps supplier price-list CSVs onto catalog items. Supplier
// files arrive latin-1 encoded with Chilean number formatting (thousands '.',
// decimal ',').
package catalog

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"golang.org/x/text/encoding/charmap"

	"github.com/centinela/backoffice/internal/store"
)

// Expected price-list columns.
const (
	colName  = "Nombre"
	colPrice = "Precio"
	colUnit  = "Unidad"
)

// ReadPriceList decodes a latin-1 supplier CSV into a dataframe.
func ReadPriceList(r io.Reader) (dataframe.DataFrame, error) {
	decoded := charmap.ISO8859_1.NewDecoder().Reader(r)
	df := dataframe.ReadCSV(decoded, dataframe.WithDelimiter(';'), dataframe.WithLazyQuotes(true))
	if df.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to parse price list: %w", df.Error())
	}
	return df, nil
}

// ItemsFromFrame converts price-list rows into catalog items of one kind.
// Rows with an empty name or an unparseable price are skipped and reported.
func ItemsFromFrame(df dataframe.DataFrame, kind string) (items []store.CatalogItem, skipped []error) {
	now := time.Now()
	for i := 0; i < df.Nrow(); i++ {
		name := strings.TrimSpace(getStr(colName, i, &df))
		if name == "" {
			skipped = append(skipped, fmt.Errorf("row %d: empty item name", i))
			continue
		}

		price, err := ParseMoney(getStr(colPrice, i, &df))
		if err != nil {
			skipped = append(skipped, fmt.Errorf("row %d (%s): %w", i, name, err))
			continue
		}

		items = append(items, store.CatalogItem{
			Kind:         kind,
			Name:         name,
			BasePriceCLP: price,
			Unit:         strings.TrimSpace(getStr(colUnit, i, &df)),
			Active:       true,
			InsertedAt:   now,
			UpdatedAt:    now,
		})
	}
	return items, skipped
}

// ParseMoney parses a Chilean-formatted amount into integer CLP, rounding
// half away from zero.
func ParseMoney(valStr string) (int64, error) {
	cleanStr := strings.TrimSpace(valStr)
	cleanStr = strings.TrimPrefix(cleanStr, "$")
	cleanStr = strings.TrimSpace(cleanStr)
	if cleanStr == "" {
		return 0, fmt.Errorf("empty amount")
	}
	// Remove thousands separator (.) and replace decimal separator (,) with (.)
	cleanStr = strings.ReplaceAll(cleanStr, ".", "")
	cleanStr = strings.ReplaceAll(cleanStr, ",", ".")
	val, err := strconv.ParseFloat(cleanStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", valStr, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("negative amount %q", valStr)
	}
	return int64(math.Round(val)), nil
}

func getStr(col string, rowIdx int, df *dataframe.DataFrame) string {
	if df == nil {
		return ""
	}
	if containsString(df.Names(), col) {
		return df.Col(col).Elem(rowIdx).String()
	}
	return ""
}

func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
