package pricing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"price-reconciler/internal/dto"

	"github.com/shopspring/decimal"
)

// maxEncodingDepth bounds how many times a payload may be wrapped in a JSON
// string. The ERP sometimes returns its result set JSON-encoded twice.
const maxEncodingDepth = 2

var ErrUpstreamParse = errors.New("upstream price payload could not be parsed")

// ParseError reports a price payload that could not be turned into records,
// including the ERP's own failure shape ({"Message": "..."}).
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse price payload: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse price payload: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrUpstreamParse }

var (
	wrapperKeys = []string{"data", "result", "results", "rows", "items", "records"}
	messageKeys = []string{"message", "errormessage"}

	stockIDKeys       = []string{"stockid", "id"}
	stockCodeKeys     = []string{"stockcode", "stockno", "code", "sku"}
	stockNameKeys     = []string{"stockname", "name", "productname"}
	categoryCodeKeys  = []string{"categorycode", "category"}
	subCategoryKeys   = []string{"subcategory", "subcategorycode"}
	purchasePriceKeys = []string{"currentpurchaseprice", "purchaseprice", "buyprice", "cost"}
	salesPriceKeys    = []string{"currentsalesprice", "salesprice", "saleprice", "price"}
	avgSales30Keys    = []string{"avgsalesprice30days", "avgsalesprice30", "avgsalesprice"}
	lastUpdateKeys    = []string{"lastupdatedate", "lastupdate", "updatedat"}

	uploadedCodeKeys     = []string{"stockcode", "stockno", "code", "sku"}
	uploadedPurchaseKeys = []string{"uploadedpurchaseprice", "purchaseprice", "purchase", "buyprice", "cost"}
	uploadedSalesKeys    = []string{"uploadedsalesprice", "salesprice", "saleprice", "sales", "price"}
	uploadedShelfKeys    = []string{"uploadedshelfprice", "shelfprice", "recommendedprice", "retailprice", "rrp"}
	uploadedDateKeys     = []string{"uploadeddate", "date", "pricedate"}
)

// ParseCurrentPrices decodes an ERP price payload into canonical records.
// On failure it returns no records and a *ParseError.
func ParseCurrentPrices(payload []byte) ([]dto.CurrentPriceRecord, error) {
	rows, err := decodeRows(payload, 0)
	if err != nil {
		return nil, err
	}

	records := make([]dto.CurrentPriceRecord, 0, len(rows))
	for _, row := range rows {
		record, ok := normalizeCurrentRow(row)
		if !ok {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func decodeRows(payload []byte, depth int) ([]map[string]any, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &ParseError{Reason: "invalid json", Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &ParseError{Reason: "unexpected data after json value", Err: err}
	}
	return rowsFromValue(v, depth)
}

func rowsFromValue(v any, depth int) ([]map[string]any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if depth >= maxEncodingDepth {
			return nil, &ParseError{Reason: "payload is encoded too many times"}
		}
		return decodeRows([]byte(t), depth+1)
	case []any:
		rows := make([]map[string]any, 0, len(t))
		for _, elem := range t {
			if row, ok := elem.(map[string]any); ok {
				rows = append(rows, normalizeKeys(row))
			}
		}
		return rows, nil
	case map[string]any:
		obj := normalizeKeys(t)
		for _, key := range wrapperKeys {
			if inner, ok := obj[key]; ok && inner != nil {
				return rowsFromValue(inner, depth)
			}
		}
		if msg, ok := lookup(obj, messageKeys); ok {
			return nil, &ParseError{Reason: fmt.Sprintf("upstream error: %v", msg)}
		}
		if _, ok := lookup(obj, stockCodeKeys); ok {
			return []map[string]any{obj}, nil
		}
		return nil, &ParseError{Reason: "unrecognized payload object"}
	default:
		return nil, &ParseError{Reason: fmt.Sprintf("unexpected payload type %T", v)}
	}
}

func normalizeCurrentRow(row map[string]any) (dto.CurrentPriceRecord, bool) {
	code := stringField(row, stockCodeKeys)
	if code == nil {
		return dto.CurrentPriceRecord{}, false
	}

	record := dto.CurrentPriceRecord{
		StockID:              intField(row, stockIDKeys),
		StockCode:            *code,
		StockName:            UnknownStockName,
		CategoryCode:         stringField(row, categoryCodeKeys),
		SubCategory:          stringField(row, subCategoryKeys),
		CurrentPurchasePrice: numberField(row, purchasePriceKeys),
		CurrentSalesPrice:    numberField(row, salesPriceKeys),
		AvgSalesPrice30Days:  numberField(row, avgSales30Keys),
		LastUpdateDate:       stringField(row, lastUpdateKeys),
	}
	if name := stringField(row, stockNameKeys); name != nil {
		record.StockName = *name
	}
	record.CurrentMargin = Margin(record.CurrentPurchasePrice, record.CurrentSalesPrice)
	return record, true
}

// NormalizeUploadedRows maps parsed spreadsheet rows (header -> cell) onto
// uploaded items. Rows without a stock code are dropped.
func NormalizeUploadedRows(rows []map[string]string) []dto.UploadedItem {
	items := make([]dto.UploadedItem, 0, len(rows))
	for _, raw := range rows {
		cells := make(map[string]any, len(raw))
		for k, v := range raw {
			cells[k] = v
		}
		row := normalizeKeys(cells)

		code := stringField(row, uploadedCodeKeys)
		if code == nil {
			continue
		}
		items = append(items, dto.UploadedItem{
			StockCode:             *code,
			UploadedPurchasePrice: numberField(row, uploadedPurchaseKeys),
			UploadedSalesPrice:    numberField(row, uploadedSalesKeys),
			UploadedShelfPrice:    numberField(row, uploadedShelfKeys),
			UploadedDate:          stringField(row, uploadedDateKeys),
		})
	}
	return items
}

// CleanUploadedItems trims stock codes and drops items whose code is empty.
func CleanUploadedItems(items []dto.UploadedItem) []dto.UploadedItem {
	cleaned := make([]dto.UploadedItem, 0, len(items))
	for _, item := range items {
		item.StockCode = strings.TrimSpace(item.StockCode)
		if item.StockCode == "" {
			continue
		}
		cleaned = append(cleaned, item)
	}
	return cleaned
}

// normalizeKeys folds keys with normalizeKey. When several keys fold to the
// same name, the one that sorts first wins so repeated runs agree.
func normalizeKeys(m map[string]any) map[string]any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(m))
	for _, k := range keys {
		nk := normalizeKey(k)
		if _, exists := out[nk]; exists {
			continue
		}
		out[nk] = m[k]
	}
	return out
}

// normalizeKey folds "STOCK_CODE", "stockCode" and "Stock Code" to "stockcode".
func normalizeKey(k string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(k)) {
		switch r {
		case '_', ' ', '-', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func lookup(row map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringField(row map[string]any, keys []string) *string {
	v, ok := lookup(row, keys)
	if !ok {
		return nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		return nil
	}
	if s == "" {
		return nil
	}
	return &s
}

// numberField returns nil when the field is absent, empty or not numeric, and
// keeps an explicit zero as zero.
func numberField(row map[string]any, keys []string) *float64 {
	v, ok := lookup(row, keys)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case json.Number:
		return parseNumber(t.String())
	case float64:
		return finite(t)
	case string:
		return parseNumber(t)
	default:
		return nil
	}
}

func intField(row map[string]any, keys []string) *int64 {
	f := numberField(row, keys)
	if f == nil {
		return nil
	}
	i := int64(*f)
	return &i
}

// parseNumber accepts "12.5", "12,5", "1.234,50" and "1,234.50".
func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return nil
	}

	lastComma, lastDot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastComma >= 0 && lastDot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	f, _ := d.Float64()
	return finite(f)
}
