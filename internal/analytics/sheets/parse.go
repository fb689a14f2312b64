package sheets

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/jekabolt/shop-metrics/internal/entity"
	"github.com/shopspring/decimal"
)

type column int

const (
	colDate column = iota
	colShop
	colRevenue
	colOrders
	colCost
	colProfit
	colROI
)

// headerAliases maps normalized header cells to columns.
// Normalization lowercases and drops everything but letters and digits.
var headerAliases = map[string]column{
	"date":          colDate,
	"day":           colDate,
	"shopid":        colShop,
	"storeid":       colShop,
	"shop":          colShop,
	"revenue":       colRevenue,
	"sales":         colRevenue,
	"totalsales":    colRevenue,
	"grossrevenue":  colRevenue,
	"orders":        colOrders,
	"ordercount":    colOrders,
	"totalorders":   colOrders,
	"totalpurchase": colCost,
	"purchase":      colCost,
	"cost":          colCost,
	"costs":         colCost,
	"totalcost":     colCost,
	"cogs":          colCost,
	"profit":        colProfit,
	"netprofit":     colProfit,
	"roi":           colROI,
}

var dateLayouts = []string{
	entity.DateLayout,
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"2006/1/2",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// sheetsEpoch is day zero of spreadsheet serial dates.
var sheetsEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// maxSerialDate is the serial of 9999-12-31.
const maxSerialDate = 2958465

func normalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func cellString(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}

// ParseRows turns a header row plus data rows into records for shopId.
// Date and revenue columns are required. When the sheet has a shop id column only
// rows for shopId are kept. Missing profit is derived as revenue - cost and missing
// ROI as profit / cost * 100. Rows with an unreadable date or negative amounts are
// skipped.
func ParseRows(values [][]interface{}, shopId int, loc *time.Location) ([]entity.MetricRecordInsert, error) {
	if len(values) == 0 {
		return []entity.MetricRecordInsert{}, nil
	}

	cols := map[column]int{}
	for i := range values[0] {
		if c, ok := headerAliases[normalizeHeader(cellString(values[0], i))]; ok {
			if _, dup := cols[c]; !dup {
				cols[c] = i
			}
		}
	}
	for _, required := range []column{colDate, colRevenue} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("header row has no date or revenue column")
		}
	}
	idx := func(c column) int {
		if i, ok := cols[c]; ok {
			return i
		}
		return -1
	}

	records := make([]entity.MetricRecordInsert, 0, len(values)-1)
	for n, row := range values[1:] {
		rawDate := cellString(row, idx(colDate))
		if rawDate == "" {
			continue
		}
		if i := idx(colShop); i >= 0 {
			id, err := strconv.Atoi(cellString(row, i))
			if err != nil || id != shopId {
				continue
			}
		}
		date, err := ParseDate(rawDate, loc)
		if err != nil {
			slog.Default().Warn("skipping sheet row with bad date",
				slog.Int("row", n+2),
				slog.String("date", rawDate),
			)
			continue
		}

		r := entity.MetricRecordInsert{
			ShopId:        shopId,
			Date:          date,
			Revenue:       ParseNumber(cellString(row, idx(colRevenue))),
			Orders:        int(ParseNumber(cellString(row, idx(colOrders))).IntPart()),
			TotalPurchase: ParseNumber(cellString(row, idx(colCost))),
		}
		if r.Revenue.IsNegative() || r.TotalPurchase.IsNegative() || r.Orders < 0 {
			slog.Default().Warn("skipping sheet row with negative amounts",
				slog.Int("row", n+2),
			)
			continue
		}
		if i := idx(colProfit); i >= 0 {
			r.Profit = ParseNumber(cellString(row, i))
		} else {
			r.Profit = r.Revenue.Sub(r.TotalPurchase)
		}
		if i := idx(colROI); i >= 0 {
			r.ROI = ParseNumber(cellString(row, i))
		} else if !r.TotalPurchase.IsZero() {
			r.ROI = r.Profit.Div(r.TotalPurchase).Mul(decimal.NewFromInt(100)).Round(2)
		} else {
			r.ROI = decimal.Zero
		}
		records = append(records, r)
	}
	return records, nil
}

// ParseNumber coerces a formatted cell into a number. Currency symbols, thousands
// separators, percent signs and spaces are ignored, "(12.50)" is negative, and
// empty or unparseable cells are zero.
func ParseNumber(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', ',', '%', ' ', '\u00a0':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		d = d.Neg()
	}
	return d
}

// ParseDate accepts the common sheet date formats, RFC 3339 timestamps and
// serial day numbers counted from 1899-12-30.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return entity.DateOf(t), nil
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return entity.DateOf(t.In(loc)), nil
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < maxSerialDate+1 {
		return sheetsEpoch.AddDate(0, 0, int(serial)), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
