package collector

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"SignalSentinel/internal/model"
	"SignalSentinel/pkg/errors"
)

const (
	colTime     = "time"
	colOpen     = "open"
	colHigh     = "high"
	colLow      = "low"
	colClose    = "close"
	colAdjClose = "adj_close"
	colVolume   = "volume"
)

// headerAliases maps normalized header names to columns.
var headerAliases = map[string]string{
	"date":      colTime,
	"datetime":  colTime,
	"timestamp": colTime,
	"time":      colTime,
	"날짜":        colTime,
	"일자":        colTime,
	"open":      colOpen,
	"시가":        colOpen,
	"high":      colHigh,
	"고가":        colHigh,
	"low":       colLow,
	"저가":        colLow,
	"close":     colClose,
	"종가":        colClose,
	"adj close": colAdjClose,
	"adj_close": colAdjClose,
	"adjclose":  colAdjClose,
	"volume":    colVolume,
	"거래량":       colVolume,
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"2006.01.02",
}

// CSVFetcher reads OHLCV history from one CSV file per symbol.
type CSVFetcher struct {
	Files map[string]string // symbol -> path
}

// NewCSVFetcher creates a CSVFetcher over the given symbol-to-path map.
func NewCSVFetcher(files map[string]string) *CSVFetcher {
	return &CSVFetcher{Files: files}
}

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) FetchBars(ctx context.Context, symbol string) (model.PriceSeries, error) {
	path, ok := f.Files[symbol]
	if !ok {
		return model.PriceSeries{}, errors.Wrapf(errors.ErrNotFound, "no csv configured for %s", symbol)
	}
	if err := ctx.Err(); err != nil {
		return model.PriceSeries{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return model.PriceSeries{}, errors.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	s, err := ReadCSV(file, symbol)
	if err != nil {
		return model.PriceSeries{}, errors.Wrapf(err, "read %s", path)
	}
	return s, nil
}

// ReadCSV parses a header row and OHLCV rows into a series sorted by time.
func ReadCSV(r io.Reader, symbol string) (model.PriceSeries, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return model.PriceSeries{}, errors.Wrap(errors.ErrEmptySeries, "csv has no header")
	}
	if err != nil {
		return model.PriceSeries{}, errors.Wrap(err, "read header")
	}
	cols, err := mapColumns(header)
	if err != nil {
		return model.PriceSeries{}, err
	}

	var bars []model.OHLCV
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.PriceSeries{}, errors.Wrapf(err, "line %d", line)
		}
		if blank(rec) {
			continue
		}
		b, err := parseRow(rec, cols)
		if err != nil {
			return model.PriceSeries{}, errors.Wrapf(err, "line %d", line)
		}
		bars = append(bars, b)
	}
	if len(bars) == 0 {
		return model.PriceSeries{}, errors.Wrapf(errors.ErrEmptySeries, "%s: no rows", symbol)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: time.Now()}, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

// mapColumns resolves column indices. Adj close stands in for close only
// when close is absent.
func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, h := range header {
		col, ok := headerAliases[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, dup := cols[col]; !dup {
			cols[col] = i
		}
	}
	if _, ok := cols[colClose]; !ok {
		if i, ok := cols[colAdjClose]; ok {
			cols[colClose] = i
		}
	}
	for _, c := range []string{colTime, colOpen, colHigh, colLow, colClose, colVolume} {
		if _, ok := cols[c]; !ok {
			return nil, errors.Wrapf(errors.ErrMissingColumn, "%s", c)
		}
	}
	return cols, nil
}

func parseRow(rec []string, cols map[string]int) (model.OHLCV, error) {
	field := func(c string) (string, error) {
		i := cols[c]
		if i >= len(rec) {
			return "", errors.Wrapf(errors.ErrMalformedBar, "missing %s", c)
		}
		return strings.TrimSpace(rec[i]), nil
	}

	raw, err := field(colTime)
	if err != nil {
		return model.OHLCV{}, err
	}
	ts, err := parseTime(raw)
	if err != nil {
		return model.OHLCV{}, err
	}

	var vals [5]float64
	for k, c := range []string{colOpen, colHigh, colLow, colClose, colVolume} {
		raw, err := field(c)
		if err != nil {
			return model.OHLCV{}, err
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return model.OHLCV{}, errors.Wrapf(errors.ErrMalformedBar, "%s %q", c, raw)
		}
		vals[k] = v
	}
	return model.OHLCV{
		Time:   ts,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	if sec, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, errors.Wrapf(errors.ErrMalformedBar, "timestamp %q", raw)
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
