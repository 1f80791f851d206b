package waypoint

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/relabs-tech/survey_navigator/internal/projection"
)

// ErrMalformedRow marks an import row that was skipped.
var ErrMalformedRow = errors.New("malformed row")

var (
	utf8BOM   = []byte{0xEF, 0xBB, 0xBF}
	csvHeader = []string{"測点名", "緯度", "経度", "X座標(m)", "Y座標(m)", "精度(m)", "GNSSステータス", "測地系", "タイムスタンプ"}
)

const (
	colName = iota
	colLat
	colLon
	colX
	colY
	colAcc
	colStatus
	colZone
	colTimestamp
)

// Export writes records as CSV with plane coordinates in the given zone:
// UTF-8 with BOM, CRLF line endings, the name always quoted.
func Export(w io.Writer, records []Record, zoneID int) error {
	zone, err := projection.Default().Zone(zoneID)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	bw.Write(utf8BOM)
	bw.WriteString(strings.Join(csvHeader, ","))
	bw.WriteString("\r\n")

	for _, r := range records {
		// Points outside the zone keep their lat/lon with X/Y left empty.
		var x, y string
		if p, err := projection.ToPlane(r.Geo(), zoneID); err == nil {
			x = strconv.FormatFloat(p.Northing, 'f', 4, 64)
			y = strconv.FormatFloat(p.Easting, 'f', 4, 64)
		}
		fields := []string{
			quote(r.Name),
			strconv.FormatFloat(r.Lat, 'f', 8, 64),
			strconv.FormatFloat(r.Lon, 'f', 8, 64),
			x,
			y,
			strconv.FormatFloat(r.Acc, 'f', 3, 64),
			field(r.Status),
			field(zone.Name),
			field(r.Timestamp),
		}
		bw.WriteString(strings.Join(fields, ","))
		bw.WriteString("\r\n")
	}
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// field quotes only when the value would break the row.
func field(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}

// ImportResult is the outcome of one batch import.
type ImportResult struct {
	Records []Record
	Skipped int
	Errors  []error
}

// Import reads a CSV export. A leading BOM and the header row are ignored.
// Rows whose coordinates cannot be read are skipped and counted; the batch
// is never aborted by a single row. When latitude/longitude are empty the
// X/Y columns are converted back through zoneID.
func Import(r io.Reader, zoneID int, now time.Time) (ImportResult, error) {
	if _, err := projection.Default().Zone(zoneID); err != nil {
		return ImportResult{}, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var res ImportResult
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				res.skip(fmt.Errorf("%w: line %d: %v", ErrMalformedRow, pe.Line, pe.Err))
				continue
			}
			return res, fmt.Errorf("read csv: %w", err)
		}
		if first {
			first = false
			if isHeader(row) {
				continue
			}
		}
		if blank(row) {
			continue
		}
		line, _ := cr.FieldPos(0)

		rec, err := parseRow(row, zoneID, now)
		if err != nil {
			res.skip(fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err))
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func (r *ImportResult) skip(err error) {
	r.Skipped++
	r.Errors = append(r.Errors, err)
}

func isHeader(row []string) bool {
	if len(row) <= colLat {
		return true
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(row[colLat]), 64)
	return err != nil && strings.TrimSpace(row[colLat]) != ""
}

func blank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func column(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseRow(row []string, zoneID int, now time.Time) (Record, error) {
	rec := Record{Name: column(row, colName), IsVisible: true}
	if rec.Name == "" {
		return Record{}, errors.New("empty name")
	}

	latStr, lonStr := column(row, colLat), column(row, colLon)
	switch {
	case latStr != "" && lonStr != "":
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return Record{}, fmt.Errorf("latitude %q", latStr)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return Record{}, fmt.Errorf("longitude %q", lonStr)
		}
		rec.Lat, rec.Lon = lat, lon

	default:
		xStr, yStr := column(row, colX), column(row, colY)
		x, errX := strconv.ParseFloat(xStr, 64)
		y, errY := strconv.ParseFloat(yStr, 64)
		if errX != nil || errY != nil {
			return Record{}, errors.New("no coordinates")
		}
		g, err := projection.ToGeo(projection.PlanePoint{Northing: x, Easting: y}, zoneID)
		if err != nil {
			return Record{}, err
		}
		rec.Lat, rec.Lon = g.Lat, g.Lon
	}
	if !rec.Geo().Valid() {
		return Record{}, fmt.Errorf("position %.8f,%.8f out of range", rec.Lat, rec.Lon)
	}

	if s := column(row, colAcc); s != "" {
		acc, err := strconv.ParseFloat(s, 64)
		if err != nil || acc < 0 {
			return Record{}, fmt.Errorf("accuracy %q", s)
		}
		rec.Acc = acc
	}
	rec.Status = column(row, colStatus)

	rec.Timestamp = FormatTimestamp(now)
	if s := column(row, colTimestamp); s != "" {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			rec.Timestamp = FormatTimestamp(t)
		}
	}
	return rec, nil
}
