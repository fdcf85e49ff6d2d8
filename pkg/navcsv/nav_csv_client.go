package navcsv

import (
	"fmt"
	"fundsim/internal/domain"
	"io"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type navRow struct {
	Date        string  `csv:"date"`
	Nav         float64 `csv:"nav"`
	DailyReturn float64 `csv:"daily_return"`
}

// Load reads a nav history csv with columns date, nav, daily_return.
// The caller states which unit daily_return is in - there is no
// magnitude guessing. Rows come back as a percent-unit, order-validated
// history.
func Load(r io.Reader, scale domain.ReturnScale) (domain.NavHistory, error) {
	rows := []navRow{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse nav csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("nav csv has no data rows")
	}

	points := make([]domain.NavPoint, 0, len(rows))
	for i, row := range rows {
		date, err := time.Parse(dateLayout, row.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to parse date %q: %w", i+1, row.Date, err)
		}
		points = append(points, domain.NavPoint{
			Date:        date,
			Nav:         decimal.NewFromFloat(row.Nav),
			DailyReturn: row.DailyReturn,
		})
	}

	return domain.NewNavHistory(points, scale)
}

func LoadFile(path string, scale domain.ReturnScale) (domain.NavHistory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open nav csv: %w", err)
	}
	defer f.Close()

	return Load(f, scale)
}
