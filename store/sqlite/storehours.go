package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/schedulehq/schedule-engine/storehours"
)

// LoadStoreHours returns the per-weekday hours. Weekdays without a row keep
// the defaults.
func (s *Store) LoadStoreHours(ctx context.Context) (storehours.Hours, error) {
	hours := storehours.Default()

	rows, err := s.db.QueryContext(ctx,
		"SELECT weekday, open_time, close_time, closed FROM store_hours ORDER BY weekday")
	if err != nil {
		return hours, fmt.Errorf("failed to query store hours: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var weekday, closed int
		var open, closing string
		if err := rows.Scan(&weekday, &open, &closing, &closed); err != nil {
			return hours, err
		}
		if weekday < 0 || weekday > 6 {
			continue
		}
		hours[weekday] = storehours.Day{
			Weekday: time.Weekday(weekday),
			Open:    open,
			Close:   closing,
			Closed:  closed != 0,
		}
	}
	return hours, rows.Err()
}

// SaveStoreHours replaces all seven rows in one transaction.
func (s *Store) SaveStoreHours(ctx context.Context, h storehours.Hours) error {
	return s.inTx(ctx, func(q *queries) error {
		for _, d := range h {
			_, err := q.db.ExecContext(ctx, `
				INSERT INTO store_hours (weekday, open_time, close_time, closed)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(weekday) DO UPDATE SET
					open_time = excluded.open_time,
					close_time = excluded.close_time,
					closed = excluded.closed`,
				int(d.Weekday), d.Open, d.Close, boolInt(d.Closed))
			if err != nil {
				return fmt.Errorf("failed to save %s hours: %w", d.Weekday, err)
			}
		}
		return nil
	})
}
