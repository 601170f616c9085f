package export

import "github.com/stecurtis/imx/internal/appletime"

// Bucket holds one calendar day's counts. Total always equals
// Sent + Received.
type Bucket struct {
	Sent     int `json:"sent"`
	Received int `json:"received"`
	Total    int `json:"total"`
}

// Rollup maps day keys (YYYY-MM-DD, contact-local offset already applied by
// the timestamp codec) to per-day counts.
type Rollup struct {
	Days map[string]Bucket `json:"days"`
}

// BuildRollup recomputes the rollup as a full fold over the merged record
// set. Records without a decodable timestamp contribute to no bucket but
// remain in the record set; consequently the sum of Total across days
// equals the count of records with a non-null timestamp.
func BuildRollup(records []Record) Rollup {
	days := make(map[string]Bucket)
	for _, rec := range records {
		if rec.Timestamp == nil {
			continue
		}
		key := appletime.DayKey(*rec.Timestamp)
		if key == "" {
			continue
		}
		b := days[key]
		if rec.IsFromOwner {
			b.Sent++
		} else {
			b.Received++
		}
		b.Total++
		days[key] = b
	}
	return Rollup{Days: days}
}
