package export

import "testing"

func tsRec(rowID int64, iso string, fromOwner bool) Record {
	r := Record{RowID: rowID, IsFromOwner: fromOwner}
	if iso != "" {
		r.Timestamp = &iso
	}
	return r
}

func TestBuildRollupBuckets(t *testing.T) {
	records := []Record{
		tsRec(1, "2024-06-01T09:00:00+01:00", true),
		tsRec(2, "2024-06-01T10:00:00+01:00", false),
		tsRec(3, "2024-06-01T11:00:00+01:00", false),
		tsRec(4, "2024-06-02T09:00:00+01:00", true),
	}

	r := BuildRollup(records)

	day1 := r.Days["2024-06-01"]
	if day1.Sent != 1 || day1.Received != 2 || day1.Total != 3 {
		t.Errorf("2024-06-01 = %+v, want {1 2 3}", day1)
	}
	day2 := r.Days["2024-06-02"]
	if day2.Sent != 1 || day2.Received != 0 || day2.Total != 1 {
		t.Errorf("2024-06-02 = %+v, want {1 0 1}", day2)
	}
}

func TestBuildRollupExcludesNullTimestamps(t *testing.T) {
	records := []Record{
		tsRec(1, "2024-06-01T09:00:00Z", true),
		tsRec(2, "", false), // undecodable store date: kept in the set, no bucket
	}

	r := BuildRollup(records)

	total := 0
	for _, b := range r.Days {
		total += b.Total
	}
	if total != 1 {
		t.Errorf("rollup total = %d, want 1 (null timestamp excluded)", total)
	}
}

// Rollup consistency: every bucket's total is sent+received and the grand
// total reproduces the count of timestamped records.
func TestBuildRollupConsistency(t *testing.T) {
	var records []Record
	isos := []string{
		"2024-06-01T09:00:00Z", "2024-06-01T10:00:00Z", "2024-06-02T09:00:00Z",
		"2024-06-03T09:00:00Z", "", "2024-06-03T12:00:00Z", "",
	}
	timestamped := 0
	for i, iso := range isos {
		records = append(records, tsRec(int64(i+1), iso, i%2 == 0))
		if iso != "" {
			timestamped++
		}
	}

	r := BuildRollup(records)

	grand := 0
	for day, b := range r.Days {
		if b.Total != b.Sent+b.Received {
			t.Errorf("%s: total %d != sent %d + received %d", day, b.Total, b.Sent, b.Received)
		}
		grand += b.Total
	}
	if grand != timestamped {
		t.Errorf("grand total = %d, want %d", grand, timestamped)
	}
}

func TestBuildRollupEmpty(t *testing.T) {
	r := BuildRollup(nil)
	if len(r.Days) != 0 {
		t.Errorf("days = %v, want empty", r.Days)
	}
}
