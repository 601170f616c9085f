package export

// merge appends newly decoded records to the existing sequence and computes
// the new cursor. No re-sort happens: the reader delivers rows ascending by
// ROWID and the existing sequence is a prior output of this same invariant,
// so encounter order (existing first, new appended) keeps the sequence
// non-decreasing. The cursor is the max ROWID ever merged and never moves
// backwards; with no new records both sequence and cursor are returned
// unchanged.
func merge(existing, fetched []Record, cursor *int64) ([]Record, *int64) {
	if len(fetched) == 0 {
		return existing, cursor
	}

	maxRowID := int64(0)
	if cursor != nil {
		maxRowID = *cursor
	}
	for _, rec := range fetched {
		if rec.RowID > maxRowID {
			maxRowID = rec.RowID
		}
	}

	merged := make([]Record, 0, len(existing)+len(fetched))
	merged = append(merged, existing...)
	merged = append(merged, fetched...)
	return merged, &maxRowID
}
