package sqlstore

// RecordMapper scans a row of the given columns into a map keyed by
// column name. Byte slices are returned as strings.
func RecordMapper(columns []string) RowMapper[map[string]any] {
	return func(row Scanner) (map[string]any, error) {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := row.Scan(dest...); err != nil {
			return nil, err
		}
		record := make(map[string]any, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				record[column] = string(b)
				continue
			}
			record[column] = values[i]
		}
		return record, nil
	}
}
