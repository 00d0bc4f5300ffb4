package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// MockGateway is an in-memory SheetGateway for tests. Sheets are keyed by
// id; the first row of each sheet is treated as the header by ReadRecords.
type MockGateway struct {
	mu     sync.Mutex
	sheets map[string][][]string

	// Err, when set, is returned by every operation.
	Err error

	// SheetErr, when set for a sheet id, is returned by reads of that
	// sheet only.
	SheetErr map[string]error

	// Call counters.
	ReadCalls   int
	AppendCalls int
	UpdateCalls int
}

// NewMockGateway creates an empty mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{sheets: make(map[string][][]string)}
}

// SetRows replaces a sheet's contents, header row included.
func (m *MockGateway) SetRows(sheetID string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheets[sheetID] = rows
}

// Rows returns a copy of a sheet's current contents.
func (m *MockGateway) Rows(sheetID string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	src := m.sheets[sheetID]
	out := make([][]string, len(src))
	for i, row := range src {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// ReadRows implements service.SheetGateway.
func (m *MockGateway) ReadRows(_ context.Context, sheetID string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReadCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	if err := m.SheetErr[sheetID]; err != nil {
		return nil, err
	}
	return m.sheets[sheetID], nil
}

// ReadRecords implements service.SheetGateway, keying each data row by the
// header row. Rows shorter than the header yield empty strings for the
// missing trailing columns.
func (m *MockGateway) ReadRecords(_ context.Context, sheetID string) ([]map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReadCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	if err := m.SheetErr[sheetID]; err != nil {
		return nil, err
	}

	rows := m.sheets[sheetID]
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(header))
		for i, key := range header {
			key = strings.TrimSpace(key)
			if i < len(row) {
				record[key] = row[i]
			} else {
				record[key] = ""
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// AppendRow implements service.SheetGateway.
func (m *MockGateway) AppendRow(ctx context.Context, sheetID string, row []any) error {
	return m.AppendRows(ctx, sheetID, [][]any{row})
}

// AppendRows implements service.SheetGateway.
func (m *MockGateway) AppendRows(_ context.Context, sheetID string, rows [][]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AppendCalls++
	if m.Err != nil {
		return m.Err
	}

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = toCellString(v)
		}
		m.sheets[sheetID] = append(m.sheets[sheetID], cells)
	}
	return nil
}

// UpdateCell implements service.SheetGateway with 1-based coordinates,
// growing the target row as needed.
func (m *MockGateway) UpdateCell(_ context.Context, sheetID string, row, col int64, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls++
	if m.Err != nil {
		return m.Err
	}

	rows := m.sheets[sheetID]
	for int64(len(rows)) < row {
		rows = append(rows, nil)
	}
	target := rows[row-1]
	for int64(len(target)) < col {
		target = append(target, "")
	}
	target[col-1] = value
	rows[row-1] = target
	m.sheets[sheetID] = rows
	return nil
}

// toCellString renders a cell value the way the live backend echoes it
// back: floats without trailing zeros, everything else via fmt.
func toCellString(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// TotalCalls returns the number of gateway operations performed.
func (m *MockGateway) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ReadCalls + m.AppendCalls + m.UpdateCalls
}
