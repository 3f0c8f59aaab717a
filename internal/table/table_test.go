package table

import (
	"errors"
	"reflect"
	"testing"
)

func TestRegularize(t *testing.T) {
	tests := []struct {
		name     string
		rows     [][]string
		wantNCol int
		wantRows [][]string
	}{
		{
			name:     "even rows untouched",
			rows:     [][]string{{"a", "b"}, {"c", "d"}},
			wantNCol: 2,
			wantRows: [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:     "short rows padded with empty cells",
			rows:     [][]string{{"a"}, {"b", "c", "d"}, {"e", "f"}},
			wantNCol: 3,
			wantRows: [][]string{{"a", "", ""}, {"b", "c", "d"}, {"e", "f", ""}},
		},
		{
			name:     "single row",
			rows:     [][]string{{"only"}},
			wantNCol: 1,
			wantRows: [][]string{{"only"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nCol, err := Regularize(tt.rows)
			if err != nil {
				t.Fatalf("Regularize() error = %v", err)
			}
			if nCol != tt.wantNCol {
				t.Errorf("Regularize() nCol = %d, want %d", nCol, tt.wantNCol)
			}
			if !reflect.DeepEqual(tt.rows, tt.wantRows) {
				t.Errorf("Regularize() rows = %v, want %v", tt.rows, tt.wantRows)
			}
		})
	}
}

func TestRegularizeEmpty(t *testing.T) {
	if _, err := Regularize(nil); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("Regularize(nil) error = %v, want ErrEmptyTable", err)
	}
}

func TestRegularizePreservesCellPositions(t *testing.T) {
	rows := [][]string{{"x"}, {"y", "z"}}
	if _, err := Regularize(rows); err != nil {
		t.Fatalf("Regularize() error = %v", err)
	}
	if rows[0][0] != "x" || rows[1][0] != "y" || rows[1][1] != "z" {
		t.Errorf("original cell values moved: %v", rows)
	}
}
