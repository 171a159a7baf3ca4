package core

import (
	"errors"
	"maps"
	"strings"
	"testing"
)

func TestParse_WellFormed(t *testing.T) {
	content := "Time,Position,Force,Flag\n0,1,2,0\n1,3,4,1\n"

	p, err := Parse(content, "run.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if p.Filename != "run.csv" {
		t.Errorf("Filename = %q", p.Filename)
	}
	if !p.HasFlagColumn {
		t.Error("HasFlagColumn = false, want true")
	}
	want := []Row{
		{Time: 0, Position: 1, Force: 2, Flag: 0},
		{Time: 1, Position: 3, Force: 4, Flag: 1},
	}
	if len(p.Rows) != len(want) {
		t.Fatalf("len(Rows) = %d, want %d", len(p.Rows), len(want))
	}
	for i := range want {
		if p.Rows[i] != want[i] {
			t.Errorf("Rows[%d] = %+v, want %+v", i, p.Rows[i], want[i])
		}
	}
}

func TestParse_Normalization(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantRows int
		wantFlag bool
	}{
		{"CRLF line endings", "Time,Position,Force\r\n0,1,2\r\n1,2,3\r\n", 2, false},
		{"blank lines skipped", "Time,Position,Force\n\n0,1,2\n   \n1,2,3\n\n", 2, false},
		{"surrounding whitespace", "\n\n  Time,Position,Force\n0,1,2  \n\n", 1, false},
		{"scientific notation", "Time,Position,Force\n1e-3,-2.5E2,+3\n", 1, false},
		{"quoted numbers", "Time,Position,Force\n\"1\",\" 2 \",3\n", 1, false},
		{"empty flag column everywhere", "Time,Position,Force,Flag\n0,1,2,\n1,2,3,\n", 2, false},
		{"short row without flag", "Time,Position,Force,Flag\n0,1,2,1\n1,2,3\n", 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.content, "f.csv")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(p.Rows) != tt.wantRows {
				t.Errorf("len(Rows) = %d, want %d", len(p.Rows), tt.wantRows)
			}
			if p.HasFlagColumn != tt.wantFlag {
				t.Errorf("HasFlagColumn = %v, want %v", p.HasFlagColumn, tt.wantFlag)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantKind  error
		wantRow   int
		wantCol   int
		wantValue string
	}{
		{"empty", "", ErrEmptyOrHeaderOnly, 0, 0, ""},
		{"header only", "Time,Position,Force\n", ErrEmptyOrHeaderOnly, 0, 0, ""},
		{"two header columns", "T,P\n0,1\n1,2\n", ErrTooFewColumns, 0, 2, ""},
		{"two header columns, no data", "T,P\n\n", ErrEmptyOrHeaderOnly, 0, 0, ""},
		{"comma-only row", "Time,Position,Force\n,\n", ErrMissingValue, 2, 1, ""},
		{"blank lines not counted", "Time,Position,Force\n\r\n \nx", ErrInvalidNumber, 2, 1, "x"},
		{"non-numeric force", "Time,Position,Force\n0,1,2\n1,2,abc\n", ErrInvalidNumber, 3, 3, "abc"},
		{"non-numeric time", "Time,Position,Force\nabc,1,2\n", ErrInvalidNumber, 2, 1, "abc"},
		{"missing position", "Time,Position,Force\n0,,2\n", ErrMissingValue, 2, 2, ""},
		{"short row", "Time,Position,Force\n0,1\n", ErrMissingValue, 2, 3, ""},
		{"NaN rejected", "Time,Position,Force\n0,NaN,2\n", ErrInvalidNumber, 2, 2, "NaN"},
		{"Inf rejected", "Time,Position,Force\n0,1,inf\n", ErrInvalidNumber, 2, 3, "inf"},
		{"units rejected", "Time,Position,Force\n0,1mm,2\n", ErrInvalidNumber, 2, 2, "1mm"},
		{"hex float rejected", "Time,Position,Force\n0,0x1p3,2\n", ErrInvalidNumber, 2, 2, "0x1p3"},
		{"unit after space rejected", "Time,Position,Force\n0,1,12 N\n", ErrInvalidNumber, 2, 3, "12 N"},
		{"flag 2", "Time,Position,Force,Flag\n0,1,2,0\n1,2,3,2\n", ErrInvalidFlag, 3, 4, "2"},
		{"flag text", "Time,Position,Force,Flag\n0,1,2,on\n", ErrInvalidFlag, 2, 4, "on"},
		{"numbers checked before flags", "Time,Position,Force,Flag\n0,1,2,5\n1,x,3,0\n", ErrInvalidNumber, 3, 2, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.content, "f.csv")
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.wantKind)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error %T is not a *ValidationError", err)
			}
			if ve.Row != tt.wantRow || ve.Col != tt.wantCol || ve.Value != tt.wantValue {
				t.Errorf("position = row %d col %d value %q, want row %d col %d value %q",
					ve.Row, ve.Col, ve.Value, tt.wantRow, tt.wantCol, tt.wantValue)
			}
		})
	}
}

func TestParse_TooFewColumnsIgnoresData(t *testing.T) {
	for _, content := range []string{"T,P\n0,1,2\n", "T,P\nabc\n", "T\n1,2,3,4\n"} {
		if _, err := Parse(content, "f.csv"); !errors.Is(err, ErrTooFewColumns) {
			t.Errorf("Parse(%q) error = %v, want ErrTooFewColumns", content, err)
		}
	}
}

func TestParse_EmptyFlagDefaultsToZero(t *testing.T) {
	p, err := Parse("Time,Position,Force,Flag\n0,1,2,1\n1,2,3,\n2,3,4,1\n", "f.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got := p.Flags()
	want := []uint8{1, 0, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Flags() = %v, want %v", got, want)
			break
		}
	}
}

func TestValidationError_Message(t *testing.T) {
	_, err := Parse("Time,Position,Force\n0,1,2\n1,2,abc\n", "f.csv")
	if err == nil {
		t.Fatal("expected error")
	}
	if msg := err.Error(); !strings.Contains(msg, "row 3, column 3") || !strings.Contains(msg, `"abc"`) {
		t.Errorf("Error() = %q, want row/column and value", msg)
	}
}

func TestExtractMetadata(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]string
	}{
		{
			name:    "first row only",
			content: "Time,Position,Force,Flag,Operator,Machine\n0,1,2,0,,M1\n1,2,3,0,bob,M2\n",
			want:    map[string]string{"Machine": "M1"},
		},
		{
			name:    "no metadata columns",
			content: "Time,Position,Force,Flag\n0,1,2,0\n",
			want:    map[string]string{},
		},
		{
			name:    "first row shorter than header",
			content: "Time,Position,Force,Flag,Operator,Machine\n0,1,2,0,alice\n",
			want:    map[string]string{"Operator": "alice"},
		},
		{
			name:    "quoted value with comma",
			content: "Time,Position,Force,Flag,Note\n0,1,2,0,\"left, upper\"\n",
			want:    map[string]string{"Note": "left, upper"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.content, "f.csv")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !maps.Equal(p.Metadata, tt.want) {
				t.Errorf("Metadata = %v, want %v", p.Metadata, tt.want)
			}
		})
	}
}

func TestMetadataEntries_HeaderOrder(t *testing.T) {
	header := []string{"T", "P", "F", "Flag", "Zeta", "Alpha", "Mid"}
	md := map[string]string{"Alpha": "a", "Zeta": "z", "Mid": "m"}

	got := MetadataEntries(header, md)
	want := []MetadataEntry{{"Zeta", "z"}, {"Alpha", "a"}, {"Mid", "m"}}
	if len(got) != len(want) {
		t.Fatalf("MetadataEntries() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %v, want %v", i, got[i], want[i])
		}
	}
}
