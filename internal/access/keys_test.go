package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabiobatalha/processing/internal/articlemeta"
)

func TestLegacyKey(t *testing.T) {
	tests := []struct {
		name    string
		pid     string
		want    string
		wantErr bool
	}{
		{
			name: "article pid",
			pid:  "S0102-67202009000300001",
			want: "S0102-6720(09)000300001",
		},
		{
			name: "another journal",
			pid:  "S1413-81232014000100009",
			want: "S1413-8123(14)000100009",
		},
		{
			name: "minimum length",
			pid:  "S0102-67202009",
			want: "S0102-6720(09)",
		},
		{
			name:    "too short",
			pid:     "S0102-6720",
			wantErr: true,
		},
		{
			name:    "empty",
			pid:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LegacyKey(tt.pid)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedPID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPDFKeys(t *testing.T) {
	tests := []struct {
		name string
		urls []string
		want []string
	}{
		{
			name: "pdf url",
			urls: []string{"http://www.scielo.br/pdf/rsp/v12n10/v12n10.pdf"},
			want: []string{"/PDF/RSP/V12N10/V12N10.PDF"},
		},
		{
			name: "greedy from first pdf segment",
			urls: []string{"http://www.scielo.br/pdf/abcd/v22n3/pdf/a01.pdf"},
			want: []string{"/PDF/ABCD/V22N3/PDF/A01.PDF"},
		},
		{
			name: "not anchored at end",
			urls: []string{"http://www.scielo.br/pdf/rsp/v12n10/v12n10.pdf?download=1"},
			want: nil,
		},
		{
			name: "html link",
			urls: []string{"http://www.scielo.br/scielo.php?script=sci_arttext&pid=S0102"},
			want: nil,
		},
		{
			name: "no urls",
			urls: nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PDFKeys(tt.urls))
		})
	}
}

func TestDeriveKeys(t *testing.T) {
	doc := &articlemeta.Document{
		PID: "S0102-67202009000300001",
		DOI: "10.1590/S0102-67202009000300001",
		Fulltexts: map[string]map[string]string{
			"pdf": {
				"pt": "http://www.scielo.br/pdf/abcd/v22n3/a01v22n3.pdf",
				"en": "http://www.scielo.br/pdf/abcd/v22n3/en_a01v22n3.pdf",
			},
			"html": {
				"pt": "http://www.scielo.br/scielo.php?script=sci_arttext&pid=S0102-67202009000300001",
			},
		},
	}

	keys, err := DeriveKeys(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"S0102-67202009000300001",
		"S0102-6720(09)000300001",
		"10.1590/S0102-67202009000300001",
		"/PDF/ABCD/V22N3/EN_A01V22N3.PDF",
		"/PDF/ABCD/V22N3/A01V22N3.PDF",
	}, keys)
}

func TestDeriveKeys_NoDOINoPDF(t *testing.T) {
	doc := &articlemeta.Document{PID: "S0102-67202009000300001"}

	keys, err := DeriveKeys(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"S0102-67202009000300001", "S0102-6720(09)000300001"}, keys)
}

func TestDeriveKeys_MalformedPID(t *testing.T) {
	_, err := DeriveKeys(&articlemeta.Document{PID: "S0102"})
	assert.ErrorIs(t, err, ErrMalformedPID)
}
