package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScalar(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"  São Paulo ", "SAO PAULO"},
		{"Florianópolis", "FLORIANOPOLIS"},
		{"sc", "SC"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, Scalar(tt.in))
		})
	}
}

func TestDistrict(t *testing.T) {
	assert.Equal(t, "CENTRO", District("Centro/Sede"))
	assert.Equal(t, "JARDIM BOTANICO", District("Jardim Botânico"))
	assert.Equal(t, "", District(""))
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected []string
	}{
		{"strips stopwords and suffix", "Padaria Bom Pão Ltda", []string{"padaria", "bom", "pao"}},
		{"drops digits and punctuation", "Auto-Peças 2000 S.A.", []string{"autopecas"}},
		{"drops single letters", "X Burguer do Zé", []string{"burguer", "ze"}},
		{"blank", "   ", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.in, Stopwords))
		})
	}
}

func TestTokenizeNilStopwords(t *testing.T) {
	got := Tokenize("Bom Pão de Minas", nil)
	assert.Equal(t, []string{"bom", "pao", "de", "minas"}, got)
}
