package textfold

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "AMICALE", "amicale"},
		{"strips spaces", "Les Fans de Georges la Saucisse", "lesfansdegeorgeslasaucisse"},
		{"strips accents", "Fédération Étudiante", "federationetudiante"},
		{"strips tabs and non breaking spaces", "a\tb c", "abc"},
		{"empty", "", ""},
		{"combined", "  Association  Générale  ", "associationgenerale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Fold(tt.input))
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("Les Fans de Georges la Saucisse", "LESFANSDEGEORGESLASAUCISSE"))
	assert.True(t, Equal("Fédération", "federation"))
	assert.False(t, Equal("Amicale des étudiants", "Amicale des anciens"))
}
