package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginHashDeterministic(t *testing.T) {
	a := originHash("15-01-2024", "12345678901", 15050, "PIX RECEBIDO DE FULANO")
	b := originHash("15-01-2024", "12345678901", 15050, "PIX RECEBIDO DE FULANO")
	assert.Equal(t, a, b)
	assert.Len(t, a, originHashLen)
	assert.Regexp(t, "^[0-9a-f]+$", a)
}

func TestOriginHashStableUnderWhitespaceAndCase(t *testing.T) {
	base := originHash("15-01-2024", "12345678901", 15050, "PIX RECEBIDO DE FULANO")

	assert.Equal(t, base, originHash("15-01-2024", "12345678901", 15050, "  PIX RECEBIDO DE FULANO  "))
	assert.Equal(t, base, originHash("15-01-2024", "12345678901", 15050, "pix recebido de fulano"))
	assert.Equal(t, base, originHash("15-01-2024", "12345678901", 15050, "Pix Recebido De Fulano\t"))
}

func TestOriginHashSensitiveToFields(t *testing.T) {
	base := originHash("15-01-2024", "12345678901", 15050, "PIX RECEBIDO")

	assert.NotEqual(t, base, originHash("16-01-2024", "12345678901", 15050, "PIX RECEBIDO"))
	assert.NotEqual(t, base, originHash("15-01-2024", "", 15050, "PIX RECEBIDO"))
	assert.NotEqual(t, base, originHash("15-01-2024", "12345678901", 15051, "PIX RECEBIDO"))
	assert.NotEqual(t, base, originHash("15-01-2024", "12345678901", 15050, "PIX RECEBIDO X"))
}
