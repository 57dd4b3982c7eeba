package billing

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

// NumberPrefix prefijo del identificador público de una factura.
const NumberPrefix = "INV-"

// NumberGenerator genera identificadores públicos de factura ("INV-<ULID>").
// Los ULID son ordenables por tiempo y la entropía monótona evita colisiones
// entre creaciones concurrentes dentro del mismo milisegundo.
type NumberGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewNumberGenerator construye un generador con entropía criptográfica.
func NewNumberGenerator() *NumberGenerator {
	return NewNumberGeneratorWithEntropy(rand.Reader)
}

// NewNumberGeneratorWithEntropy igual que NewNumberGenerator pero leyendo la entropía de r.
func NewNumberGeneratorWithEntropy(r io.Reader) *NumberGenerator {
	return &NumberGenerator{
		entropy: ulid.Monotonic(r, 0),
		now:     time.Now,
	}
}

// Next devuelve un número nuevo. Seguro para uso concurrente.
// Falla solo si la fuente de entropía no se puede leer.
func (g *NumberGenerator) Next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(g.now()), g.entropy)
	if err != nil {
		return "", fmt.Errorf("generar número de factura: %w", err)
	}
	return NumberPrefix + id.String(), nil
}
