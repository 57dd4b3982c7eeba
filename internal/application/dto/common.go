package dto

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Los clientes esperan importes como números JSON, no como strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// SuccessResponse cuerpo mínimo de operaciones sin contenido (delete, change password).
type SuccessResponse struct {
	Success bool `json:"success"`
}

// Number número tolerante de entrada: acepta números JSON, strings numéricos y booleanos.
// Cualquier otro valor (null, "", "abc", objetos) queda como no válido.
type Number struct {
	decimal.NullDecimal
	set bool
}

// NewNumber construye un Number válido (tests y seed).
func NewNumber(d decimal.Decimal) Number {
	return Number{NullDecimal: decimal.NullDecimal{Decimal: d, Valid: true}, set: true}
}

// IsSet indica si la clave venía en el JSON (aunque fuera null).
func (n Number) IsSet() bool { return n.set }

// UnmarshalJSON implementa json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	n.set = true
	n.NullDecimal = decimal.NullDecimal{}
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		return nil
	case bytes.Equal(b, []byte("true")):
		n.NullDecimal = decimal.NullDecimal{Decimal: decimal.NewFromInt(1), Valid: true}
		return nil
	case bytes.Equal(b, []byte("false")):
		n.NullDecimal = decimal.NullDecimal{Decimal: decimal.Zero, Valid: true}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		b = []byte(strings.TrimSpace(s))
	}
	if d, err := decimal.NewFromString(string(b)); err == nil {
		n.NullDecimal = decimal.NullDecimal{Decimal: d, Valid: true}
	}
	return nil
}
