package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// The dashboard consumes money values as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// IntBool is a boolean stored as a boolean column but serialized as 0/1.
// The dashboard tests `transferred === 0`, so a JSON true/false would break it.
type IntBool bool

// MarshalJSON encodes the flag as 0 or 1
func (b IntBool) MarshalJSON() ([]byte, error) {
	if b {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// UnmarshalJSON accepts 0/1 as well as true/false
func (b *IntBool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "0", "false":
		*b = false
	case "1", "true":
		*b = true
	default:
		return fmt.Errorf("IntBool: cannot unmarshal %q", string(data))
	}
	return nil
}

// Value implements driver.Valuer interface for database storage
func (b IntBool) Value() (driver.Value, error) {
	return bool(b), nil
}

// Scan implements sql.Scanner interface for database retrieval
func (b *IntBool) Scan(value interface{}) error {
	if value == nil {
		*b = false
		return nil
	}
	switch v := value.(type) {
	case bool:
		*b = IntBool(v)
	case int64:
		*b = v != 0
	default:
		return fmt.Errorf("IntBool: cannot scan %T", value)
	}
	return nil
}
