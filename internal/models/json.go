package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONList stores a slice as a JSON array column (jsonb on postgres, text on sqlite).
type JSONList[T any] []T

// Value implements the driver.Valuer interface
func (l JSONList[T]) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]T(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (l *JSONList[T]) Scan(value interface{}) error {
	if value == nil {
		*l = JSONList[T]{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONList", value)
	}

	return json.Unmarshal(bytes, (*[]T)(l))
}
