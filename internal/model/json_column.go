package model

import (
	"database/sql/driver"
	"fmt"

	"github.com/goccy/go-json"
)

func marshalColumn(v any) (driver.Value, error) {
	return json.Marshal(v)
}

// unmarshalColumn 兼容驱动返回 []byte 或 string 两种形式
func unmarshalColumn(value any, dst any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("failed to unmarshal JSON value: %v", value)
	}
}

// Metadata 行为附加信息，原样存储
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return marshalColumn(m)
}

func (m *Metadata) Scan(value any) error {
	return unmarshalColumn(value, m)
}
