package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateID generates a unique ID for storage entities
func GenerateID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// ChatMessage is a {role, content} pair as sent to a model.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Scan implements the sql.Scanner interface for ChatMessage
func (m *ChatMessage) Scan(value interface{}) error {
	data, err := jsonBytes(value)
	if err != nil || data == nil {
		return err
	}
	return json.Unmarshal(data, m)
}

// Value implements the driver.Valuer interface for ChatMessage
func (m ChatMessage) Value() (driver.Value, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// ChatMessages is an ordered message list stored as a JSON array. A nil list is stored as NULL.
type ChatMessages []ChatMessage

// Scan implements the sql.Scanner interface for ChatMessages
func (j *ChatMessages) Scan(value interface{}) error {
	data, err := jsonBytes(value)
	if err != nil {
		return err
	}
	if data == nil {
		*j = nil
		return nil
	}
	msgs := ChatMessages{}
	if err := json.Unmarshal(data, &msgs); err != nil {
		return err
	}
	*j = msgs
	return nil
}

// Value implements the driver.Valuer interface for ChatMessages
func (j ChatMessages) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	data, err := json.Marshal([]ChatMessage(j))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// JSONObject is a free-form JSON object column. A nil map is stored as NULL.
type JSONObject map[string]interface{}

// Scan implements the sql.Scanner interface for JSONObject
func (j *JSONObject) Scan(value interface{}) error {
	data, err := jsonBytes(value)
	if err != nil {
		return err
	}
	if data == nil {
		*j = nil
		return nil
	}
	obj := JSONObject{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*j = obj
	return nil
}

// Value implements the driver.Valuer interface for JSONObject
func (j JSONObject) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	data, err := json.Marshal(map[string]interface{}(j))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return []byte(v), nil
	case []byte:
		if len(v) == 0 {
			return nil, nil
		}
		return v, nil
	default:
		return nil, fmt.Errorf("cannot scan type %T into a JSON column", value)
	}
}
