package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// StringList stores a list of strings portably across PostgreSQL, MySQL and
// SQLite. Values are written as a JSON array in a text column; reads accept
// JSON arrays, PostgreSQL array literals ({a,b}) and comma-separated text.
type StringList []string

// Scan implements the sql.Scanner interface.
func (l *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return l.parse(string(v))
	case string:
		return l.parse(v)
	default:
		return errors.New("StringList: unsupported scan type")
	}
}

func (l *StringList) parse(s string) error {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		*l = StringList{}
		return nil
	case strings.HasPrefix(s, "["):
		return json.Unmarshal([]byte(s), (*[]string)(l))
	case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"):
		s = strings.TrimSuffix(strings.TrimPrefix(s, "{"), "}")
	}

	out := StringList{}
	for _, part := range strings.Split(s, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"`)
		if part != "" {
			out = append(out, part)
		}
	}
	*l = out
	return nil
}

// Value implements the driver.Valuer interface.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDataType returns the GORM data type hint.
func (StringList) GormDataType() string {
	return "text"
}
