package comic

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Score is a trending score. The upstream API sends it either as a JSON number or
// as a numeric string; anything else decodes to zero.
type Score float64

// UnmarshalJSON implements json.Unmarshaler.
func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}

	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			*s = 0
			return nil
		}
		*s = Score(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*s = 0
		return nil
	}
	*s = Score(v)
	return nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
