package finding

import "encoding/json"

// MarshalResult serialises a RunResult to JSON.
func MarshalResult(r *RunResult) ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalResult deserialises a RunResult from JSON. The returned result
// is finalized: decoded results are read-only records.
func UnmarshalResult(data []byte) (*RunResult, error) {
	var r RunResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	r.frozen = true
	return &r, nil
}
