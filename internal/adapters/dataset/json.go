package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/okian/paceline/internal/domain/model"
)

// Session object keys.
const (
	keyHeartRate = "heart_rate"
	keySpeed     = "speed"
	keyTimestamp = "timestamp"
	keySessions  = "sessions"
	keyID        = "id"
)

// File permission constants.
const (
	filePermission = 0o644
)

var requiredKeys = []string{keyHeartRate, keySpeed, keyTimestamp}

// JSONLoader reads an array-of-sessions JSON file. The document may be an
// array of session objects, a single session object, or an object holding
// the array under "sessions". Sessions are selected by their "id" field, or
// by position when the file carries no ids.
type JSONLoader struct {
	path      string
	sessionID int
}

// NewJSONLoader creates a loader for session sessionID.
func NewJSONLoader(path string, sessionID int) *JSONLoader {
	return &JSONLoader{path: path, sessionID: sessionID}
}

// Load implements Loader.
func (l *JSONLoader) Load(ctx context.Context) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	session, err := selectSession(data, l.sessionID)
	if err != nil {
		return nil, err
	}
	return sessionRecords(session, l.sessionID)
}

func selectSession(data []byte, id int) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}
	switch trimmed[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return pickSession(list, id)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if raw, ok := obj[keySessions]; ok && len(missingKeys(obj)) > 0 {
			return selectSession(raw, id)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("%w: expected an array or object", ErrMalformed)
	}
}

// pickSession returns the session whose "id" equals id. Lists without any
// "id" fields are indexed by position.
func pickSession(list []json.RawMessage, id int) (map[string]json.RawMessage, error) {
	objs := make([]map[string]json.RawMessage, len(list))
	hasIDs := false
	for i, raw := range list {
		if err := json.Unmarshal(raw, &objs[i]); err != nil || objs[i] == nil {
			return nil, fmt.Errorf("%w: session %d is not an object", ErrMalformed, i)
		}
		if _, ok := objs[i][keyID]; ok {
			hasIDs = true
		}
	}

	if !hasIDs {
		if id < 0 || id >= len(objs) {
			return nil, fmt.Errorf("%w: session %d out of bounds for %d sessions", ErrSessionNotFound, id, len(objs))
		}
		return objs[id], nil
	}
	for i, obj := range objs {
		raw, ok := obj[keyID]
		if !ok {
			continue
		}
		var got int64
		if err := json.Unmarshal(raw, &got); err != nil {
			return nil, fmt.Errorf("%w: session %d has a non-integer id", ErrMalformed, i)
		}
		if got == int64(id) {
			return obj, nil
		}
	}
	return nil, fmt.Errorf("%w: no session with id %d in %d sessions", ErrSessionNotFound, id, len(objs))
}

func missingKeys(obj map[string]json.RawMessage) []string {
	var missing []string
	for _, k := range requiredKeys {
		if _, ok := obj[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

func sessionRecords(obj map[string]json.RawMessage, id int) ([]model.Record, error) {
	if missing := missingKeys(obj); len(missing) > 0 {
		available := make([]string, 0, len(obj))
		for k := range obj {
			available = append(available, k)
		}
		sort.Strings(available)
		return nil, fmt.Errorf("%w: session %d lacks %v; available %v", ErrMissingFields, id, missing, available)
	}

	var hr, speed, ts []*float64
	for key, dst := range map[string]*[]*float64{keyHeartRate: &hr, keySpeed: &speed, keyTimestamp: &ts} {
		if err := json.Unmarshal(obj[key], dst); err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrMalformed, key, err)
		}
	}
	if len(hr) != len(ts) || len(speed) != len(ts) {
		return nil, fmt.Errorf("%w: timestamp=%d heart_rate=%d speed=%d", ErrLengthMismatch, len(ts), len(hr), len(speed))
	}

	records := make([]model.Record, 0, len(ts))
	for i := range ts {
		if ts[i] == nil || math.IsNaN(*ts[i]) || math.IsInf(*ts[i], 0) {
			continue
		}
		records = append(records, model.Record{
			Timestamp: int64(math.Floor(*ts[i])),
			HeartRate: valueOrNaN(hr[i]),
			Speed:     valueOrNaN(speed[i]),
		})
	}
	return records, nil
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func nullIfNaN(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

type jsonSession struct {
	ID        int64      `json:"id"`
	Timestamp []int64    `json:"timestamp"`
	HeartRate []*float64 `json:"heart_rate"`
	Speed     []*float64 `json:"speed"`
}

// WriteJSON writes sessions as a JSON array of session objects, the format
// JSONLoader reads. Missing values become null.
func WriteJSON(path string, sessions []Session) error {
	out := make([]jsonSession, len(sessions))
	for i, s := range sessions {
		js := jsonSession{
			ID:        s.ID,
			Timestamp: make([]int64, len(s.Records)),
			HeartRate: make([]*float64, len(s.Records)),
			Speed:     make([]*float64, len(s.Records)),
		}
		for j, r := range s.Records {
			js.Timestamp[j] = r.Timestamp
			js.HeartRate[j] = nullIfNaN(r.HeartRate)
			js.Speed[j] = nullIfNaN(r.Speed)
		}
		out[i] = js
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("write sessions: %w", err)
	}
	return nil
}
