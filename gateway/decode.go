package gateway

import (
	"encoding/json"
	"fmt"
	"sort"

	"socialclient/models"
)

// Display labels arrive under different field names depending on backend
// version. Tried in this fixed priority order; an unknown shape is a typed
// error, never a silently stringified structure.
var labelFields = []string{"option_text", "label", "name", "title", "text", "value"}

// flexLabel picks the display label out of a loosely-shaped object.
func flexLabel(raw map[string]json.RawMessage) (string, error) {
	for _, field := range labelFields {
		data, ok := raw[field]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(data, &s); err == nil && s != "" {
			return s, nil
		}
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "", &UnrecognizedShapeError{Keys: keys}
}

func flexID(raw map[string]json.RawMessage) (int64, error) {
	data, ok := raw["id"]
	if !ok {
		return 0, &UnrecognizedShapeError{Keys: []string{"id missing"}}
	}
	var id models.FlexInt64
	if err := json.Unmarshal(data, &id); err != nil {
		return 0, fmt.Errorf("decode id: %w", err)
	}
	return id.Int64(), nil
}

func decodeBubbles(body []byte) ([]models.Bubble, error) {
	var envelope struct {
		Results []map[string]json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode bubbles: %w", err)
	}
	bubbles := make([]models.Bubble, 0, len(envelope.Results))
	for _, raw := range envelope.Results {
		id, err := flexID(raw)
		if err != nil {
			return nil, err
		}
		name, err := flexLabel(raw)
		if err != nil {
			return nil, err
		}
		bubbles = append(bubbles, models.Bubble{ID: id, Name: name})
	}
	return bubbles, nil
}

func decodeGroups(body []byte) ([]models.Group, error) {
	var envelope struct {
		Results []map[string]json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}
	groups := make([]models.Group, 0, len(envelope.Results))
	for _, raw := range envelope.Results {
		id, err := flexID(raw)
		if err != nil {
			return nil, err
		}
		name, err := flexLabel(raw)
		if err != nil {
			return nil, err
		}
		var members []int64
		if data, ok := raw["member_ids"]; ok {
			var flex []models.FlexInt64
			if err := json.Unmarshal(data, &flex); err != nil {
				return nil, fmt.Errorf("decode group members: %w", err)
			}
			members = make([]int64, len(flex))
			for i, m := range flex {
				members[i] = m.Int64()
			}
		}
		groups = append(groups, models.Group{ID: id, Name: name, MemberIDs: members})
	}
	return groups, nil
}
