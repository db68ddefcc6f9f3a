package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawObject(t *testing.T, src string) map[string]json.RawMessage {
	t.Helper()
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(src), &raw))
	return raw
}

func TestFlexLabelPriority(t *testing.T) {
	// option_text wins over label even when both are present
	raw := rawObject(t, `{"label":"second","option_text":"first"}`)
	name, err := flexLabel(raw)
	require.NoError(t, err)
	assert.Equal(t, "first", name)

	raw = rawObject(t, `{"value":"fallback","id":1}`)
	name, err = flexLabel(raw)
	require.NoError(t, err)
	assert.Equal(t, "fallback", name)
}

func TestFlexLabelSkipsNonStringCandidates(t *testing.T) {
	raw := rawObject(t, `{"label":42,"name":"from name"}`)
	name, err := flexLabel(raw)
	require.NoError(t, err)
	assert.Equal(t, "from name", name)
}

func TestFlexLabelUnrecognizedShape(t *testing.T) {
	raw := rawObject(t, `{"id":1,"weight":3}`)
	_, err := flexLabel(raw)
	var shapeErr *UnrecognizedShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, []string{"id", "weight"}, shapeErr.Keys)
}

func TestDecodeBubbles(t *testing.T) {
	body := []byte(`{"results":[
		{"id":1,"label":"Neighborhood"},
		{"id":"2","name":"Climbing crew"}
	]}`)
	bubbles, err := decodeBubbles(body)
	require.NoError(t, err)
	require.Len(t, bubbles, 2)
	assert.EqualValues(t, 1, bubbles[0].ID)
	assert.Equal(t, "Neighborhood", bubbles[0].Name)
	assert.EqualValues(t, 2, bubbles[1].ID)
	assert.Equal(t, "Climbing crew", bubbles[1].Name)
}

func TestDecodeGroups(t *testing.T) {
	body := []byte(`{"results":[
		{"id":3,"title":"Close friends","member_ids":[5,"6",7]}
	]}`)
	groups, err := decodeGroups(body)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Close friends", groups[0].Name)
	assert.Equal(t, []int64{5, 6, 7}, groups[0].MemberIDs)
}

func TestDecodeBubblesPropagatesShapeError(t *testing.T) {
	body := []byte(`{"results":[{"id":1,"weird":"x"}]}`)
	_, err := decodeBubbles(body)
	var shapeErr *UnrecognizedShapeError
	require.ErrorAs(t, err, &shapeErr)
}
