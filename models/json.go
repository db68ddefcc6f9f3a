package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// FlexInt64 decodes an int64 that the backend may serialize either as a JSON
// number or as a string.
type FlexInt64 int64

func (fi *FlexInt64) UnmarshalJSON(data []byte) error {
	var num int64
	if err := json.Unmarshal(data, &num); err != nil {
		var numStr string
		if err2 := json.Unmarshal(data, &numStr); err2 != nil {
			return err
		}
		var err3 error
		num, err3 = strconv.ParseInt(numStr, 10, 64)
		if err3 != nil {
			return err3
		}
	}
	*fi = FlexInt64(num)
	return nil
}

func (fi FlexInt64) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(fi))
}

func (fi FlexInt64) Int64() int64 {
	return int64(fi)
}

// UnixTime decodes a timestamp sent as a Unix epoch, number or string.
type UnixTime time.Time

func (ut *UnixTime) UnmarshalJSON(data []byte) error {
	var timestamp int64
	if err := json.Unmarshal(data, &timestamp); err != nil {
		var timestampStr string
		if err2 := json.Unmarshal(data, &timestampStr); err2 != nil {
			return err
		}
		var err3 error
		timestamp, err3 = strconv.ParseInt(timestampStr, 10, 64)
		if err3 != nil {
			return err3
		}
	}
	*ut = UnixTime(time.Unix(timestamp, 0).UTC())
	return nil
}

func (ut UnixTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(ut).Unix())
}

func (ut UnixTime) Time() time.Time {
	return time.Time(ut)
}
