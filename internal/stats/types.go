package stats

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Count is a scalar query result. A Count that is not Valid means the query
// matched no rows, which is different from a valid zero.
type Count struct {
	Value int64
	Valid bool
}

// Some returns a valid Count holding v.
func Some(v int64) Count {
	return Count{Value: v, Valid: true}
}

func (c Count) String() string {
	if !c.Valid {
		return "n/a"
	}
	return strconv.FormatInt(c.Value, 10)
}

// MarshalJSON encodes an absent Count as null.
func (c Count) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON accepts a number or null.
func (c *Count) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Count{}
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Some(v)
	return nil
}

// Bucket is one entry of a Distribution.
type Bucket struct {
	Key      float64 `json:"key"`
	Students int64   `json:"students"`
}

// Distribution maps a metric value to the number of distinct students that
// share it.
type Distribution map[float64]int64

// Sorted returns the buckets in ascending key order.
func (d Distribution) Sorted() []Bucket {
	buckets := make([]Bucket, 0, len(d))
	for k, v := range d {
		buckets = append(buckets, Bucket{Key: k, Students: v})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets
}

// Total sums the student counts over all buckets.
func (d Distribution) Total() int64 {
	var total int64
	for _, v := range d {
		total += v
	}
	return total
}

// Get returns the count stored under key, or zero.
func (d Distribution) Get(key float64) int64 {
	return d[key]
}

// MarshalJSON encodes the distribution as an ordered list of buckets since
// JSON objects cannot carry float keys.
func (d Distribution) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Sorted())
}

// UnmarshalJSON decodes the bucket list produced by MarshalJSON.
func (d *Distribution) UnmarshalJSON(data []byte) error {
	var buckets []Bucket
	if err := json.Unmarshal(data, &buckets); err != nil {
		return err
	}
	out := make(Distribution, len(buckets))
	for _, b := range buckets {
		out[b.Key] = b.Students
	}
	*d = out
	return nil
}

// FormatKey renders a distribution key without a trailing ".0" for whole numbers.
func FormatKey(k float64) string {
	return strconv.FormatFloat(k, 'f', -1, 64)
}
