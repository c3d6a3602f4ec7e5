package stats

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		name      string
		rangeName string
		start     string
		end       string
		wantName  string
		wantErr   bool
	}{
		{name: "named", rangeName: "Last Academic Year", start: "2022-09-01", end: "2023-09-01", wantName: "Last Academic Year"},
		{name: "default name", start: "2023-09-01", end: "2023-10-01", wantName: "2023-09-01 to 2023-10-01"},
		{name: "padded input", start: " 2023-09-01", end: "2023-10-01 ", wantName: "2023-09-01 to 2023-10-01"},
		{name: "bad start", start: "01/09/2023", end: "2023-10-01", wantErr: true},
		{name: "bad end", start: "2023-09-01", end: "2023-13-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseDateRange(tt.rangeName, tt.start, tt.end)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidDate), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, r.Name)
			assert.Equal(t, time.UTC, r.Start.Location())
		})
	}
}

func TestDateRangeSlugAndEmpty(t *testing.T) {
	r, err := ParseDateRange("Last two academic years", "2021-09-01", "2023-09-01")
	require.NoError(t, err)
	assert.Equal(t, "last-two-academic-years", r.Slug())
	assert.False(t, r.Empty())
	assert.Equal(t, "Last two academic years [2021-09-01, 2023-09-01)", r.String())

	same, err := ParseDateRange("", "2023-09-01", "2023-09-01")
	require.NoError(t, err)
	assert.True(t, same.Empty())
}

func TestCountJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Count `json:"a"`
		B Count `json:"b"`
	}{A: Some(0), B: Count{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":0,"b":null}`, string(data))

	var back struct {
		A Count `json:"a"`
		B Count `json:"b"`
	}
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, Some(0), back.A)
	assert.False(t, back.B.Valid)
}

func TestDistribution(t *testing.T) {
	d := Distribution{100: 1, 0: 4, 37.5: 2}

	assert.Equal(t, []Bucket{{Key: 0, Students: 4}, {Key: 37.5, Students: 2}, {Key: 100, Students: 1}}, d.Sorted())
	assert.Equal(t, int64(7), d.Total())
	assert.Equal(t, int64(2), d.Get(37.5))
	assert.Zero(t, d.Get(50))

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"key":0,"students":4},{"key":37.5,"students":2},{"key":100,"students":1}]`, string(data))

	var back Distribution
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d, back)
}

func TestFormatKey(t *testing.T) {
	assert.Equal(t, "5", FormatKey(5))
	assert.Equal(t, "33.33", FormatKey(33.33))
	assert.Equal(t, "0", FormatKey(0))
}

func TestBreakdownNeedsEveryCount(t *testing.T) {
	rep := &Report{
		ActiveStudents:         Some(10),
		StudentsWithGameboards: Count{},
		StudentsCompletingAll:  Some(1),
	}
	categories, ok := rep.Breakdown()
	assert.False(t, ok)
	assert.Nil(t, categories)
}

func TestBreakdownSumsToActive(t *testing.T) {
	rep := &Report{
		ActiveStudents:         Some(120),
		StudentsWithGameboards: Some(40),
		StudentsCompletingAll:  Some(15),
		AverageCompletion:      Distribution{0: 20, 50: 12, 100: 8},
	}
	categories, ok := rep.Breakdown()
	require.True(t, ok)

	var sum int64
	for _, c := range categories {
		sum += c.Students
	}
	assert.Equal(t, int64(120), sum)
	assert.Equal(t, Category{Label: CategoryCompleteAll, Students: 8}, categories[3])
}
