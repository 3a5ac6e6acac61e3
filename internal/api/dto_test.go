package api

import (
	"encoding/json"
	"testing"
	"time"

	"shareit/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateTimeJSON(t *testing.T) {
	in := DateTime(time.Date(2030, 1, 10, 9, 5, 7, 0, time.Local))
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `"2030-01-10T09:05:07"`, string(data))

	var out DateTime
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, in.Time().Equal(out.Time()))

	assert.Error(t, json.Unmarshal([]byte(`"2030-01-10T09:05:07Z"`), &out))
	assert.Error(t, json.Unmarshal([]byte(`42`), &out))
}

func TestBookingBodyValidate(t *testing.T) {
	now := time.Date(2030, 1, 10, 12, 0, 0, 500, time.Local)
	at := func(d time.Duration) *DateTime {
		v := DateTime(now.Truncate(time.Second).Add(d))
		return &v
	}

	tests := []struct {
		name string
		body bookingBody
		ok   bool
	}{
		{"valid", bookingBody{ItemID: 1, Start: at(time.Hour), End: at(2 * time.Hour)}, true},
		{"start now", bookingBody{ItemID: 1, Start: at(0), End: at(time.Hour)}, true},
		{"no item", bookingBody{Start: at(time.Hour), End: at(2 * time.Hour)}, false},
		{"no start", bookingBody{ItemID: 1, End: at(time.Hour)}, false},
		{"past start", bookingBody{ItemID: 1, Start: at(-time.Second), End: at(time.Hour)}, false},
		{"past end", bookingBody{ItemID: 1, Start: at(0), End: at(0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.body.validate(now)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestItemBodyValidateUpdate(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name string
		body itemBody
		ok   bool
	}{
		{"empty patch", itemBody{}, true},
		{"description only", itemBody{Description: str("Cordless")}, true},
		{"blank description", itemBody{Description: str("")}, false},
		{"whitespace description", itemBody{Description: str("   ")}, false},
		{"short name", itemBody{Name: str("Ax")}, false},
		{"valid name blank description", itemBody{Name: str("Drill"), Description: str(" ")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.body.validateUpdate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestParseUserID(t *testing.T) {
	id, err := parseUserID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "abc", "0", "-3"} {
		_, err := parseUserID(raw)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err), raw)
	}
}

func TestErrorMapping(t *testing.T) {
	assert.Equal(t, 404, httpStatus(domain.KindNotFound))
	assert.Equal(t, 403, httpStatus(domain.KindForbidden))
	assert.Equal(t, 400, httpStatus(domain.KindDataNotAvailable))
	assert.Equal(t, 400, httpStatus(domain.KindValidation))
	assert.Equal(t, 409, httpStatus(domain.KindDuplicateEmail))
	assert.Equal(t, 500, httpStatus(domain.KindUnknown))
}
