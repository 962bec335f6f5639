package types

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(2024, time.March, 9)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-09"`, string(data))

	var decoded Date
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, d.Equal(decoded.Time))
}

func TestDate_RejectsMalformed(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"09/03/2024"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`42`), &d))
}

func TestDateOf_TruncatesToUTCDate(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2024-06-02 03:15 JST is 2024-06-01 18:15 UTC.
	d := DateOf(time.Date(2024, time.June, 2, 3, 15, 0, 0, loc))
	assert.Equal(t, "2024-06-01", d.String())
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req_123")
	assert.Equal(t, "req_123", GetRequestID(ctx))
	assert.Equal(t, "", GetRequestID(context.Background()))
}
