package integration

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{`"2024-06-30T00:00:00"`, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)},
		{`"2024-06-30T13:45:10.123"`, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)},
		{`"2024-06-30T13:45:10-04:00"`, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)},
		{`"2024-06-30"`, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)},
		{`"06/30/2024"`, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)},
		{`"0001-01-01T00:00:00"`, time.Time{}},
		{`""`, time.Time{}},
		{`null`, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Date
			require.NoError(t, json.Unmarshal([]byte(tt.input), &d))
			assert.True(t, tt.want.Equal(d.Time), "got %v", d.Time)
		})
	}

	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"not a date"`), &d))
}

func TestDate_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A Date
		B Date
	}{A: NewDate(time.Date(2024, 2, 1, 15, 0, 0, 0, time.UTC))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"A":"2024-02-01T00:00:00","B":null}`, string(out))
}

func TestDate_Ptr(t *testing.T) {
	assert.Nil(t, Date{}.Ptr())
	now := time.Now()
	assert.Equal(t, now.Day(), NewDate(now).Ptr().Day())
	assert.True(t, DateFrom(nil).IsZero())
}

func TestAmount(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{`125.50`, "125.5", true},
		{`"-40"`, "-40", true},
		{`"$1,250.00"`, "1250", true},
		{`""`, "0", false},
		{`null`, "0", false},
		{`"N/A"`, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var a Amount
			require.NoError(t, json.Unmarshal([]byte(tt.input), &a))
			d, ok := a.Decimal()
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(d), "got %s", d)
		})
	}
}

func TestAmount_MarshalJSON(t *testing.T) {
	out, err := json.Marshal([]Amount{AmountOf(decimal.NewFromFloat(12.5)), "N/A"})
	require.NoError(t, err)
	assert.JSONEq(t, `[12.5,null]`, string(out))
}

func TestPerson_CheckSyncable(t *testing.T) {
	p := &Person{NamesID: "100"}
	assert.NoError(t, p.CheckSyncable())
	assert.False(t, p.IsNew())

	p.ExcludeFromWeb = true
	assert.ErrorIs(t, p.CheckSyncable(), ErrRecordExcluded)
	assert.True(t, (&Person{NamesID: " "}).IsNew())
}

func TestSyncRecord_Lifecycle(t *testing.T) {
	r := StartSync(SyncDirectionPull, nil, "100")
	r.AddFieldError("CountyCode", assert.AnError)
	r.Succeed()

	assert.Equal(t, SyncStatusSucceeded, r.Status)
	assert.NotNil(t, r.FinishedAt)
	assert.Len(t, r.FieldErrors, 1)
	assert.GreaterOrEqual(t, r.Duration(), time.Duration(0))

	long := make([]byte, maxSyncErrorLength+50)
	for i := range long {
		long[i] = 'x'
	}
	failed := StartSync(SyncDirectionPush, nil, "")
	failed.Fail(&json.SyntaxError{})
	assert.Equal(t, SyncStatusFailed, failed.Status)
	failed.Skip(string(long))
	assert.Len(t, failed.Error, maxSyncErrorLength)
}
