package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Expired(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	testCases := []struct {
		name    string
		age     time.Duration
		expired bool
	}{
		{name: "fresh", age: time.Minute, expired: false},
		{name: "23 hours", age: 23 * time.Hour, expired: false},
		{name: "exactly TTL", age: TTL, expired: false},
		{name: "25 hours", age: 25 * time.Hour, expired: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			st := WaitingForCategory(1, now.Add(-tc.age))
			assert.Equal(t, tc.expired, st.Expired(now))
		})
	}
}

func TestEncodeDecodeData(t *testing.T) {
	now := time.Now()
	a := &Assignment{TaskID: 3, Category: "Логика", Text: "Задача", MaxScore: 2}

	raw, err := EncodeData(WaitingForAnswer(9, a, now))
	require.NoError(t, err)
	assert.JSONEq(t, `{"task":{"id":3,"category":"Логика","text":"Задача","max_score":2}}`, string(raw))

	restored := &State{UserID: 9, Kind: KindWaitingForAnswer}
	require.NoError(t, DecodeData(restored, raw))
	assert.Equal(t, a, restored.Assignment)

	raw, err = EncodeData(WaitingForCategory(9, now))
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestDecodeData_Rejects(t *testing.T) {
	testCases := []struct {
		name string
		kind Kind
		raw  string
	}{
		{name: "answer state without task", kind: KindWaitingForAnswer, raw: `{}`},
		{name: "answer state with null data", kind: KindWaitingForAnswer, raw: `null`},
		{name: "malformed json", kind: KindWaitingForCategory, raw: `{"task":`},
		{name: "unknown kind", kind: Kind("waiting_for_payment"), raw: `{}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := DecodeData(&State{UserID: 1, Kind: tc.kind}, []byte(tc.raw))
			assert.Error(t, err)
		})
	}
}

func TestDecodeData_CategoryStateDropsTask(t *testing.T) {
	st := &State{UserID: 1, Kind: KindWaitingForCategory}
	require.NoError(t, DecodeData(st, []byte(`{"task":{"id":3,"text":"x","max_score":2}}`)))
	assert.Nil(t, st.Assignment)
}
