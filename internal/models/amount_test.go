package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountUnmarshal(t *testing.T) {
	cases := map[string]string{
		`1500`:      "1500",
		`1500.75`:   "1500.75",
		`"1500,75"`: "1500.75",
		`" 42.5 "`:  "42.5",
		`"0,5"`:     "0.5",
	}
	for in, want := range cases {
		var a Amount
		require.NoError(t, json.Unmarshal([]byte(in), &a), in)
		assert.Equal(t, want, a.String(), in)
	}

	for _, bad := range []string{`""`, `"1.234,56"`, `"abc"`, `true`} {
		var a Amount
		err := json.Unmarshal([]byte(bad), &a)
		var ae *AmountError
		assert.ErrorAs(t, err, &ae, bad)
	}
}

func TestParseDateTimeLayouts(t *testing.T) {
	for _, s := range []string{"2024-05-10T14:30:00Z", "2024-05-10T14:30", "2024-05-10 14:30:00", "2024-05-10"} {
		_, err := ParseDateTime(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseDateTime("10/05/2024")
	var de *DateTimeError
	assert.ErrorAs(t, err, &de)
}

func TestEnumRejectsUnknownValue(t *testing.T) {
	var s ClientStage
	err := json.Unmarshal([]byte(`"arquivado"`), &s)
	var ee *EnumError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "arquivado", ee.Value)

	require.NoError(t, json.Unmarshal([]byte(`"proposta"`), &s))
	assert.Equal(t, StageProposta, s)
}
