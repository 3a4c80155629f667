package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccount_Spend(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"100", 100},
		{" 50.5 ", 50.5},
		{"", 0},
		{"n/a", 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			a := Account{SpendAmount: tt.raw}
			assert.Equal(t, tt.want, a.Spend())
		})
	}
}

func TestAccount_MatchCondition(t *testing.T) {
	assert.Equal(t, "AND", (&Account{}).MatchCondition())
	assert.Equal(t, "AND", (&Account{Condition: "and"}).MatchCondition())
	assert.Equal(t, "OR", (&Account{Condition: "or"}).MatchCondition())
	assert.Equal(t, "AND", (&Account{Condition: "xor"}).MatchCondition())
}

func TestAccount_Location(t *testing.T) {
	assert.Equal(t, "UTC", (&Account{}).Location())
	assert.Equal(t, "America/Chicago", (&Account{Timezone: "America/Chicago"}).Location())
}
