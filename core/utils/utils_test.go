package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToSeconds(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		unit  string
		want  int64
	}{
		{"minutes", 30, "mins", 1800},
		{"hours", 1.5, "hours", 5400},
		{"days", 1, "days", 86400},
		{"weeks", 1, "weeks", 604800},
		{"months", 1, "months", 2592000},
		{"zero", 0, "mins", 0},
		{"negative", -5, "mins", 0},
		{"unknown unit", 10, "fortnights", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertToSeconds(tt.value, tt.unit))
		})
	}
}

func TestFormatISO(t *testing.T) {
	ts := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-10T15:00:00Z", FormatISOSeconds(ts))
	assert.Equal(t, "2025-03-10T15:00:00.000Z", FormatISOMillis(ts))

	est := time.FixedZone("EST", -5*3600)
	assert.Equal(t, "2025-03-10T15:00:00Z", FormatISOSeconds(ts.In(est)))
}

func TestParseTimestamp(t *testing.T) {
	a, err := ParseTimestamp("2025-03-10T15:00:00Z")
	require.NoError(t, err)
	b, err := ParseTimestamp("2025-03-10T15:00:00.000Z")
	require.NoError(t, err)
	c, err := ParseTimestamp("2025-03-10T10:00:00-05:00")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	assert.True(t, a.Equal(c))

	_, err = ParseTimestamp("10/03/2025")
	assert.Error(t, err)
}

func TestLastPathSegment(t *testing.T) {
	assert.Equal(t, "ABC123", LastPathSegment("https://api.calendly.com/event_types/ABC123"))
	assert.Equal(t, "ABC123", LastPathSegment("https://api.calendly.com/event_types/ABC123/"))
	assert.Equal(t, "plain", LastPathSegment("plain"))
}

func TestNextBusinessDays_SkipsWeekend(t *testing.T) {
	friday := time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC)
	days := NextBusinessDays(friday, 4)

	require.Len(t, days, 4)
	assert.Equal(t, "2025-03-14", days[0].Format(DateLayout))
	assert.Equal(t, "2025-03-17", days[1].Format(DateLayout))
	assert.Equal(t, "2025-03-18", days[2].Format(DateLayout))
	assert.Equal(t, "2025-03-19", days[3].Format(DateLayout))
}

func TestPasswordRoundTrip(t *testing.T) {
	hashed, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.True(t, ComparePassword(hashed, "s3cret!"))
	assert.False(t, ComparePassword(hashed, "wrong"))
}

func TestJWT(t *testing.T) {
	id := uuid.New()
	token, err := GenerateToken("secret", time.Hour, id, "owner@example.com")
	require.NoError(t, err)

	claims, err := ValidateAndParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "owner@example.com", claims.Email)

	_, err = ValidateAndParseToken("other", token)
	assert.Error(t, err)

	expired, err := GenerateToken("secret", -time.Minute, id, "owner@example.com")
	require.NoError(t, err)
	_, err = ValidateAndParseToken("secret", expired)
	assert.Error(t, err)
}

func TestGetTokenFromHeader(t *testing.T) {
	tok, err := GetTokenFromHeader("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	_, err = GetTokenFromHeader("")
	assert.Error(t, err)
	_, err = GetTokenFromHeader("Basic abc")
	assert.Error(t, err)
}

func TestGenerateTempPassword(t *testing.T) {
	p, err := GenerateTempPassword(12)
	require.NoError(t, err)
	assert.Len(t, p, 12)
	assert.NotEmpty(t, GenerateState())
}

func TestBuildMessage(t *testing.T) {
	msg := string(BuildMessage("noreply@example.com", EmailMessage{
		To:      []string{"owner@example.com"},
		Subject: "Welcome",
		Body:    "hello",
	}))
	assert.Contains(t, msg, "To: owner@example.com\r\n")
	assert.Contains(t, msg, "Subject: Welcome\r\n")
	assert.Contains(t, msg, "\r\n\r\nhello")
}
