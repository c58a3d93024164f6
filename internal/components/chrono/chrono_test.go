package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestToday(t *testing.T) {
	at := time.Date(2025, time.March, 15, 17, 42, 9, 0, SaoPaulo())
	require.Equal(t, Date(2025, time.March, 15), Today(at))
}

func TestFixedTime(t *testing.T) {
	clock := FixedTime{At: Date(2024, time.December, 31)}
	require.Equal(t, 2024, clock.Now().Year())
	require.Equal(t, clock.Now(), clock.Now())
}
