package chrono

import (
	"time"
)

var saoPaulo *time.Location

func init() {
	var err error
	saoPaulo, err = time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		// containers without tzdata still get a correct offset, Brasília has not observed DST since 2019.
		saoPaulo = time.FixedZone("America/Sao_Paulo", -3*60*60)
	}
}

// SaoPaulo returns a [*time.Location] for America/Sao_Paulo, the timezone every upstream
// API reports dates in.
func SaoPaulo() *time.Location {
	return saoPaulo
}

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time, the timezone of the time will default to America/Sao_Paulo.
	Now() time.Time
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

// NewStandardTime is the constructor of StandardTime.
func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (s StandardTime) Now() time.Time {
	return time.Now().In(saoPaulo)
}

// FixedTime is a TimeAPI that always returns the same instant.
type FixedTime struct {
	At time.Time
}

func (f FixedTime) Now() time.Time {
	return f.At
}

// Date is a shorthand for a midnight time.Time in America/Sao_Paulo.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, saoPaulo)
}

// Today truncates t to midnight in its own location.
func Today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
