// Package rational implements the exact fractional second values used by the
// FCPXML interchange format, e.g. "1001/30000s". Keeping times rational until
// the last moment avoids floating-point drift across import/export cycles.
package rational

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Rational is Num/Den seconds with Den > 0, always stored reduced.
type Rational struct {
	Num int64
	Den int64
}

var ErrZeroDenominator = errors.New("zero denominator")

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

// New returns num/den reduced to lowest terms.
func New(num, den int64) (Rational, error) {
	if den == 0 {
		return Rational{}, ErrZeroDenominator
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(num, den)
	return Rational{Num: num / g, Den: den / g}, nil
}

// Parse reads an FCPXML time value: "1001/30000s", "5s", "0s" or a bare
// number. The trailing "s" is optional.
func Parse(s string) (Rational, error) {
	s = strings.TrimSpace(strings.TrimSuffix(s, "s"))
	if s == "" {
		return Rational{}, errors.New("empty time value")
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseInt(num, 10, 64)
		if err != nil {
			return Rational{}, fmt.Errorf("numerator %q: %w", num, err)
		}
		d, err := strconv.ParseInt(den, 10, 64)
		if err != nil {
			return Rational{}, fmt.Errorf("denominator %q: %w", den, err)
		}
		return New(n, d)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("time value %q: %w", s, err)
	}
	return Rational{Num: n, Den: 1}, nil
}

// FromSeconds converts seconds to a rational at the given timescale,
// rounding to the nearest tick.
func FromSeconds(sec float64, timescale int64) Rational {
	if timescale <= 0 {
		timescale = 1
	}
	r, _ := New(int64(math.Round(sec*float64(timescale))), timescale)
	return r
}

func (r Rational) Seconds() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

func (r Rational) IsZero() bool { return r.Num == 0 }

// Add returns r+o exactly.
func (r Rational) Add(o Rational) Rational {
	if r.Den == 0 || o.Den == 0 {
		return Rational{}
	}
	g := gcd(r.Den, o.Den)
	den := r.Den / g * o.Den
	num := r.Num*(o.Den/g) + o.Num*(r.Den/g)
	out, _ := New(num, den)
	return out
}

// Sub returns r-o exactly.
func (r Rational) Sub(o Rational) Rational {
	return r.Add(Rational{Num: -o.Num, Den: o.Den})
}

// Div returns r/o as a float; used for frame counting, not re-emission.
func (r Rational) Div(o Rational) float64 {
	if o.Num == 0 {
		return 0
	}
	return r.Seconds() / o.Seconds()
}

// String renders the FCPXML form: "0s", "5s" or "1001/30000s".
func (r Rational) String() string {
	if r.Num == 0 {
		return "0s"
	}
	if r.Den == 1 {
		return fmt.Sprintf("%ds", r.Num)
	}
	return fmt.Sprintf("%d/%ds", r.Num, r.Den)
}

// MulInt returns r*n exactly.
func (r Rational) MulInt(n int64) Rational {
	out, _ := New(r.Num*n, r.Den)
	return out
}
