package ptr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTo(t *testing.T) {
	s := "drive"
	p := To(s)
	assert.Equal(t, s, *p)
	assert.NotSame(t, &s, p)
}

func TestTypedHelpers(t *testing.T) {
	assert.Equal(t, "x", *String("x"))
	assert.Equal(t, 3, *Int(3))
	assert.Equal(t, 7.5, *Float64(7.5))
}

func TestTime(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, loc)
	p := Time(ts)
	assert.True(t, p.Time.Equal(ts))
	assert.Equal(t, time.UTC, p.Time.Location())
}

func TestDeref(t *testing.T) {
	assert.Equal(t, "", Deref[string](nil))
	assert.Equal(t, 0, Deref[int](nil))
	assert.Equal(t, 4, Deref(Int(4)))
}
