package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatVND(t *testing.T) {
	assert.Equal(t, "0₫", FormatVND(0))
	assert.Equal(t, "500₫", FormatVND(500))
	assert.Equal(t, "100.000₫", FormatVND(100000))
	assert.Equal(t, "1.250.000₫", FormatVND(1250000))
	assert.Equal(t, "-20.000₫", FormatVND(-20000))
}

func TestFormatLocal_ZeroTime(t *testing.T) {
	assert.Equal(t, "-", FormatLocal(time.Time{}))
}

func TestOrDash(t *testing.T) {
	assert.Equal(t, "-", OrDash(""))
	assert.Equal(t, "x", OrDash("x"))
}
