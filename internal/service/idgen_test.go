package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextCodeFirstOfYear(t *testing.T) {
	assert.Equal(t, "STD202600001", nextCode(StudentCodePrefix, 2026, ""))
	assert.Equal(t, "TCH202600001", nextCode(TeacherCodePrefix, 2026, ""))
}

func TestNextCodeIncrements(t *testing.T) {
	assert.Equal(t, "STD202600002", nextCode(StudentCodePrefix, 2026, "STD202600001"))
	assert.Equal(t, "STD202600043", nextCode(StudentCodePrefix, 2026, "STD202600042"))
}

func TestNextCodeUnparsableSuffixRestartsSequence(t *testing.T) {
	assert.Equal(t, "STD202600001", nextCode(StudentCodePrefix, 2026, "STD2026XYZ"))
	assert.Equal(t, "STD202600001", nextCode(StudentCodePrefix, 2026, "garbage"))
}

func TestNextCodeWidensPastFiveDigits(t *testing.T) {
	assert.Equal(t, "STD2026100000", nextCode(StudentCodePrefix, 2026, "STD202699999"))
	assert.Equal(t, "STD2026100001", nextCode(StudentCodePrefix, 2026, "STD2026100000"))
}

func TestYearPrefix(t *testing.T) {
	assert.Equal(t, "STD2026", yearPrefix(StudentCodePrefix, 2026))
	assert.Equal(t, "TCH2031", yearPrefix(TeacherCodePrefix, 2031))
}
