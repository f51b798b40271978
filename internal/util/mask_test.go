package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j…@e….com", MaskEmail(" John@Example.com "))
	assert.Equal(t, "***", MaskEmail("abc"))
	assert.Equal(t, "", MaskEmail(""))
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "postgres://warden:xxxxx@db:5432/warden", MaskDSN("postgres://warden:hunter2@db:5432/warden"))
	assert.Equal(t, "***", MaskDSN("host=db password=hunter2"))
	assert.Equal(t, "", MaskDSN(""))
}
