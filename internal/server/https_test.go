package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDomain(t *testing.T) {
	valid := []string{
		"example.com",
		"link.example.com",
		"mediadash.id",
	}
	for _, d := range valid {
		assert.NoError(t, ValidateDomain(d), d)
	}

	invalid := []string{
		"",
		"localhost",
		"LOCALHOST",
		"127.0.0.1",
		"::1",
		"[::1]",
		".example.com",
		"example.com.",
		"-example.com",
		"example..com",
	}
	for _, d := range invalid {
		assert.Error(t, ValidateDomain(d), d)
	}
}
