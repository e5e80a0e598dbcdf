package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "sara_ali", slugify("Sara Ali"))
	assert.Equal(t, "1_a", slugify("1/A"))
	assert.Equal(t, "abu_bakr", slugify("  Abu Bakr "))
}

func TestDerivedEmail(t *testing.T) {
	email := derivedEmail("Sara Ali", "1/A", "students.school.local")
	assert.Equal(t, "sara_ali_1_a@students.school.local", email)
}
