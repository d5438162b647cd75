package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionGuardSerializesPerRecord(t *testing.T) {
	g := newActionGuard()

	assert.True(t, g.begin("risk:1_1"))
	assert.False(t, g.begin("risk:1_1"), "second action on the same record is rejected")
	assert.True(t, g.begin("risk:1_2"), "other records are unaffected")

	g.end("risk:1_1")
	assert.True(t, g.begin("risk:1_1"), "the record frees up once the action settles")
}
