package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogDigestDeterministic(t *testing.T) {
	log := MoveLog{{StrandID: "t7", From: 7, To: 15}, {StrandID: "t7", From: 15, To: 7}}

	a, err := LogDigest("kongo_gumi_8", log)
	require.NoError(t, err)
	b, err := LogDigest("kongo_gumi_8", log.Clone())
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestLogDigestSeparatesInputs(t *testing.T) {
	log := MoveLog{{StrandID: "t7", From: 7, To: 15}}

	a := MustLogDigest("kongo_gumi_8", log)
	b := MustLogDigest("kaku_yatsu_gumi_8", log)
	c := MustLogDigest("kongo_gumi_8", MoveLog{})

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestLayoutDigestIgnoresSetupOrder(t *testing.T) {
	a := MustLayout([]Strand{{ID: "x", Color: "red", Position: 1}, {ID: "y", Color: "blue", Position: 9}})
	b := MustLayout([]Strand{{ID: "y", Color: "blue", Position: 9}, {ID: "x", Color: "red", Position: 1}})

	da, err := LayoutDigest(a)
	require.NoError(t, err)
	db, err := LayoutDigest(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}
