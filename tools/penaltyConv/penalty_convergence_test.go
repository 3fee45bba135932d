package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	data := `title,penalty,penetration
crossing,1000,-0.0001
crossing,100,-0.001
crossing,10,-0.01
slider,10,0.04
slider,40,0.01
`
	studies, err := readCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, studies, 2)
	{
		q := studies["crossing"].Orders()
		require.Len(t, q, 2)
		assert.InDelta(t, 1, q[0], 1.e-12)
		assert.InDelta(t, 1, q[1], 1.e-12)
		assert.Equal(t, []float64{10, 100, 1000}, studies["crossing"].penalty)
	}
	{
		q := studies["slider"].Orders()
		require.Len(t, q, 1)
		assert.InDelta(t, 1, q[0], 1.e-12)
	}
	_, err = readCSV(strings.NewReader("title,penalty,penetration\nx,abc,1\n"))
	assert.Error(t, err)
	_, err = readCSV(strings.NewReader("title,penalty,penetration\nx,0,1\n"))
	assert.Error(t, err)
	_, err = readCSV(strings.NewReader("title,penalty,penetration\nx,1\n"))
	assert.Error(t, err)
}
