package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheLabelColDefault(t *testing.T) {
	flag := cacheCmd.Flags().Lookup("label-col")
	require.NotNil(t, flag)

	// Caching works for unlabeled data too, so no label column is assumed
	// unless asked for, same as the score command.
	assert.Equal(t, "-1", flag.DefValue)

	scoreFlag := scoreCmd.Flags().Lookup("label-col")
	require.NotNil(t, scoreFlag)
	assert.Equal(t, scoreFlag.DefValue, flag.DefValue)
}
