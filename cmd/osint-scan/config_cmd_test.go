package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigInfoCmd_RunsWithoutError(t *testing.T) {
	configEnvFile = ""
	assert.NotPanics(t, func() {
		configInfoCmd.Run(configInfoCmd, nil)
	})
}
