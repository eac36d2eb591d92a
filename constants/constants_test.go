package constants_test

import (
	"testing"

	"github.com/cclibraries/rdmflow/constants"
	"github.com/stretchr/testify/assert"
)

func TestTransferStatusIsTerminal(t *testing.T) {
	assert.True(t, constants.TransferStatusIsTerminal(constants.TransferStatusSucceeded))
	assert.True(t, constants.TransferStatusIsTerminal(constants.TransferStatusFailed))
	assert.False(t, constants.TransferStatusIsTerminal(constants.TransferStatusActive))
	assert.False(t, constants.TransferStatusIsTerminal(constants.TransferStatusInactive))
	assert.False(t, constants.TransferStatusIsTerminal(""))
	assert.False(t, constants.TransferStatusIsTerminal("PAUSED"))
}
