package controller_test

import (
	"context"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/taskboard/pkg/controller"
	"github.com/stretchr/testify/assert"
)

func TestAsKey(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	assert.Equal("q", controller.AsKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.Equal("X", controller.AsKey(tcell.NewEventKey(tcell.KeyRune, 'X', tcell.ModShift)))
	assert.Equal("Shift+Left", controller.AsKey(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModShift)))
	assert.Equal("Shift+Down", controller.AsKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModShift)))
	assert.Equal("Esc", controller.AsKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.Equal("Enter", controller.AsKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)))
}

func TestNewControllerRequiresDependencies(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	c, err := controller.NewController(context.Background(), nil, nil, nil)
	assert.Error(err)
	assert.Nil(c)
}
