package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bizdir/bizdir/internal/app"
	_ "github.com/bizdir/bizdir/testing"
)

func TestMainReturnsInTestMode(t *testing.T) {
	app.RefreshTestMode()
	assert.True(t, app.InTestMode())
	assert.NotPanics(t, main)
}
