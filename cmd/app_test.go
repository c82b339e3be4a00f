package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v2"
)

func TestNewApp_Commands(t *testing.T) {
	app := newApp()

	var names []string
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"serve", "migrate", "create-staff"}, names)
	assert.NotNil(t, app.Action)
}

func TestCreateStaff_RequiresFlags(t *testing.T) {
	app := newApp()
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run([]string{"food-order-api", "create-staff", "--username", "chef"})
	assert.Error(t, err)
}
