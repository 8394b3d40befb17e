package app

import (
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/common"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, fn, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(fn, []byte(content), 0600))
	return fn
}

func TestApp_Initialize(t *testing.T) {
	dir := t.TempDir()
	agendaFn := writeFile(t, filepath.Join(dir, "agenda.yml"), testAgenda)
	confFn := writeFile(t, filepath.Join(dir, "configuration.yml"), `
agenda: `+agendaFn+`
listen: localhost:9999
console: false
oracle:
  enabled: false
signal:
  type: log
  hue:
    target: ^Board
`)

	instance := NewApp()
	instance.ConfigurationFile = confFn
	instance.configFromFlags.RefreshInterval = time.Minute
	instance.configFromFlags.Listen = "localhost:7777"

	require.NoError(t, instance.Initialize())
	t.Cleanup(func() { _ = instance.Dispose() })

	assert.Equal(t, "localhost:7777", instance.config.Listen, "flags take precedence")
	assert.Equal(t, time.Minute, instance.config.RefreshInterval)
	assert.Equal(t, "^Board", instance.config.Signal.Hue.Name.String(), "unset regexp flags keep the file value")
	assert.Equal(t, "Weekly", instance.facilitator.Snapshot().Title)
	assert.Equal(t, signal.TypeLog, instance.Signal.GetType())
	assert.Nil(t, instance.oracleClient)
}

func TestApp_Initialize_WithoutAgenda(t *testing.T) {
	instance := NewApp()
	instance.ConfigurationFile = filepath.Join(t.TempDir(), "configuration.yml")

	assert.ErrorIs(t, instance.Initialize(), ErrNoAgenda)
}

func TestApp_Initialize_OracleWithoutApiKey(t *testing.T) {
	dir := t.TempDir()
	agendaFn := writeFile(t, filepath.Join(dir, "agenda.yml"), testAgenda)

	instance := NewApp()
	instance.ConfigurationFile = filepath.Join(dir, "configuration.yml")
	instance.configFromFlags.Agenda = agendaFn
	instance.configFromFlags.PreventAutoSave = true

	require.NoError(t, instance.Initialize())
	t.Cleanup(func() { _ = instance.Dispose() })

	assert.Nil(t, instance.oracleClient, "falls back to the disabled oracle")
	assert.NoFileExists(t, instance.ConfigurationFile)
}

func TestApp_Initialize_SavesAbsentConfiguration(t *testing.T) {
	dir := t.TempDir()
	agendaFn := writeFile(t, filepath.Join(dir, "agenda.yml"), testAgenda)

	instance := NewApp()
	instance.ConfigurationFile = filepath.Join(dir, "nested", "configuration.yml")
	instance.configFromFlags.Agenda = agendaFn

	require.NoError(t, instance.Initialize())
	t.Cleanup(func() { _ = instance.Dispose() })

	var reloaded Configuration
	require.NoError(t, reloaded.loadFromFile(instance.ConfigurationFile, false))
	assert.Equal(t, agendaFn, reloaded.Agenda)
	assert.Equal(t, "localhost:8080", reloaded.Listen)
}

func TestRegexpTransformer(t *testing.T) {
	dst := struct{ V common.Regexp }{common.MustNewRegexp("^a")}

	require.NoError(t, mergeWithOverride(&dst, struct{ V common.Regexp }{}))
	assert.Equal(t, "^a", dst.V.String())

	require.NoError(t, mergeWithOverride(&dst, struct{ V common.Regexp }{common.MustNewRegexp("^b")}))
	assert.Equal(t, "^b", dst.V.String())
}
