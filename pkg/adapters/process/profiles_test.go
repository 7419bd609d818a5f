package process_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/qpilot/pkg/adapters/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfiles_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apps.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
apps:
  - name: calculator
    command: ./build/calculator
    args: ["--style", "fusion"]
    env:
      QT_QPA_PLATFORM: offscreen
    port: 9000
    description: The sample calculator build
  - name: editor
    command: ./build/editor
  - command: ./orphan/without/a/name
`), 0o644))

	profiles, err := process.LoadProfiles(path)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	calc := profiles["calculator"]
	assert.Equal(t, "./build/calculator", calc.Command)
	assert.Equal(t, []string{"--style", "fusion"}, calc.Args)
	assert.Equal(t, "offscreen", calc.Env["QT_QPA_PLATFORM"])
	assert.Equal(t, 9000, calc.Port)
	assert.Contains(t, profiles, "editor")
}

func TestLoadProfiles_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apps.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "apps": [{"name": "calculator", "command": "./build/calculator"}]
}`), 0o644))

	profiles, err := process.LoadProfiles(path)
	require.NoError(t, err)
	assert.Equal(t, "./build/calculator", profiles["calculator"].Command)
}

func TestLoadProfiles_MissingFile(t *testing.T) {
	_, err := process.LoadProfiles(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading apps file")
}

func TestProfile_Start(t *testing.T) {
	needsShell(t)

	p := process.Profile{
		Name:    "echoer",
		Command: "sh",
		Args:    []string{"-c", `echo "$QPILOT_PORT $GREETING"`},
		Env:     map[string]string{"GREETING": "hello"},
		Port:    0,
	}

	app, err := p.Start(context.Background())
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Wait(context.Background()))
	assert.Contains(t, app.Stdout(), "hello")
}

func TestProfile_StartWithoutCommand(t *testing.T) {
	_, err := process.Profile{Name: "broken"}.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no command")
}
