package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestConfig writes a config keeping icons and history inside a temp
// directory and returns its path.
func writeTestConfig(t *testing.T, historyEnabled bool) string {
	t.Helper()
	dir := t.TempDir()
	body := fmt.Sprintf(`colors:
  red: "#f00"
  Brand.Blue: "#00f"
highlight: true
gutter_icon: false
icons:
  cache_dir: %q
history:
  enabled: %t
  path: %q
`, filepath.Join(dir, "icons"), historyEnabled, filepath.Join(dir, "history.db"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "colors.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// execute runs the root command with fresh flag state.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	cfgFile = ""
	debugFlag = false
	scanList, scanColor, scanBackground, scanNumbers = false, "auto", "", true
	iconShape, iconBackdrop, iconDir = "", "", ""
	historyForget = false
	viewNoWatch = false

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestSetupConfig_ExplicitMissingWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	v := viper.New()

	require.NoError(t, setupConfig(v, path, "", ""))
	assert.Equal(t, path, v.ConfigFileUsed())
	assert.FileExists(t, path)
	assert.NotEmpty(t, v.GetStringMapString("colors"))
}

func TestSetupConfig_PrefersLocal(t *testing.T) {
	local := writeTestConfig(t, false)
	userDir := t.TempDir()
	v := viper.New()

	require.NoError(t, setupConfig(v, "", local, userDir))
	assert.Equal(t, local, v.ConfigFileUsed())
	assert.NoFileExists(t, filepath.Join(userDir, "config.yaml"))
}

func TestSetupConfig_UserDirCreated(t *testing.T) {
	userDir := filepath.Join(t.TempDir(), "hues")
	v := viper.New()

	require.NoError(t, setupConfig(v, "", filepath.Join(userDir, "missing.yaml"), userDir))
	assert.FileExists(t, filepath.Join(userDir, "config.yaml"))
	assert.Equal(t, filepath.Join(userDir, "config.yaml"), v.ConfigFileUsed())
}

func TestSetupConfig_UserDirExisting(t *testing.T) {
	path := writeTestConfig(t, false)
	v := viper.New()

	require.NoError(t, setupConfig(v, "", "", filepath.Dir(path)))
	assert.Equal(t, "#f00", v.GetStringMapString("colors")["red"])
}

func TestSetupConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("colors: [unclosed"), 0600))

	err := setupConfig(viper.New(), path, "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestApplyColorMode(t *testing.T) {
	require.NoError(t, applyColorMode("never"))
	require.NoError(t, applyColorMode("auto"))
	err := applyColorMode("sometimes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--color must be")
}

func TestScan_ListsMatches(t *testing.T) {
	cfg := writeTestConfig(t, false)
	file := writeFile(t, "red and Brand.Blue\nplain\n  #0f08\n")

	out, errOut, err := execute(t, "--config", cfg, "scan", "--list", "--color", "never", file)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, file+":1:1\tred\t#FF0000FF", lines[0])
	assert.Equal(t, file+":1:9\tBrand.Blue\t#0000FFFF", lines[1])
	assert.Equal(t, file+":3:3\t#0f08\t#00FF0088", lines[2])
	assert.Contains(t, errOut, "3 matches, 3 colors")
}

func TestScan_PrintsNumberedFile(t *testing.T) {
	cfg := writeTestConfig(t, false)
	file := writeFile(t, "red\nplain")

	out, _, err := execute(t, "--config", cfg, "scan", "--color", "never", file)
	require.NoError(t, err)
	assert.Equal(t, "1 red\n2 plain\n", out)
}

func TestScan_RejectsBadBackground(t *testing.T) {
	cfg := writeTestConfig(t, false)
	file := writeFile(t, "red")

	_, _, err := execute(t, "--config", cfg, "scan", "--background", "white", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid background")
}

func TestScan_MissingFile(t *testing.T) {
	cfg := writeTestConfig(t, false)

	_, _, err := execute(t, "--config", cfg, "scan", filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading")
}

func TestNormalize(t *testing.T) {
	cfg := writeTestConfig(t, false)

	out, _, err := execute(t, "--config", cfg, "normalize", "#f00", "#00ff0080", "red")
	require.NoError(t, err)
	assert.Equal(t, "#f00\t#FF0000FF\n#00ff0080\t#00FF0080\nred\t#FF0000FF\n", out)
}

func TestNormalize_ReportsInvalid(t *testing.T) {
	cfg := writeTestConfig(t, false)

	out, errOut, err := execute(t, "--config", cfg, "normalize", "#f00", "#ggg", "teal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 colors invalid")
	assert.Equal(t, "#f00\t#FF0000FF\n", out)
	assert.Contains(t, errOut, "#ggg\tinvalid color")
}

func TestMode_ShowAndPersist(t *testing.T) {
	cfg := writeTestConfig(t, false)

	out, _, err := execute(t, "--config", cfg, "mode")
	require.NoError(t, err)
	assert.Equal(t, "on\n", out)

	out, _, err = execute(t, "--config", cfg, "mode", "save-only")
	require.NoError(t, err)
	assert.Contains(t, out, "save-only")

	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "highlight: save-only")
	assert.Contains(t, string(data), "Brand.Blue", "other settings are kept")

	out, _, err = execute(t, "--config", cfg, "mode")
	require.NoError(t, err)
	assert.Equal(t, "save-only\n", out)
}

func TestMode_RejectsUnknown(t *testing.T) {
	cfg := writeTestConfig(t, false)

	_, _, err := execute(t, "--config", cfg, "mode", "sometimes")
	require.Error(t, err)
}

func TestIcon_WritesIntoDir(t *testing.T) {
	cfg := writeTestConfig(t, false)
	dir := t.TempDir()

	out, _, err := execute(t, "--config", cfg, "icon", "--dir", dir, "--shape", "square", "--backdrop", "dark", "#f00")
	require.NoError(t, err)

	path := strings.TrimSpace(out)
	assert.Equal(t, filepath.Join(dir, "FF0000FF_square-dark.png"), path)
	assert.FileExists(t, path)
}

func TestIcon_InvalidColor(t *testing.T) {
	cfg := writeTestConfig(t, false)

	_, _, err := execute(t, "--config", cfg, "icon", "--dir", t.TempDir(), "red")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "synthesizing icon")
}

func TestHistory_RecordsScans(t *testing.T) {
	cfg := writeTestConfig(t, true)
	file := writeFile(t, "red\n")

	out, _, err := execute(t, "--config", cfg, "history", file)
	require.NoError(t, err)
	assert.Contains(t, out, "no recorded pass")

	for range 2 {
		_, _, err = execute(t, "--config", cfg, "scan", "--color", "never", file)
		require.NoError(t, err)
	}

	out, _, err = execute(t, "--config", cfg, "history", file)
	require.NoError(t, err)
	assert.Contains(t, out, "2 passes")

	out, _, err = execute(t, "--config", cfg, "history", "--forget", file)
	require.NoError(t, err)
	assert.Contains(t, out, "forgot")

	out, _, err = execute(t, "--config", cfg, "history", file)
	require.NoError(t, err)
	assert.Contains(t, out, "no recorded pass")
}

func TestHistory_Disabled(t *testing.T) {
	cfg := writeTestConfig(t, false)

	_, _, err := execute(t, "--config", cfg, "history", writeFile(t, "red"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}
