package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/xport"
	"github.com/arloliu/xport/dataset"
	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/format"
)

func writeSample(t *testing.T, v format.Version) string {
	t.Helper()

	ds := dataset.New("DM",
		dataset.CharacterColumn("USUBJID", "Unique Subject Identifier", 20),
		dataset.NumericColumn("AGE", "Age").WithFormat(dataset.MustParseFormat("8.")),
	)
	ds.Label = "Demographics"
	require.NoError(t, ds.AddRow(dataset.Character("STUDY-001"), dataset.Numeric(35)))
	require.NoError(t, ds.AddRow(dataset.Character("STUDY-002"), dataset.Missing(format.MissingA)))
	require.NoError(t, ds.AddRow(dataset.Character("STUDY-003"), dataset.Numeric(52)))

	path := filepath.Join(t.TempDir(), "dm.xpt")
	require.NoError(t, xport.Write(path, ds, v))

	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()

	return out.String(), err
}

func TestInspect(t *testing.T) {
	out, err := run(t, "inspect", writeSample(t, format.V5))
	require.NoError(t, err)

	assert.Contains(t, out, "V5")
	assert.Contains(t, out, "Member DM (Demographics): 3 rows, 2 columns, 28 bytes per row")
	assert.Contains(t, out, "USUBJID")
	assert.Contains(t, out, "Unique Subject Identifier")
}

func TestDump(t *testing.T) {
	path := writeSample(t, format.V8)

	t.Run("AllRows", func(t *testing.T) {
		out, err := run(t, "dump", path)
		require.NoError(t, err)
		assert.Contains(t, out, "STUDY-001")
		assert.Contains(t, out, ".A")
		assert.Contains(t, out, "52")
	})

	t.Run("Limit", func(t *testing.T) {
		out, err := run(t, "dump", "--limit", "1", path)
		require.NoError(t, err)
		assert.Contains(t, out, "STUDY-001")
		assert.NotContains(t, out, "STUDY-002")
	})

	t.Run("UnknownMember", func(t *testing.T) {
		_, err := run(t, "dump", "--member", "AE", path)
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	t.Run("StandardV8", func(t *testing.T) {
		out, err := run(t, "validate", writeSample(t, format.V8))
		require.NoError(t, err)
		assert.Contains(t, out, "0 error(s)")
	})

	t.Run("FDAV8", func(t *testing.T) {
		out, err := run(t, "validate", "--mode", "fda", writeSample(t, format.V8))
		require.ErrorIs(t, err, errs.ErrValidationFailed)
		assert.Contains(t, out, "FDA_VERSION")
	})

	t.Run("FDAV5", func(t *testing.T) {
		_, err := run(t, "validate", "--mode", "fda", writeSample(t, format.V5))
		require.NoError(t, err)
	})
}

func TestConvert(t *testing.T) {
	in := writeSample(t, format.V5)
	out := filepath.Join(t.TempDir(), "dm8.xpt.zst")

	stdout, err := run(t, "convert", "--version", "8", "--compress", "zstd", in, out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Compressed size")

	ds, err := xport.Read(out)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.NumRows())

	inspect, err := run(t, "inspect", out)
	require.NoError(t, err)
	assert.Contains(t, inspect, "Zstd")
	assert.Contains(t, inspect, "V8")
}

func TestIBM(t *testing.T) {
	t.Run("Encode", func(t *testing.T) {
		out, err := run(t, "ibm", "--", "1", "-2.5", ".A")
		require.NoError(t, err)
		assert.Contains(t, out, "4110000000000000")
		assert.Contains(t, out, "C128000000000000")
		assert.Contains(t, out, "4100000000000000")
	})

	t.Run("Decode", func(t *testing.T) {
		out, err := run(t, "ibm", "--decode", "4110000000000000", "C128")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[1], "1")
		assert.Contains(t, lines[2], "-2.5")
	})

	t.Run("InvalidHex", func(t *testing.T) {
		_, err := run(t, "ibm", "--decode", "zz")
		require.Error(t, err)
	})
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "xptool dev")
}

func TestRootCmd_TreesDoNotShareLogging(t *testing.T) {
	t.Run("Flags", func(t *testing.T) {
		_, err := run(t, "--log-level", "bogus", "version")
		require.Error(t, err)

		out, err := run(t, "version")
		require.NoError(t, err)
		assert.Contains(t, out, "xptool dev")
	})

	t.Run("Output", func(t *testing.T) {
		path := writeSample(t, format.V5)
		logPath := filepath.Join(t.TempDir(), "xptool.log")

		_, err := run(t, "--log-level", "debug", "--log-output", logPath, "inspect", path)
		require.NoError(t, err)
		logged, err := os.ReadFile(logPath)
		require.NoError(t, err)
		require.Contains(t, string(logged), "library header parsed")

		_, err = run(t, "inspect", path)
		require.NoError(t, err)
		after, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Equal(t, logged, after)
	})
}
