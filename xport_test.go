package xport

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/xport/dataset"
	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/format"
	"github.com/arloliu/xport/transport"
	"github.com/arloliu/xport/validate"
)

func exampleDM(t *testing.T) *dataset.Dataset {
	t.Helper()

	ds := dataset.New("DM",
		dataset.CharacterColumn("USUBJID", "Unique Subject Identifier", 20),
		dataset.NumericColumn("AGE", "Age"),
	)
	require.NoError(t, ds.AddRow(dataset.Character("STUDY-001"), dataset.Numeric(35.0)))

	return ds
}

func TestWriteRead_ExampleScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dm.xpt")
	require.NoError(t, Write(path, exampleDM(t), format.V5))

	ds, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.NumRows())
	assert.Len(t, ds.Columns, 2)

	age, ok := ds.Value(0, 1).Float()
	require.True(t, ok)
	assert.InDelta(t, 35.0, age, 1e-12)

	id, ok := ds.Value(0, 0).Str()
	require.True(t, ok)
	assert.Equal(t, "STUDY-001", id)
}

func TestReadStreaming_MatchesBatch(t *testing.T) {
	ds := exampleDM(t)
	for i := 0; i < 50; i++ {
		require.NoError(t, ds.AddRow(dataset.Character("STUDY-100"), dataset.Numeric(float64(i)/3)))
	}

	for _, v := range []format.Version{format.V5, format.V8} {
		t.Run(v.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dm.xpt")
			require.NoError(t, Write(path, ds, v))

			batch, err := Read(path)
			require.NoError(t, err)

			f, err := ReadStreaming(path)
			require.NoError(t, err)
			defer func() { require.NoError(t, f.Close()) }()

			i := 0
			for row, err := range f.All() {
				require.NoError(t, err)
				require.Less(t, i, len(batch.Rows))
				assert.True(t, batch.Rows[i].Equal(row), "row %d", i+1)
				i++
			}
			assert.Equal(t, len(batch.Rows), i)
		})
	}
}

func TestReadStreaming_CloseCancels(t *testing.T) {
	ds := exampleDM(t)
	for i := 0; i < 100; i++ {
		require.NoError(t, ds.AddRow(dataset.Character("STUDY-100"), dataset.Numeric(float64(i))))
	}

	for _, v := range []format.Version{format.V5, format.V8} {
		t.Run(v.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dm.xpt")
			require.NoError(t, Write(path, ds, v))

			f, err := ReadStreaming(path)
			require.NoError(t, err)

			var rows int
			for f.Next() {
				rows++
				if rows == 10 {
					require.NoError(t, f.Close())
				}
			}

			assert.Equal(t, 10, rows)
			require.ErrorIs(t, f.Err(), errs.ErrReaderClosed)
			require.NoError(t, f.Close())
		})
	}
}

func TestWrite_RefusedLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.xpt")

	ds := exampleDM(t)
	ds.Name = "TOOLONGNAME"

	err := Write(path, ds, format.V5)
	require.ErrorIs(t, err, errs.ErrValidationFailed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no file and no temporary file may remain")
}

func TestWriteStreaming(t *testing.T) {
	ds := exampleDM(t)
	for i := 0; i < 10; i++ {
		require.NoError(t, ds.AddRow(dataset.Character("STUDY-200"), dataset.Numeric(float64(i))))
	}

	t.Run("V8CountRecorded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dm.xpt")
		n, err := WriteStreaming(path, ds.Member, format.V8, slices.Values(ds.Rows))
		require.NoError(t, err)
		assert.Equal(t, int64(11), n)

		f, err := ReadStreaming(path)
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		assert.Equal(t, int64(11), f.ObservationCount())

		var rows []dataset.Row
		for f.Next() {
			rows = append(rows, f.Row())
		}
		require.NoError(t, f.Err())
		require.Len(t, rows, 11)
	})

	t.Run("RejectedRowLeavesNoFile", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "dm.xpt")

		rows := append(slices.Clone(ds.Rows), dataset.Row{dataset.Numeric(1)})
		_, err := WriteStreaming(path, ds.Member, format.V5, slices.Values(rows))
		require.ErrorIs(t, err, errs.ErrValidationFailed)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestReadMembers(t *testing.T) {
	ae := dataset.New("AE", dataset.CharacterColumn("AETERM", "", 8))
	require.NoError(t, ae.AddRow(dataset.Character("NAUSEA")))

	path := filepath.Join(t.TempDir(), "lib.xpt")
	require.NoError(t, WriteLibrary(path, []*dataset.Dataset{exampleDM(t), ae}, format.V5))

	members, err := ReadMembers(path)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "DM", members[0].Name)
	assert.Equal(t, "AE", members[1].Name)
}

func TestRead_FileNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.xpt")

	_, err := Read(missing)
	require.ErrorIs(t, err, errs.ErrFileNotFound)

	_, err = ReadStreaming(missing)
	require.ErrorIs(t, err, errs.ErrFileNotFound)
}

func TestValidate(t *testing.T) {
	ds := exampleDM(t)
	ds.Rows = nil
	require.NoError(t, ds.AddColumn(dataset.NumericColumn("TENCHARNAM", "")))

	assert.False(t, Validate(ds, format.V8, validate.ModeStandard).HasErrors())
	assert.True(t, Validate(ds, format.V5, validate.ModeStandard).HasErrors())
	assert.True(t, Validate(exampleDM(t), format.V8, validate.ModeFDA).HasErrors())
}

func TestWrite_Compressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dm.xpt.zst")
	require.NoError(t, Write(path, exampleDM(t), format.V5, transport.WithCompression(format.CompressionZstd)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x28, 0xB5, 0x2F, 0xFD}, raw[:4])

	f, err := ReadStreaming(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, format.CompressionZstd, f.Compression())
}
