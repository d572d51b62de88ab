package cfgsync_test

import (
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/cfgsync/pkg/cfgsync"
	"github.com/arthur-debert/cfgsync/pkg/cfgsync/testutil"
)

func TestInspectAndClassify(t *testing.T) {
	h := testutil.NewMemFSTestHelper(t)
	h.WriteFile(home("file"), "x")
	h.Mkdir(home("dir"))
	h.Symlink(home("file"), home("link-to-file"))
	h.Symlink(home("dir"), home("link-to-dir"))
	h.Symlink(home("missing"), home("broken"))

	testCases := []struct {
		name      string
		state     cfgsync.FileState
		kind      cfgsync.EntryKind
		present   bool
		wantError bool
	}{
		{"file", cfgsync.StateRegularFile, cfgsync.KindFile, true, false},
		{"dir", cfgsync.StateDirectory, cfgsync.KindFolder, true, false},
		{"link-to-file", cfgsync.StateSymlink, cfgsync.KindFile, true, false},
		{"link-to-dir", cfgsync.StateSymlink, cfgsync.KindFolder, true, false},
		{"broken", cfgsync.StateBrokenSymlink, cfgsync.KindLink, false, false},
		{"missing", cfgsync.StateAbsent, 0, false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			state := cfgsync.Inspect(h.Ops(), home(tc.name))
			assert.Equal(t, tc.state, state)
			assert.Equal(t, tc.present, state.Present())

			kind, err := cfgsync.Classify(h.Ops(), home(tc.name))
			if tc.wantError {
				var unsupported *cfgsync.UnsupportedEntryError
				require.True(t, errors.As(err, &unsupported))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.kind, kind)
		})
	}
}

func TestInspectSpecialFile(t *testing.T) {
	h := testutil.NewRealFSTestHelper(t)
	fifo := filepath.Join(h.Home(), "pipe")
	h.MakeFifo(fifo)

	assert.Equal(t, cfgsync.StateSpecial, cfgsync.Inspect(h.Ops(), fifo))
	_, err := cfgsync.Classify(h.Ops(), fifo)
	var unsupported *cfgsync.UnsupportedEntryError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "unsupported file: "+fifo, err.Error())
}

func TestEntryKindString(t *testing.T) {
	assert.Equal(t, "file", cfgsync.KindFile.String())
	assert.Equal(t, "folder", cfgsync.KindFolder.String())
	assert.Equal(t, "link", cfgsync.KindLink.String())
	assert.Equal(t, "broken symlink", cfgsync.StateBrokenSymlink.String())
}
