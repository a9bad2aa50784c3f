// Package sqpack provides access to sqpack game-data archives.
package sqpack

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDataEnvVar is the environment variable the test harness uses to
// locate an on-disk sqpack root (spec.md §6: "used only by the test
// harness to locate the on-disk data root; not part of the library
// surface").
const TestDataEnvVar = "SQPACK_TEST_DATA"

// TestWith opens an Archive against the directory named by SQPACK_TEST_DATA
// and runs testFn against it, skipping the test when the variable is unset.
func TestWith(t *testing.T, testFn func(*testing.T, *Archive)) {
	root := os.Getenv(TestDataEnvVar)
	if root == "" {
		t.Skipf("%s not set; skipping test requiring real sqpack data", TestDataEnvVar)
	}

	archive, err := Open(root)
	require.NoError(t, err, "failed to open archive at %s", root)
	require.NotNil(t, archive)

	testFn(t, archive)
}
