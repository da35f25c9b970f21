package repl_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"combo/repl"
)

const fixture = `
graph r1 {
  block bb0 entry() {
    %1 = Const.i32 2
    %2 = Const.i32 3
    %3 = Add.i32 %1, %2
    Return %3
  }
}
`

func TestStartStepsToFixedPointThenQuits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "r1.ir")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))

	in := strings.NewReader("run\nquit\n")
	var out bytes.Buffer

	err := repl.Start(in, &out, path)
	require.NoError(t, err)

	text := out.String()
	require.Contains(t, text, "both worklists empty")
	require.Contains(t, text, "rewrite changed graph: true")
	require.Contains(t, text, "Const.i32 5")
}
