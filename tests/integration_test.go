package tests

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/usemodel/internal/batch"
	"github.com/agentic-research/usemodel/internal/config"
	"github.com/agentic-research/usemodel/internal/pattern"
	"github.com/agentic-research/usemodel/internal/rewrite"
	"github.com/agentic-research/usemodel/internal/writeback"
)

// testFixture is a small React project on disk with a runner wired to it.
type testFixture struct {
	root   string
	runner *batch.Runner
}

var project = map[string]string{
	"src/store.ts": `import { createStore } from 'btrip';
export default createStore({ counter: {}, session: {} });
export { useModel, useModelState } from './hooks';
`,
	"src/Counter.tsx": `import React from 'react';
import { useModel } from './store';

export function Counter(): JSX.Element {
  const [{ count = 0, limits: { max } = {} }, actions] = useModel('counter');
  return <button onClick={() => actions.inc()} disabled={count >= max}>{count}</button>;
}
`,
	"src/Profile.jsx": `import store, { useModelState } from './store';

export default function Profile() {
  const { user: { name, email } } = useModelState('session');
  const { token } = useModelState('session');
  return <p title={token}>{name} {email}</p>;
}
`,
	"src/legacy/Broken.js": `import { useModelState } from '../store';
export const pick = () => {
  const { ...everything } = useModelState('session');
  return everything;
};
`,
	"src/util.mjs": "export const noop = () => {};\n",
	"node_modules/btrip/index.js": "const { a } = useModelState('x');\n",
}

func setup(t *testing.T) *testFixture {
	t.Helper()

	root := t.TempDir()
	for name, content := range project {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	cfg := config.Default()
	cfg.Workers = 4
	return &testFixture{
		root: root,
		runner: &batch.Runner{
			FS:       osfs.New(root),
			Rewriter: rewrite.New(rewrite.Options{StoreName: cfg.StoreName}),
			Config:   cfg,
			Write:    true,
		},
	}
}

func (f *testFixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}

func TestIntegration_RewriteProject(t *testing.T) {
	fix := setup(t)

	rep, err := fix.runner.Run(context.Background(), []string{"."})
	require.NoError(t, err)

	var paths []string
	for _, f := range rep.Files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"src/Counter.tsx", "src/Profile.jsx", "src/legacy/Broken.js", "src/store.ts", "src/util.mjs"}, paths)
	assert.Equal(t, 3, rep.Sites())

	assert.Equal(t, `import React from 'react';
import __btripStore__, { useModel } from './store';

export function Counter(): JSX.Element {
  const [{ count = 0, max }, actions] = [__btripStore__.useSelector(({ counter: counter }) => ({ count: counter?.count, max: counter?.limits?.max })), __btripStore__.dispatch.counter];
  return <button onClick={() => actions.inc()} disabled={count >= max}>{count}</button>;
}
`, fix.read(t, "src/Counter.tsx"))

	assert.Equal(t, `import store, { useModelState } from './store';

export default function Profile() {
  const { name, email } = store.useSelector(({ session: session }) => ({ name: session?.user?.name, email: session?.user?.email }));
  const { token } = store.useSelector(({ session: session }) => ({ token: session?.token }));
  return <p title={token}>{name} {email}</p>;
}
`, fix.read(t, "src/Profile.jsx"))

	// Untouched files and excluded directories keep their bytes.
	for _, name := range []string{"src/legacy/Broken.js", "src/store.ts", "src/util.mjs", "node_modules/btrip/index.js"} {
		assert.Equal(t, project[name], fix.read(t, name), name)
	}

	failed := rep.Failed()
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0].Err, pattern.ErrRestBinding)
}

func TestIntegration_OutputParses(t *testing.T) {
	fix := setup(t)

	rep, err := fix.runner.Run(context.Background(), []string{"src"})
	require.NoError(t, err)
	for _, f := range rep.Changed() {
		assert.NoError(t, writeback.Validate(f.Output, f.Path), f.Path)
	}
}

func TestIntegration_SecondRunIsNoop(t *testing.T) {
	fix := setup(t)

	_, err := fix.runner.Run(context.Background(), []string{"src"})
	require.NoError(t, err)
	first := fix.read(t, "src/Counter.tsx")

	rep, err := fix.runner.Run(context.Background(), []string{"src"})
	require.NoError(t, err)
	assert.Empty(t, rep.Changed())
	assert.Equal(t, first, fix.read(t, "src/Counter.tsx"))
}

func TestIntegration_PreservesFileMode(t *testing.T) {
	fix := setup(t)
	path := filepath.Join(fix.root, "src", "Profile.jsx")
	require.NoError(t, os.Chmod(path, 0o600))

	_, err := fix.runner.Run(context.Background(), []string{"src/Profile.jsx"})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.Contains(t, fix.read(t, "src/Profile.jsx"), "store.useSelector")
}

func TestIntegration_ManyFilesConcurrently(t *testing.T) {
	fix := setup(t)
	for i := range 50 {
		src := fmt.Sprintf("import { useModelState } from './store';\nexport const v%d = () => { const { a%d } = useModelState('m%d'); return a%d; };\n", i, i, i, i)
		require.NoError(t, os.WriteFile(filepath.Join(fix.root, "src", fmt.Sprintf("gen%02d.js", i)), []byte(src), 0o644))
	}

	rep, err := fix.runner.Run(context.Background(), []string{"src"})
	require.NoError(t, err)
	assert.Len(t, rep.Changed(), 52)

	for i := range 50 {
		got := fix.read(t, fmt.Sprintf("src/gen%02d.js", i))
		want := fmt.Sprintf("__btripStore__.useSelector(({ m%d: m%d }) => ({ a%d: m%d?.a%d }))", i, i, i, i, i)
		assert.True(t, strings.Contains(got, want), got)
	}
}
