package mcpserver

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/usemodel/internal/rewrite"
)

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return tc.Text
}

func TestNew_RegistersTools(t *testing.T) {
	s := New(rewrite.New(rewrite.Options{}), "test")
	tools := s.ListTools()
	assert.Contains(t, tools, "rewrite_source")
	assert.Contains(t, tools, "check_source")
}

func TestRewriteSource(t *testing.T) {
	h := &handlers{rw: rewrite.New(rewrite.Options{StoreName: "store"})}

	res, err := h.rewriteSource(context.Background(), call(map[string]any{
		"source": "import { useModelState } from './s';\nconst { a } = useModelState('m');\n",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t,
		"import store, { useModelState } from './s';\nconst { a } = store.useSelector(({ m: m }) => ({ a: m?.a }));\n",
		text(t, res))
}

func TestRewriteSource_Abandoned(t *testing.T) {
	h := &handlers{rw: rewrite.New(rewrite.Options{})}

	res, err := h.rewriteSource(context.Background(), call(map[string]any{
		"source":   "const { ...a } = useModelState('m');\n",
		"filename": "a.ts",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "a.ts:1:9: error: rest bindings are not supported")
}

func TestRewriteSource_MissingSource(t *testing.T) {
	h := &handlers{rw: rewrite.New(rewrite.Options{})}

	res, err := h.rewriteSource(context.Background(), call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestCheckSource(t *testing.T) {
	h := &handlers{rw: rewrite.New(rewrite.Options{})}

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"unchanged", "export const x = 1;\n", "input.js: unchanged\n"},
		{"one site", "import { useModel } from './s';\nconst [{ a }] = useModel('m');\n", "input.js: would rewrite 1 call site\n"},
		{"two sites", "import { useModel } from './s';\nconst [{ a }] = useModel('m');\nconst { b } = useModelState('n');\n", "input.js: would rewrite 2 call sites\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.checkSource(context.Background(), call(map[string]any{"source": tt.source}))
			require.NoError(t, err)
			assert.False(t, res.IsError)
			assert.Equal(t, tt.want, text(t, res))
		})
	}
}
