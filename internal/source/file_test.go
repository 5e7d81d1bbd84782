package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, code, filename string) *File {
	t.Helper()
	f, err := Parse(context.Background(), []byte(code), filename)
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func TestLanguageFor(t *testing.T) {
	cases := map[string]string{
		"a.js":      JavaScript,
		"a.jsx":     JavaScript,
		"a.mjs":     JavaScript,
		"a.ts":      TypeScript,
		"a.mts":     TypeScript,
		"a.tsx":     TSX,
		"A.TSX":     TSX,
		"":          JavaScript,
		"README.md": JavaScript,
	}
	for name, want := range cases {
		got, lang := LanguageFor(name)
		assert.Equal(t, want, got, name)
		assert.NotNil(t, lang, name)
	}
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("src/app.jsx"))
	assert.True(t, Supported("src/app.TS"))
	assert.False(t, Supported("src/app.css"))
	assert.False(t, Supported("Makefile"))
}

func TestQuery_CallsInDocumentOrder(t *testing.T) {
	f := parse(t, `const a = foo(1);
function g() { return bar(2); }
`, "a.js")

	matches, err := f.Query(`(call_expression function: (identifier) @callee) @call`)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "foo", f.Text(matches[0]["callee"]))
	assert.Equal(t, "bar(2)", f.Text(matches[1]["call"]))
}

func TestQuery_Invalid(t *testing.T) {
	f := parse(t, `x;`, "a.js")
	_, err := f.Query(`(not_a_node_type) @x`)
	assert.Error(t, err)
}

func TestParse_JSXAndTypeScript(t *testing.T) {
	jsx := parse(t, "const el = <div className=\"x\">{a}</div>;\n", "a.jsx")
	assert.False(t, jsx.Root().HasError())

	ts := parse(t, "const { a }: State = useModelState('main');\n", "a.ts")
	assert.False(t, ts.Root().HasError())
	assert.Equal(t, TypeScript, ts.Language)
}

func TestParse_TypedJavaScriptFallsBackToTSX(t *testing.T) {
	typed := parse(t, "const { a }: State = useModelState('main');\n", "a.js")
	assert.False(t, typed.Root().HasError())
	assert.Equal(t, TSX, typed.Language)

	plain := parse(t, "const { a } = useModelState('main');\n", "a.js")
	assert.Equal(t, JavaScript, plain.Language)

	// Broken in both grammars: the JavaScript tree is kept.
	broken := parse(t, "const { a } = useModelState('main'\n", "a.js")
	assert.True(t, broken.Root().HasError())
	assert.Equal(t, JavaScript, broken.Language)
}

func TestArrayElements(t *testing.T) {
	cases := []struct {
		code string
		want []string
	}{
		{"const [a, b] = x;", []string{"a", "b"}},
		{"const [a] = x;", []string{"a"}},
		{"const [a,] = x;", []string{"a"}},
		{"const [, b] = x;", []string{"", "b"}},
		{"const [{ c }, /* d */ d] = x;", []string{"{ c }", "d"}},
		{"const [] = x;", nil},
	}
	for _, tc := range cases {
		f := parse(t, tc.code, "a.js")
		matches, err := f.Query(`(array_pattern) @p`)
		require.NoError(t, err)
		require.Len(t, matches, 1, tc.code)

		var got []string
		for _, el := range ArrayElements(matches[0]["p"]) {
			got = append(got, f.Text(el))
		}
		assert.Equal(t, tc.want, got, tc.code)
	}
}

func TestNamedChildren_SkipsComments(t *testing.T) {
	f := parse(t, "const { a, /* note */ b } = x;\n", "a.js")
	matches, err := f.Query(`(object_pattern) @p`)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	children := NamedChildren(matches[0]["p"])
	require.Len(t, children, 2)
	assert.Equal(t, "a", f.Text(children[0]))
	assert.Equal(t, "b", f.Text(children[1]))
}
