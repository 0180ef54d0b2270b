package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const showInput = `{"b":[1,-2,1.5],"a":"s"}
null
true
"text"
`

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func executeShow(t *testing.T, rootOpts *RootOptions, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewShowCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestShowStdin(t *testing.T) {
	out, err := executeShow(t, &RootOptions{Format: "text"}, showInput, "--input-format", "json", "-")
	require.NoError(t, err)

	newGoldie(t).Assert(t, "show_stdin", []byte(out))
}

func TestShowVerbosePrefixesKind(t *testing.T) {
	out, err := executeShow(t, &RootOptions{Format: "text", Verbose: true}, showInput, "--input-format", "json", "-")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "1\tmap\t{a:s,b:[1,-2,1.5]}", lines[0])
	assert.Equal(t, "2\tunit\t()", lines[1])
}

func TestShowJSON(t *testing.T) {
	path := writeInput(t, "doc.yaml", "a: [x, y]\n---\nb: 2\n")

	out, err := executeShow(t, &RootOptions{Format: "json"}, "", path)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   ShowResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, path, resp.Data.Source)
	assert.Equal(t, "yaml", resp.Data.Format)
	assert.Equal(t, digestOf("a: [x, y]\n---\nb: 2\n"), resp.Data.Digest)
	assert.Equal(t, []ShowDocument{
		{Kind: "map", Display: "{a:[x,y]}"},
		{Kind: "map", Display: "{b:2}"},
	}, resp.Data.Documents)
}

func TestShowEmptyInput(t *testing.T) {
	out, err := executeShow(t, &RootOptions{Format: "json"}, "", "--input-format", "json", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"documents": []`)
}

func TestShowRequiresExactlyOneFile(t *testing.T) {
	_, err := executeShow(t, &RootOptions{Format: "text"}, "", "a.json", "b.json")
	assert.Error(t, err)
}

func TestShowUnknownExtension(t *testing.T) {
	path := writeInput(t, "doc.txt", "{}")

	_, err := executeShow(t, &RootOptions{Format: "text"}, "", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := executeShow(t, &RootOptions{Format: "text"}, "", "--input-format", "json", path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", out)
}
