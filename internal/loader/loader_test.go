package loader

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enhance "github.com/vango-dev/enhance"
	"github.com/vango-dev/enhance/internal/errors"
)

const headerScript = `
return function(ctx)
  return ctx.html(
    "<style>h1 { color: red; }</style>",
    "<h1><slot></slot></h1>"
  )
end`

func TestTagFromName(t *testing.T) {
	assert.Equal(t, "my-header", TagFromName("components/My-Header.lua"))
	assert.Equal(t, "", TagFromName("components/readme.md"))
	assert.Equal(t, "", TagFromName("components/"))
}

func TestFSSource(t *testing.T) {
	fsys := fstest.MapFS{
		"components/my-header.lua":     {Data: []byte(headerScript)},
		"components/notes.txt":         {Data: []byte("ignored")},
		"components/nested/x-deep.lua": {Data: []byte(headerScript)},
	}

	scripts, err := FSSource{FS: fsys, Dir: "components"}.Scripts(context.Background())
	require.NoError(t, err)
	require.Len(t, scripts, 1)
	assert.Equal(t, "my-header", scripts[0].Tag)
	assert.Equal(t, "components/my-header.lua", scripts[0].Origin)
	assert.Equal(t, headerScript, scripts[0].Code)
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "my-header.lua"), []byte(headerScript), 0o644))

	src := DirSource{Dir: dir}
	scripts, err := src.Scripts(context.Background())
	require.NoError(t, err)
	require.Len(t, scripts, 1)
	assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "my-header.lua")), scripts[0].Origin)
	assert.Equal(t, dir, src.Name())
}

func TestMapSourceOrder(t *testing.T) {
	scripts, err := MapSource{"x-b": "b", "X-A": "a"}.Scripts(context.Background())
	require.NoError(t, err)
	require.Len(t, scripts, 2)
	assert.Equal(t, "x-a", scripts[0].Tag)
	assert.Equal(t, "x-b", scripts[1].Tag)
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{"c/my-header.lua": {Data: []byte(headerScript)}}

	reg, err := Load(context.Background(),
		FSSource{FS: fsys, Dir: "c"},
		MapSource{"my-footer": `return function(ctx) return "<footer></footer>" end`},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"my-footer", "my-header"}, reg.Tags())
}

func TestLoadDuplicateAcrossSources(t *testing.T) {
	fsys := fstest.MapFS{"c/my-header.lua": {Data: []byte(headerScript)}}

	_, err := Load(context.Background(),
		FSSource{FS: fsys, Dir: "c"},
		MapSource{"my-header": headerScript},
	)
	require.Error(t, err)

	var ee *errors.EnhanceError
	require.True(t, stderrors.As(err, &ee))
	assert.Equal(t, "E202", ee.Code)
}

func TestLoadInvalidTag(t *testing.T) {
	_, err := Load(context.Background(), MapSource{"header": headerScript})

	var ee *errors.EnhanceError
	require.True(t, stderrors.As(err, &ee))
	assert.Equal(t, "E203", ee.Code)
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := Load(context.Background(), FSSource{FS: fstest.MapFS{}, Dir: "missing"})

	var ee *errors.EnhanceError
	require.True(t, stderrors.As(err, &ee))
	assert.Equal(t, "E200", ee.Code)
}

func TestLoadedComponentsRender(t *testing.T) {
	reg, err := Load(context.Background(), MapSource{
		"my-header": headerScript,
		"my-greeting": `
return function(ctx)
  local name = "stranger"
  if ctx.state.store then name = ctx.state.store.name end
  return ctx.html("<p>Hello ", ctx.escape(name), "</p>")
end`,
	})
	require.NoError(t, err)

	r := enhance.New(reg)
	res, err := r.Process(context.Background(),
		"<my-header>Hello World</my-header><my-greeting></my-greeting>",
		map[string]any{"name": "Khalid"})
	require.NoError(t, err)

	assert.Equal(t,
		`<my-header enhanced="✨"><h1>Hello World</h1></my-header>`+
			`<my-greeting enhanced="✨"><p>Hello Khalid</p></my-greeting>`,
		res.Body)
	assert.Contains(t, res.Styles, "my-header h1 {")
}

// =============================================================================
// S3
// =============================================================================

type fakeS3 struct {
	pages   [][]string
	objects map[string]string
	calls   int
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.calls++
	page := 0
	if in.ContinuationToken != nil {
		page = len(aws.ToString(in.ContinuationToken))
	}

	out := &s3.ListObjectsV2Output{}
	for _, key := range f.pages[page] {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
		}
	}
	if page+1 < len(f.pages) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(strings.Repeat("x", page+1))
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	code, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, stderrors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(code))}, nil
}

func TestS3Source(t *testing.T) {
	client := &fakeS3{
		pages: [][]string{
			{"prod/my-header.lua", "prod/readme.md"},
			{"prod/my-footer.lua"},
		},
		objects: map[string]string{
			"prod/my-header.lua": headerScript,
			"prod/my-footer.lua": `return function(ctx) return "<footer></footer>" end`,
		},
	}

	src := S3Source{Client: client, Bucket: "site", Prefix: "prod/"}
	assert.Equal(t, "s3://site/prod/", src.Name())

	scripts, err := src.Scripts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls)
	require.Len(t, scripts, 2)
	assert.Equal(t, "my-header", scripts[0].Tag)
	assert.Equal(t, "s3://site/prod/my-header.lua", scripts[0].Origin)
	assert.Equal(t, "my-footer", scripts[1].Tag)

	reg, err := Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())
}

func TestS3SourceErrors(t *testing.T) {
	client := &fakeS3{pages: [][]string{{"my-header.lua"}}, objects: map[string]string{}}

	_, err := S3Source{Client: client, Bucket: "site"}.Scripts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NoSuchKey")
}

func TestS3SourceSizeLimit(t *testing.T) {
	client := &fakeS3{
		pages:   [][]string{{"my-header.lua"}},
		objects: map[string]string{"my-header.lua": headerScript},
	}

	_, err := S3Source{Client: client, Bucket: "site", MaxSize: 10}.Scripts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "larger than 10 bytes")
}
