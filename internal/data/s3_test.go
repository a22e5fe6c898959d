package data

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livingdw67/ira-analysis/internal/resolve"
)

// fakeS3 serves one bucket from a key -> body map with S3 prefix and
// delimiter semantics.
type fakeS3 struct {
	bucket  string
	objects map[string]string
	calls   int
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.calls++
	if aws.ToString(in.Bucket) != f.bucket {
		return nil, errors.New("NoSuchBucket")
	}
	prefix := aws.ToString(in.Prefix)
	delim := aws.ToString(in.Delimiter)
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{}
	seen := map[string]bool{}
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		rest := strings.TrimPrefix(k, prefix)
		if delim != "" {
			if i := strings.Index(rest, delim); i >= 0 {
				cp := prefix + rest[:i+1]
				if !seen[cp] {
					seen[cp] = true
					out.CommonPrefixes = append(out.CommonPrefixes, types.CommonPrefix{Prefix: aws.String(cp)})
				}
				continue
			}
		}
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
		if in.MaxKeys != nil && int32(len(out.Contents)) >= *in.MaxKeys {
			break
		}
	}
	return out, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok || aws.ToString(in.Bucket) != f.bucket {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte(body)))}, nil
}

const byState = "resstock/2021/timeseries_individual_buildings/by_state"

func newFake() *fakeS3 {
	return &fakeS3{bucket: "oedi", objects: map[string]string{
		byState + "/upgrade=0/state=SC/1001-0.parquet": "a",
		byState + "/upgrade=0/state=SC/2002-0.parquet": "b",
		byState + "/upgrade=0/state=GA/3003-0.parquet": "c",
		byState + "/README.md":                          "readme",
	}}
}

func TestSplitBucketKey(t *testing.T) {
	b, k, err := splitBucketKey("s3://oedi/a/b/")
	require.NoError(t, err)
	assert.Equal(t, "oedi", b)
	assert.Equal(t, "a/b", k)

	b, k, err = splitBucketKey("oedi")
	require.NoError(t, err)
	assert.Equal(t, "oedi", b)
	assert.Empty(t, k)

	_, _, err = splitBucketKey("/")
	assert.Error(t, err)
}

func TestS3StoreExists(t *testing.T) {
	s := NewS3StoreWithClient(newFake())
	ctx := context.Background()

	ok, err := s.Exists(ctx, "oedi/"+byState+"/upgrade=0/state=SC")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(ctx, "oedi/"+byState+"/state=SC/upgrade=0")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Exists(ctx, "oedi/"+byState+"/README.md")
	require.NoError(t, err)
	assert.True(t, ok)

	// a key prefix that is not a whole path segment does not count
	ok, err = s.Exists(ctx, "oedi/"+byState+"/READ")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Exists(ctx, "other/"+byState)
	assert.Error(t, err)
}

func TestS3StoreListAndGlob(t *testing.T) {
	s := NewS3StoreWithClient(newFake())
	ctx := context.Background()

	list, err := s.List(ctx, "s3://oedi/"+byState)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"oedi/" + byState + "/README.md",
		"oedi/" + byState + "/upgrade=0",
	}, list)

	files, err := s.Glob(ctx, "oedi/"+byState+"/upgrade=0/state=SC", "*2002*.parquet")
	require.NoError(t, err)
	assert.Equal(t, []string{"oedi/" + byState + "/upgrade=0/state=SC/2002-0.parquet"}, files)

	raw, err := s.ReadFile(ctx, files[0])
	require.NoError(t, err)
	assert.Equal(t, "b", string(raw))

	_, err = s.ReadFile(ctx, "oedi/missing")
	assert.Error(t, err)
}

func TestS3StoreBacksResolver(t *testing.T) {
	r := resolve.NewResolver(NewS3StoreWithClient(newFake()), nil)
	res, err := r.Resolve(context.Background(), "oedi/"+byState, resolve.Key{State: "SC", Upgrade: "0"})
	require.NoError(t, err)
	assert.Equal(t, "upgrade_state", res.Variant.Name)

	_, err = r.Resolve(context.Background(), "oedi/"+byState, resolve.Key{State: "NC", Upgrade: "0"})
	var re *resolve.ResolutionError
	require.ErrorAs(t, err, &re)
	assert.Len(t, re.Attempted, 2)
	assert.Contains(t, re.Listing, "oedi/"+byState+"/upgrade=0")
}
