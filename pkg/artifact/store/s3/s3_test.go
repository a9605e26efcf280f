package s3

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidthor/chainctl/pkg/artifact/store"
)

var _ store.Backend = (*Backend)(nil)

func testConfig() map[string]string {
	return map[string]string{
		"bucket":           "chains",
		"region":           "ap-southeast-2",
		"endpoint":         "http://127.0.0.1:9000",
		"force_path_style": "true",
		"access_key":       "test",
		"secret_key":       "test",
	}
}

func TestNewBackend_MissingBucket(t *testing.T) {
	_, err := NewBackend(map[string]string{"region": "us-east-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket")
}

func TestParseOptions(t *testing.T) {
	o, err := parseOptions(map[string]string{"bucket": "chains"})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", o.region)
	assert.False(t, o.pathStyle)

	o, err = parseOptions(testConfig())
	require.NoError(t, err)
	assert.Equal(t, "ap-southeast-2", o.region)
	assert.True(t, o.pathStyle)
	assert.Equal(t, "http://127.0.0.1:9000", o.endpoint)
}

func TestNewBackend(t *testing.T) {
	b, err := NewBackend(testConfig())
	require.NoError(t, err)
	assert.Equal(t, "s3", b.Type())
	assert.Equal(t, "s3://chains/M1.chain", b.Location("M1.chain"))
}

func TestBackend_Prefix(t *testing.T) {
	cfg := testConfig()
	cfg["key"] = "/artifacts/"
	b, err := NewBackend(cfg)
	require.NoError(t, err)

	s3b := b.(*Backend)
	assert.Equal(t, "artifacts/Project/M1.chain", s3b.keys.Key("Project/M1.chain"))
	assert.Equal(t, "s3://chains/artifacts/Project/M1.chain", b.Location("Project/M1.chain"))
}

func TestBackend_Fail(t *testing.T) {
	b, err := NewBackend(testConfig())
	require.NoError(t, err)
	s3b := b.(*Backend)

	assert.NoError(t, s3b.fail("read", "M1.chain", nil))
	assert.ErrorIs(t, s3b.fail("read", "M1.chain", &types.NoSuchKey{}), store.ErrNotFound)
	assert.ErrorIs(t, s3b.fail("stat", "M1.chain", fmt.Errorf("head: %w", &types.NotFound{})), store.ErrNotFound)

	cause := errors.New("access denied")
	err = s3b.fail("write", "M1.chain", cause)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "failed to write s3://chains/M1.chain")
}
