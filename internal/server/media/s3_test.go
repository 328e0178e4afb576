package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophsocial/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectAPI struct {
	putKey    string
	putBody   string
	deleteKey string
	err       error
}

func (f *fakeObjectAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.putKey = aws.ToString(in.Key)
	b, _ := io.ReadAll(in.Body)
	f.putBody = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleteKey = aws.ToString(in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type fakePresign struct {
	url string
	err error
}

func (f *fakePresign) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: f.url + "/" + aws.ToString(in.Key), Method: http.MethodGet}, nil
}

func TestS3Storage_SaveAndDelete(t *testing.T) {
	api := &fakeObjectAPI{}
	s := &S3Storage{bucket: "media", api: api, presign: &fakePresign{}}

	// a plain io.Reader is buffered into a seekable body
	require.NoError(t, s.Save(context.Background(), "posts/a.png", io.MultiReader(strings.NewReader("abc"))))
	assert.Equal(t, "posts/a.png", api.putKey)
	assert.Equal(t, "abc", api.putBody)

	require.NoError(t, s.Delete(context.Background(), "posts/a.png"))
	assert.Equal(t, "posts/a.png", api.deleteKey)

	assert.ErrorIs(t, s.Save(context.Background(), "../x", strings.NewReader("")), ErrInvalidKey)
}

func TestS3Storage_SaveError(t *testing.T) {
	s := &S3Storage{bucket: "media", api: &fakeObjectAPI{err: errors.New("s3 down")}}
	require.EqualError(t, s.Save(context.Background(), "posts/a.png", strings.NewReader("x")), "s3 down")
}

func TestS3Storage_HandlerRedirects(t *testing.T) {
	s := &S3Storage{bucket: "media", api: &fakeObjectAPI{}, presign: &fakePresign{url: "http://minio.test/media"}}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/avatars/a.png", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://minio.test/media/avatars/a.png", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/avatars/a.png", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestS3Storage_HandlerPresignError(t *testing.T) {
	s := &S3Storage{bucket: "media", presign: &fakePresign{err: errors.New("boom")}}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/avatars/a.png", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestNewS3Storage_ConfiguresClient(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.MediaBackend = config.MediaBackendS3

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "admin", creds.AccessKeyID)

		return aws.Config{
			Region:      lo.Region,
			Credentials: credentials.NewStaticCredentialsProvider("admin", "secretpassword", ""),
		}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(c aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return s3.NewFromConfig(c, optFns...)
	}

	st, err := NewS3Storage(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "http://127.0.0.1:9000/", aws.ToString(opts.BaseEndpoint))

	// presigning is local, no request is sent
	rec := httptest.NewRecorder()
	st.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/p.jpg", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	loc := rec.Header().Get("Location")
	assert.Contains(t, loc, "/media/posts/p.jpg")
	assert.Contains(t, loc, "X-Amz-Signature=")
}

func TestNewS3Storage_LoadError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err := NewS3Storage(context.Background(), &config.Config{})
	require.EqualError(t, err, "no config")
}
