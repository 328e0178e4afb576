package media

import (
	"regexp"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensionOf(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "jpeg", in: "photo.jpg", want: ".jpg"},
		{name: "upper case", in: "IMG_001.PNG", want: ".png"},
		{name: "directories dropped", in: "/home/me/pic.webp", want: ".webp"},
		{name: "windows path", in: `C:\Users\me\pic.gif`, want: ".gif"},
		{name: "empty", in: "", wantErr: ErrInvalidFilename},
		{name: "no extension", in: "photo", wantErr: ErrInvalidFilename},
		{name: "only extension", in: ".png", wantErr: ErrInvalidFilename},
		{name: "traversal", in: "../../etc/passwd.png", wantErr: ErrInvalidFilename},
		{name: "nul byte", in: "a.png\x00.exe", wantErr: ErrInvalidFilename},
		{name: "odd extension chars", in: "a.p-g", wantErr: ErrInvalidFilename},
		{name: "extension too long", in: "a.abcdefghi", wantErr: ErrInvalidFilename},
		{name: "executable", in: "setup.EXE", wantErr: ErrExtensionDenied},
		{name: "html", in: "page.html", wantErr: ErrExtensionDenied},
		{name: "svg", in: "logo.svg", wantErr: ErrExtensionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extensionOf(tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.ErrorIs(t, err, common.ErrorValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewKey(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 42, time.UTC)

	k1 := newKey(KindPost, ".jpg", now)
	k2 := newKey(KindPost, ".jpg", now)

	assert.Regexp(t, regexp.MustCompile(`^posts/20261019-\d+-[0-9a-f-]{36}\.jpg$`), k1)
	assert.NotEqual(t, k1, k2)
	assert.NoError(t, checkKey(k1))
}

func TestCheckKey(t *testing.T) {
	for _, bad := range []string{"", "/abs.png", "../x.png", "..", "a/../../x.png", "a//b.png", `a\b.png`, "a/./b.png", "."} {
		assert.ErrorIs(t, checkKey(bad), ErrInvalidKey, bad)
	}
	assert.NoError(t, checkKey("avatars/x.png"))
}
