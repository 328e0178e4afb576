package media

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/google/uuid"
)

// Upload kinds, used as the first key segment.
const (
	KindAvatar = "avatars"
	KindPost   = "posts"
)

var (
	ErrInvalidKey       = fmt.Errorf("%w: invalid media key", common.ErrorValidation)
	ErrInvalidFilename  = fmt.Errorf("%w: invalid file name", common.ErrorValidation)
	ErrExtensionDenied  = fmt.Errorf("%w: file type not allowed", common.ErrorValidation)
	ErrUnknownKind      = errors.New("unknown upload kind")
	ErrForeignReference = errors.New("media url outside upload prefix")
)

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

var deniedExt = map[string]struct{}{
	".exe": {}, ".bat": {}, ".cmd": {}, ".com": {}, ".msi": {}, ".scr": {},
	".dll": {}, ".so": {}, ".dylib": {}, ".jar": {}, ".apk": {},
	".sh": {}, ".bash": {}, ".zsh": {}, ".ps1": {}, ".vbs": {},
	".js": {}, ".mjs": {}, ".php": {}, ".py": {}, ".pl": {}, ".rb": {}, ".cgi": {},
	".html": {}, ".htm": {}, ".xhtml": {}, ".svg": {},
}

// extensionOf validates the client-supplied file name and returns its
// lower-cased extension. Nothing else of the name is kept.
func extensionOf(originalName string) (string, error) {
	if originalName == "" ||
		strings.Contains(originalName, "..") ||
		strings.ContainsRune(originalName, 0) {
		return "", ErrInvalidFilename
	}

	base := filepath.Base(strings.ReplaceAll(originalName, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" || base == ext || !extPattern.MatchString(ext) {
		return "", ErrInvalidFilename
	}
	if _, denied := deniedExt[ext]; denied {
		return "", ErrExtensionDenied
	}
	return ext, nil
}

// newKey returns "<kind>/<yyyymmdd>-<unixnanos>-<uuid><ext>".
func newKey(kind, ext string, now time.Time) string {
	return fmt.Sprintf("%s/%s-%d-%s%s", kind, now.UTC().Format("20060102"), now.UnixNano(), uuid.NewString(), ext)
}

// checkKey rejects keys that are absolute, unclean or escape the root.
func checkKey(key string) error {
	if key == "" ||
		strings.HasPrefix(key, "/") ||
		strings.ContainsRune(key, 0) ||
		strings.Contains(key, `\`) ||
		path.Clean(key) != key ||
		key == "." || strings.HasPrefix(key, "../") || key == ".." {
		return ErrInvalidKey
	}
	return nil
}
