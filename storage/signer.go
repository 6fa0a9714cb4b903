package storage

import (
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

// SignedURLTTL is how long a signed material URL stays valid.
const SignedURLTTL = 300 * time.Second

var ErrInvalidSignature = errors.New("invalid or expired signature")

// Grant is what a signed URL allows: reading one object, optionally as a
// download with a suggested file name.
type Grant struct {
	Bucket   string
	Path     string
	Download string
}

// Signer issues and verifies time-limited object URLs.
type Signer struct {
	secret  []byte
	baseURL string
	now     func() time.Time
}

func NewSigner(secret, baseURL string) *Signer {
	return &Signer{secret: []byte(secret), baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

// SignURL returns an absolute URL for the object that expires after ttl.
func (s *Signer) SignURL(bucket, path string, ttl time.Duration, download string) (string, error) {
	if bucket == "" || path == "" {
		return "", ErrInvalidKey
	}
	now := s.now()
	claims := jwt.MapClaims{
		"bkt": bucket,
		"obj": path,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if download != "" {
		claims["dl"] = download
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing object url")
	}

	escaped := make([]string, 0, strings.Count(path, "/")+1)
	for _, part := range strings.Split(path, "/") {
		escaped = append(escaped, url.PathEscape(part))
	}
	return s.baseURL + "/storage/v1/object/sign/" + url.PathEscape(bucket) + "/" +
		strings.Join(escaped, "/") + "?token=" + url.QueryEscape(token), nil
}

// Verify checks token against the requested object.
func (s *Signer) Verify(token, bucket, path string) (*Grant, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSignature
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidSignature
	}
	grant := &Grant{}
	grant.Bucket, _ = claims["bkt"].(string)
	grant.Path, _ = claims["obj"].(string)
	grant.Download, _ = claims["dl"].(string)
	if grant.Bucket != bucket || grant.Path != path {
		return nil, ErrInvalidSignature
	}
	return grant, nil
}
