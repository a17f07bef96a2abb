package invite

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/nhle/teaminbox/internal/model"
)

// ErrNoToken is returned when neither the action URL nor the related id
// carries an invitation token.
var ErrNoToken = errors.New("no invitation token in notification")

// acceptURLPattern captures the token segment of .../invitation/accept/<token>.
var acceptURLPattern = regexp.MustCompile(`/invitation/accept/([^/]+)`)

// TokenFromURL extracts the token from an invitation accept URL, decoded
// so callers can escape it again for their own paths. A segment with a
// malformed escape is returned as is. It returns "" when the URL does not
// follow the convention.
func TokenFromURL(actionURL string) string {
	m := acceptURLPattern.FindStringSubmatch(actionURL)
	if len(m) < 2 {
		return ""
	}
	token, err := url.PathUnescape(m[1])
	if err != nil {
		return m[1]
	}
	return token
}

// ResolveToken returns the token used to accept or reject the invitation
// behind n. The action URL is preferred because it may carry a more
// specific token than the related id.
func ResolveToken(n model.Notification) (string, error) {
	if token := TokenFromURL(n.ActionURL); token != "" {
		return token, nil
	}
	if token := strings.TrimSpace(n.RelatedID); token != "" {
		return token, nil
	}
	return "", ErrNoToken
}
