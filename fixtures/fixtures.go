// Package fixtures holds canned response bodies substituted for live network
// calls, and the Loader that resolves them by file name.
//
// A fixture must mirror the suggestion endpoint's response shape: a JSON
// object with a "hits" array whose entries carry a "url" string. Anything
// else is rejected when it is loaded, before a browser is touched.
package fixtures

import (
	"embed"
	"io/fs"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Names of the bundled fixtures.
const (
	MayoSuggestedDestinations  = "mayo_suggested_destinations_post_response.json"
	EmptySuggestedDestinations = "empty_suggested_destinations_post_response.json"
)

var (
	// ErrFixtureNotFound is returned when no fixture has the requested name.
	ErrFixtureNotFound = errors.New("fixture not found")

	// ErrInvalidFixture is returned when a fixture does not match the endpoint's shape.
	ErrInvalidFixture = errors.New("invalid fixture")
)

//go:embed *.json
var bundled embed.FS

// Destination is one suggested-destination hit.
type Destination struct {
	ID     string
	Title  string
	County string
	URL    string
}

// Loader resolves fixture names against a file system.
type Loader struct {
	fsys fs.FS
}

// NewLoader returns a Loader reading from fsys.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// Bundled returns a Loader over the fixtures compiled into this package.
func Bundled() *Loader {
	return NewLoader(bundled)
}

// Dir returns a Loader over a directory on disk.
func Dir(dir string) *Loader {
	return NewLoader(os.DirFS(dir))
}

// Load returns the validated body of the named fixture.
func (l *Loader) Load(name string) ([]byte, error) {
	if name == "" || path.Base(name) != name {
		return nil, errors.Wrapf(ErrFixtureNotFound, "bad fixture name %q", name)
	}

	body, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrFixtureNotFound, "%s", name)
		}
		return nil, errors.Wrapf(err, "read fixture %s", name)
	}

	if err := Validate(body); err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	return body, nil
}

// Destinations loads the named fixture and decodes its hits.
func (l *Loader) Destinations(name string) ([]Destination, error) {
	body, err := l.Load(name)
	if err != nil {
		return nil, err
	}
	return ParseDestinations(body)
}

// Validate checks that body has the suggestion endpoint's response shape.
func Validate(body []byte) error {
	if !gjson.ValidBytes(body) {
		return errors.Wrap(ErrInvalidFixture, "not valid JSON")
	}
	hits := gjson.GetBytes(body, "hits")
	if !hits.IsArray() {
		return errors.Wrap(ErrInvalidFixture, `missing "hits" array`)
	}

	for i, hit := range hits.Array() {
		if u := hit.Get("url"); u.Type != gjson.String || u.Str == "" {
			return errors.Wrapf(ErrInvalidFixture, `hits[%d] has no "url"`, i)
		}
	}
	return nil
}

// ParseDestinations decodes the hits of a suggestion response body.
func ParseDestinations(body []byte) ([]Destination, error) {
	if err := Validate(body); err != nil {
		return nil, err
	}

	hits := gjson.GetBytes(body, "hits").Array()
	out := make([]Destination, 0, len(hits))
	for _, h := range hits {
		out = append(out, Destination{
			ID:     h.Get("id").String(),
			Title:  h.Get("title").String(),
			County: h.Get("county").String(),
			URL:    h.Get("url").String(),
		})
	}
	return out, nil
}
