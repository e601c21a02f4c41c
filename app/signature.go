package app

import (
	"bytes"
	"strings"
)

// TargetClass is the class file whose contents reveal the commons-text
// version an archive was built with.
const TargetClass = "StringLookupFactory.class"

var (
	// registered by StringLookupFactory since commons-text 1.10
	markerDefaultLookups = []byte("defaultStringLookups")
	// present from 1.5 up to 1.9
	markerBase64Lookup = []byte("base64StringLookup")
)

// Bucket is the coarse version range a StringLookupFactory class was
// compiled from.
type Bucket int

const (
	BucketNotFound Bucket = iota
	BucketModern
	BucketLegacy
	BucketVulnerable
)

func (b Bucket) String() string {
	switch b {
	case BucketNotFound:
		return "not-found"
	case BucketModern:
		return "1.10-or-above"
	case BucketLegacy:
		return "1.4-or-below"
	case BucketVulnerable:
		return "1.5-to-1.9"
	}

	return "unknown"
}

// Classify returns the version bucket of the class file contents in data.
// The checks are ordered; a class with both markers is 1.10 or above.
func Classify(data []byte) Bucket {
	if bytes.Contains(data, markerDefaultLookups) {
		return BucketModern
	}

	if bytes.Contains(data, markerBase64Lookup) {
		return BucketVulnerable
	}

	return BucketLegacy
}

// IsTargetClass reports whether the entry name refers to StringLookupFactory.
func IsTargetClass(name string) bool {
	return strings.HasSuffix(name, TargetClass)
}
