package app

import "testing"

func TestClassify(t *testing.T) {
	tt := []struct {
		Name string
		Data []byte
		Want Bucket
	}{
		{"Empty", nil, BucketLegacy},
		{"NoMarkers", classFile("stringLookupMap"), BucketLegacy},
		{"DefaultLookups", classFile("defaultStringLookups"), BucketModern},
		{"Base64Lookup", classFile("base64StringLookup"), BucketVulnerable},
		{"BothMarkers", classFile("base64StringLookup", "defaultStringLookups"), BucketModern},
		{"BothMarkersReversed", classFile("defaultStringLookups", "base64StringLookup"), BucketModern},
		{"MarkerPrefixOnly", classFile("defaultStringLookup", "base64String"), BucketLegacy},
		{"Bare", []byte("base64StringLookup"), BucketVulnerable},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			if got := Classify(tc.Data); got != tc.Want {
				t.Errorf("got: %v, want: %v", got, tc.Want)
			}
		})
	}
}

func TestIsTargetClass(t *testing.T) {
	match := []string{
		"org/apache/commons/text/lookup/StringLookupFactory.class",
		"StringLookupFactory.class",
		"shaded/StringLookupFactory.class",
	}
	noMatch := []string{
		"org/apache/commons/text/lookup/StringLookupFactory.java",
		"org/apache/commons/text/lookup/StringLookupFactory.class/",
		"org/apache/commons/text/lookup/stringlookupfactory.class",
		"org/apache/commons/text/lookup/StringLookupFactory$1.class",
	}

	for _, name := range match {
		if !IsTargetClass(name) {
			t.Errorf("%q: expected match", name)
		}
	}
	for _, name := range noMatch {
		if IsTargetClass(name) {
			t.Errorf("%q: unexpected match", name)
		}
	}
}
