package app

import (
	"github.com/fatih/color"
)

type Status int

const (
	StatusInconsistent Status = iota
	StatusVulnerable
	StatusMitigated
	StatusFixed
)

func (s Status) String() string {
	switch s {
	case StatusVulnerable:
		return "vulnerable"
	case StatusMitigated:
		return "mitigated"
	case StatusFixed:
		return "fixed"
	}

	return "inconsistent"
}

// Colored returns the status word in its terminal color.
func (s Status) Colored() string {
	switch s {
	case StatusFixed:
		return color.GreenString(s.String())
	case StatusMitigated:
		return color.YellowString(s.String())
	}

	return color.RedString(s.String())
}

type Diagnosis struct {
	Status Status
	Note   string
}

var diagnoses = map[Bucket]Diagnosis{
	BucketModern:     {StatusFixed, "1.10 or above"},
	BucketLegacy:     {StatusFixed, "1.4 or below"},
	BucketVulnerable: {StatusVulnerable, "1.5 .. 1.9"},
}

// Diagnose maps a bucket to its remediation status. Buckets without an
// entry come back as inconsistent, naming the bucket.
func Diagnose(b Bucket) Diagnosis {
	if d, ok := diagnoses[b]; ok {
		return d
	}

	return Diagnosis{
		Status: StatusInconsistent,
		Note:   "StringLookupFactory: " + b.String(),
	}
}
