// Package status maps upstream build results to the four display classes
// used by the dashboard tiles, and derives the age bucket and progress
// value for a build.
package status

import (
	"strings"
	"time"
)

type Class string

const (
	ClassSuccess Class = "success"
	ClassWarning Class = "warning"
	ClassError   Class = "error"
	ClassNone    Class = "none"
)

// Classify maps an upstream build result plus the in-progress flag to
// exactly one display class. Results are matched case-insensitively;
// anything unrecognized (aborted, not built, empty) is ClassNone.
// An in-progress build keeps the class of its last result; the
// "building" styling is applied on top of it by the renderer.
func Classify(result string, building bool) Class {
	res := strings.ToUpper(strings.TrimSpace(result))
	if res == "" && building {
		// In-progress builds report no result yet.
		return ClassNone
	}
	switch res {
	case "SUCCESS":
		return ClassSuccess
	case "UNSTABLE":
		return ClassWarning
	case "FAILURE":
		return ClassError
	default:
		return ClassNone
	}
}

// ageStep is the width of one age bucket.
const ageStep = 6 * time.Hour

// maxAgeBucket is the highest bucket; older builds all land here.
const maxAgeBucket = 5

// AgeBucket buckets the time since the last build into 0..5 in six-hour
// steps. Monotonic in elapsed and clamped at both ends.
func AgeBucket(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	bucket := int(elapsed / ageStep)
	if bucket > maxAgeBucket {
		return maxAgeBucket
	}
	return bucket
}

// Progress computes a 0-100 completion estimate for a build that started
// at start and is expected to take estimated. A finished build is always
// 100. Without a usable estimate the progress of a running build is 0.
func Progress(now, start time.Time, estimated time.Duration, building bool) int {
	if !building {
		return 100
	}
	if estimated <= 0 || start.IsZero() {
		return 0
	}
	elapsed := now.Sub(start)
	if elapsed <= 0 {
		return 0
	}
	p := int(elapsed * 100 / estimated)
	if p > 100 {
		return 100
	}
	return p
}
