package media

import (
	"context" // Cancellation
	"math"    // Rounding

	"github.com/sirupsen/logrus" // Logging
	"go.senan.xyz/taglib"        // Audio properties reader
)

// DurationReader reports the duration of an audio file in seconds.
// A nil result means the duration could not be determined.
type DurationReader interface {
	Duration(ctx context.Context, path string) *float64
}

// TaglibReader reads durations with taglib
type TaglibReader struct{}

// Duration reads the file and rounds the length to two decimals
func (TaglibReader) Duration(ctx context.Context, path string) *float64 {
	if ctx.Err() != nil {
		return nil
	}
	props, err := taglib.ReadProperties(path)
	if err != nil {
		// Corrupt or unsupported audio leaves the duration unknown
		logrus.WithFields(logrus.Fields{"path": path, "error": err.Error()}).Warn("Reading duration failed")
		return nil
	}
	return RoundDuration(props.Length.Seconds())
}

// RoundDuration rounds seconds to two decimals, mapping non-positive values to nil
func RoundDuration(seconds float64) *float64 {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return nil
	}
	d := math.Round(seconds*100) / 100
	return &d
}
