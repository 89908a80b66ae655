package common

import "errors"

// ErrUnknownMetric signals an operation on a metric name that was never registered
var ErrUnknownMetric = errors.New("unknown metric")

// ErrNoSamples signals that a metric has no recorded samples yet
var ErrNoSamples = errors.New("no samples recorded")

// ErrInvalidThresholds signals a definition where the critical threshold is below the warning one
var ErrInvalidThresholds = errors.New("critical threshold is below the warning threshold")
