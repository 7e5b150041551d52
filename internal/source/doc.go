// Package source provides motion sample sources: a scripted mock, a
// deterministic synthetic session generator, fixed sample lists and
// line-oriented serial input from a wearable IMU.
package source
