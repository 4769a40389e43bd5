// Package model defines the payload shapes exchanged with the
// dashboard service: device descriptions, status values and reported
// data points.
package model
