// Package lapdrift computes per-lap cardiac drift from TCX laps.
//
// A lap is split at the midpoint of its sample timestamps; speed per
// heart-rate beat is compared between the two halves. Speed comes from the
// recorded distance, or from a fixed pace in treadmill mode.
package lapdrift
