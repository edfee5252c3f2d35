// SPDX-License-Identifier: EPL-2.0

package utils

// Lerp interpolates linearly from a to b. t = 0 returns a exactly.
func Lerp(a, b, t float32) float32 { return a + t*(b-a) }
