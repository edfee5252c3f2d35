// SPDX-License-Identifier: EPL-2.0

// Package control maps performer input onto a scratch engine: a Turntable
// for platter gestures and a Crossfader with CUT and THRU buttons. Both
// take the engine through small interfaces, so any deck can be driven.
package control
