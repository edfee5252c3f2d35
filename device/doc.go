// SPDX-License-Identifier: EPL-2.0

// Package device runs a scratch engine on real audio hardware.
//
// OpenDuplex uses PortAudio for microphone and speakers in one callback.
// OpenOutput uses oto and only plays. Both call the engine through Callback,
// which records the input block before rendering the output block. Built
// with the headless tag, both are replaced by a ticker that feeds silence.
package device
