// SPDX-License-Identifier: EPL-2.0

// Package library keeps recordings on disk. Takes are saved as 16-bit WAV
// files named after the moment they were saved; List and Load cover every
// file a registered decoder can read, so dropped-in MP3 or Ogg files show
// up next to the recordings.
package library
