// SPDX-License-Identifier: EPL-2.0

package library

import "errors"

var (
	ErrEmptyTake    = errors.New("take has no audio")
	ErrNotInLibrary = errors.New("file is not a supported audio file")
)
