// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	// ErrShortSkip is returned when skip(seconds) could not skip the full
	// requested number of bytes before the stream ran out.
	ErrShortSkip = errors.New("audio: did not skip the expected amount of bytes")

	// ErrUnexpectedPartialRead is returned when a read is neither a full
	// block, nor EOF, nor a stop — an unrecoverable stream inconsistency.
	ErrUnexpectedPartialRead = errors.New("audio: end of stream not reached and read amount does not match expected amount")

	// ErrNoDispatcher is returned by operations that require a dispatcher
	// back-reference that was never installed.
	ErrNoDispatcher = errors.New("audio: no dispatcher installed")
)
