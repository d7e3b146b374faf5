package maestro

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// exchange runs one write, wait and read cycle on t.
//
// The frame is written once. When replyLen is zero nothing is read and the
// returned slice is nil. Otherwise exactly replyLen bytes are read: the first
// piece is awaited until ctx is done, every further piece for at most
// interByte. On ErrProtocol the partial reply is returned with the error.
func exchange(ctx context.Context, t Transport, frame []byte, replyLen int, interByte time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}

		return nil, err
	}

	n, err := t.Write(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: write: %w", ErrIO, err)
	}
	if n != len(frame) {
		return nil, fmt.Errorf("%w: short write, %d of %d bytes", ErrIO, n, len(frame))
	}

	if replyLen == 0 {
		return nil, nil
	}

	reply := make([]byte, replyLen)
	got := 0
	for got < replyLen {
		if err := awaitInput(ctx, t, got > 0, interByte); err != nil {
			if got > 0 && errors.Is(err, ErrTimeout) {
				return reply[:got], fmt.Errorf("%w: %d of %d bytes", ErrProtocol, got, replyLen)
			}

			return nil, err
		}

		n, err := t.Read(reply[got:])
		got += n
		// EOF with no data from a ready port means it hung up.
		if err != nil && (n == 0 || !errors.Is(err, io.EOF)) {
			return nil, fmt.Errorf("%w: read: %w", ErrIO, err)
		}
	}

	return reply, nil
}

// awaitInput waits for t to become readable. A partial reply only gets
// interByte more to continue.
func awaitInput(ctx context.Context, t Transport, partial bool, interByte time.Duration) error {
	if partial {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, interByte)
		defer cancel()
	}

	err := t.WaitReady(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: wait: %w", ErrIO, err)
	}
}
