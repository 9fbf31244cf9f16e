package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// TailOptions controls one Tail call. A negative Offset means "the last
// Limit lines"; a non-negative Offset reads forward from that byte.
type TailOptions struct {
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
}

// TailResult carries the lines read and the offset to resume from.
type TailResult struct {
	Lines  []string
	Offset int64
}

// Tail reads log lines per the options. Missing files are not an error; the
// daemon may not have written its first line yet.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	result := TailResult{Offset: opts.Offset}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Offset = 0
			return result, nil
		}
		return result, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("log path %q is a directory", path)
	}

	if opts.Wait < 0 {
		opts.Wait = 0
	}

	start := opts.Offset
	if start < 0 {
		start, err = lastLinesStart(path, info.Size(), opts.Limit)
		if err != nil {
			return result, err
		}
	} else if start > info.Size() {
		// The file was rotated or truncated; restart from the end.
		start = info.Size()
	}

	lines, next, err := readAfter(path, start)
	if err != nil {
		return result, err
	}
	result.Lines = lines
	result.Offset = next

	if opts.Follow && opts.Wait > 0 && len(lines) == 0 {
		return awaitAppend(ctx, path, next, opts.Wait)
	}
	return result, nil
}

const tailChunk = 32 * 1024

// lastLinesStart scans the file backwards in chunks and returns the byte
// offset where the last n lines begin.
func lastLinesStart(path string, size int64, n int) (int64, error) {
	if n <= 0 || size == 0 {
		return size, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	buf := make([]byte, tailChunk)
	newlines := 0
	pos := size
	for pos > 0 {
		readLen := int64(len(buf))
		if pos < readLen {
			readLen = pos
		}
		pos -= readLen
		if _, err := file.ReadAt(buf[:readLen], pos); err != nil {
			return 0, fmt.Errorf("read log file: %w", err)
		}
		for i := readLen - 1; i >= 0; i-- {
			if buf[i] != '\n' {
				continue
			}
			// A newline at the very end terminates the final line
			// instead of preceding one.
			if pos+i == size-1 {
				continue
			}
			newlines++
			if newlines == n {
				return pos + i + 1, nil
			}
		}
	}
	return 0, nil
}

// readAfter returns complete lines from the byte offset onward along with
// the offset after the last byte consumed.
func readAfter(path string, offset int64) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}

	next, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("determine log offset: %w", err)
	}
	return lines, next, nil
}

// awaitAppend polls for new lines until something arrives, the wait window
// closes, or the context ends.
func awaitAppend(ctx context.Context, path string, offset int64, wait time.Duration) (TailResult, error) {
	result := TailResult{Offset: offset}

	window := time.NewTimer(wait)
	defer window.Stop()
	poll := time.NewTicker(250 * time.Millisecond)
	defer poll.Stop()

	for {
		lines, next, err := readAfter(path, offset)
		if err != nil {
			return result, err
		}
		result.Offset = next
		if len(lines) > 0 {
			result.Lines = lines
			return result, nil
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-window.C:
			return result, nil
		case <-poll.C:
		}
	}
}
