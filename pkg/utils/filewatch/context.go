package filewatch

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// ModifiedError is the cause of a context canceled by UntilModifyContext.
type ModifiedError struct {
	// Path is the file which is modified.
	Path string

	// Op describes the modification, like "WRITE" or "REMOVE".
	Op string
}

func (e *ModifiedError) Error() string {
	return fmt.Sprintf("%s is updated (%s)", e.Path, e.Op)
}

// UntilModifyContext returns a context that is canceled
// when one of target files is modified (= written, created, removed, renamed or chmod-ed).
//
// # Args
//
// - ctx: context.Context
//
// - targetFilePath ...string: file pathes to be watched. Duplicated pathes are watched once.
// When any of the files is modified, the context is canceled with *ModifiedError as its cause.
//
// # Returns
//
// - context.Context: context that is canceled when one of target files is modified.
//
// - func(): cancel function.
//
// - error: error caused when it fails to start watching files.
//
// If error is not nil, both of the the context and the cancel function are nil.
func UntilModifyContext(ctx context.Context, targetFilePath ...string) (context.Context, func(), error) {
	cctx, cancel := context.WithCancelCause(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		cancel(err)
		return nil, nil, err
	}

	seen := map[string]struct{}{}
	for _, f := range targetFilePath {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		if err = w.Add(f); err != nil {
			w.Close()
			cancel(err)
			return nil, nil, err
		}
	}

	go func() {
		defer w.Close()

		for {
			select {
			case <-cctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				cancel(&ModifiedError{Path: event.Name, Op: event.Op.String()})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				cancel(err)
			}
		}
	}()

	return cctx, func() { cancel(nil) }, nil
}
