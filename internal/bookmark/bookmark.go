// Package bookmark processes incoming bookmark operations: validate the op
// against known accounts and posts, then add or remove the bookmark row.
package bookmark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRejected marks ops that fail validation. Rejected ops are skipped, not
// fatal; the caller decides whether to log them.
var ErrRejected = errors.New("bookmark op rejected")

// Op is a validated bookmark operation.
type Op struct {
	Account  string `json:"account"`
	Author   string `json:"author"`
	Permlink string `json:"permlink"`
	Action   string `json:"action"`
	Category string `json:"category"`
}

// Store is the persistence surface bookmark processing needs.
type Store interface {
	AccountID(ctx context.Context, name string) (int64, error)
	PostID(ctx context.Context, author, permlink string) (int64, error)
	AddBookmark(ctx context.Context, accountID, postID int64, at time.Time) error
	RemoveBookmark(ctx context.Context, accountID, postID int64) error
}

// Process validates and applies one raw bookmark op signed by account.
func Process(ctx context.Context, st Store, account string, rawOp []byte, date time.Time) error {
	var fields map[string]any
	if err := json.Unmarshal(rawOp, &fields); err != nil {
		return fmt.Errorf("%w: malformed op: %v", ErrRejected, err)
	}
	for _, k := range []string{"account", "author", "permlink", "action", "category"} {
		if _, ok := fields[k]; !ok {
			return fmt.Errorf("%w: missing param %q", ErrRejected, k)
		}
	}

	var op Op
	if err := json.Unmarshal(rawOp, &op); err != nil {
		return fmt.Errorf("%w: malformed op: %v", ErrRejected, err)
	}
	if op.Account != account {
		return fmt.Errorf("%w: impersonation by %s", ErrRejected, account)
	}
	if op.Action != "add" && op.Action != "remove" {
		return fmt.Errorf("%w: invalid action %q", ErrRejected, op.Action)
	}

	accountID, err := st.AccountID(ctx, account)
	if err != nil {
		return err
	}
	if accountID == 0 {
		return fmt.Errorf("%w: unknown account %s", ErrRejected, account)
	}
	postID, err := st.PostID(ctx, op.Author, op.Permlink)
	if err != nil {
		return err
	}
	if postID == 0 {
		return fmt.Errorf("%w: unknown post %s/%s", ErrRejected, op.Author, op.Permlink)
	}

	if op.Action == "add" {
		return st.AddBookmark(ctx, accountID, postID, date)
	}
	return st.RemoveBookmark(ctx, accountID, postID)
}
